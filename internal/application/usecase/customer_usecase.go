package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// CustomerUseCase aplica as regras de negócio de clientes.
type CustomerUseCase struct {
	repo repository.CustomerRepository
}

// NewCustomerUseCase constrói o caso de uso.
func NewCustomerUseCase(repo repository.CustomerRepository) *CustomerUseCase {
	return &CustomerUseCase{repo: repo}
}

// Create cria um cliente. CPF/CNPJ são opcionais no cadastro; a validação
// pré-emissão é quem cobra quando a NFS-e entra em cena. Documento duplicado
// na mesma empresa devolve domain.ErrDuplicate.
func (uc *CustomerUseCase) Create(companyID string, in dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	if doc := pickDocument(in.CPF, in.CNPJ); doc != "" {
		existing, _ := uc.repo.GetByCompanyAndDocument(companyID, doc)
		if existing != nil {
			return nil, domain.ErrDuplicate
		}
	}
	now := time.Now()
	customer := &entity.Customer{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		Nome:           in.Nome,
		CPF:            in.CPF,
		CNPJ:           in.CNPJ,
		Email:          in.Email,
		Telefone:       in.Telefone,
		Logradouro:     in.Logradouro,
		NumeroEndereco: in.NumeroEndereco,
		Complemento:    in.Complemento,
		Bairro:         in.Bairro,
		Municipio:      in.Municipio,
		UF:             in.UF,
		CEP:            in.CEP,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.repo.Create(customer); err != nil {
		return nil, err
	}
	return entityToCustomerResponse(customer), nil
}

// GetByID obtém o cliente, restrito à empresa do chamador.
func (uc *CustomerUseCase) GetByID(companyID, id string) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	return entityToCustomerResponse(customer), nil
}

// List lista clientes da empresa com paginação.
func (uc *CustomerUseCase) List(companyID string, page dto.PageRequest) (*dto.CustomerListResponse, error) {
	page.DefaultPage()
	list, err := uc.repo.ListByCompany(companyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *entityToCustomerResponse(c))
	}
	return &dto.CustomerListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}, nil
}

// Update aplica uma atualização parcial.
func (uc *CustomerUseCase) Update(companyID, id string, in dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if customer == nil || customer.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	setStr(&customer.Nome, in.Nome)
	setStr(&customer.CPF, in.CPF)
	setStr(&customer.CNPJ, in.CNPJ)
	setStr(&customer.Email, in.Email)
	setStr(&customer.Telefone, in.Telefone)
	setStr(&customer.Logradouro, in.Logradouro)
	setStr(&customer.NumeroEndereco, in.NumeroEndereco)
	setStr(&customer.Complemento, in.Complemento)
	setStr(&customer.Bairro, in.Bairro)
	setStr(&customer.Municipio, in.Municipio)
	setStr(&customer.UF, in.UF)
	setStr(&customer.CEP, in.CEP)
	customer.UpdatedAt = time.Now()

	if err := uc.repo.Update(customer); err != nil {
		return nil, err
	}
	return entityToCustomerResponse(customer), nil
}

// Delete remove o cliente da empresa.
func (uc *CustomerUseCase) Delete(companyID, id string) error {
	customer, err := uc.repo.GetByID(id)
	if err != nil {
		return err
	}
	if customer == nil || customer.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return uc.repo.Delete(id)
}

func pickDocument(cpf, cnpj string) string {
	if cnpj != "" {
		return cnpj
	}
	return cpf
}

func entityToCustomerResponse(c *entity.Customer) *dto.CustomerResponse {
	if c == nil {
		return nil
	}
	return &dto.CustomerResponse{
		ID:             c.ID,
		Nome:           c.Nome,
		CPF:            c.CPF,
		CNPJ:           c.CNPJ,
		Email:          c.Email,
		Telefone:       c.Telefone,
		Logradouro:     c.Logradouro,
		NumeroEndereco: c.NumeroEndereco,
		Complemento:    c.Complemento,
		Bairro:         c.Bairro,
		Municipio:      c.Municipio,
		UF:             c.UF,
		CEP:            c.CEP,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}
