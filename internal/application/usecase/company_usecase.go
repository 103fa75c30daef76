package usecase

import (
	"time"

	"github.com/google/uuid"

	"github.com/seu-usuario/oficina-pro/internal/application/dto"
	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// CompanyUseCase aplica as regras de negócio da empresa (oficina).
type CompanyUseCase struct {
	repo repository.CompanyRepository
}

// NewCompanyUseCase constrói o caso de uso com o porto de persistência.
func NewCompanyUseCase(repo repository.CompanyRepository) *CompanyUseCase {
	return &CompanyUseCase{repo: repo}
}

// Create cria uma empresa. Devolve domain.ErrDuplicate se o CNPJ já existir.
func (uc *CompanyUseCase) Create(in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	existing, _ := uc.repo.GetByCNPJ(in.CNPJ)
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	company := &entity.Company{
		ID:           uuid.New().String(),
		RazaoSocial:  in.RazaoSocial,
		NomeFantasia: in.NomeFantasia,
		CNPJ:         in.CNPJ,
		Email:        in.Email,
		Telefone:     in.Telefone,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

// GetByID obtém a empresa por ID.
func (uc *CompanyUseCase) GetByID(id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return entityToCompanyResponse(company), nil
}

// Update aplica uma atualização parcial do cadastro, inclusive os campos
// fiscais que a validação pré-emissão cobra.
func (uc *CompanyUseCase) Update(id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}

	setStr(&company.RazaoSocial, in.RazaoSocial)
	setStr(&company.NomeFantasia, in.NomeFantasia)
	setStr(&company.CNPJ, in.CNPJ)
	setStr(&company.InscricaoMunicipal, in.InscricaoMunicipal)
	setStr(&company.Email, in.Email)
	setStr(&company.Telefone, in.Telefone)
	setStr(&company.Logradouro, in.Logradouro)
	setStr(&company.NumeroEndereco, in.NumeroEndereco)
	setStr(&company.Complemento, in.Complemento)
	setStr(&company.Bairro, in.Bairro)
	setStr(&company.Municipio, in.Municipio)
	setStr(&company.UF, in.UF)
	setStr(&company.CEP, in.CEP)
	setStr(&company.CodigoMunicipio, in.CodigoMunicipio)
	setStr(&company.NFSEToken, in.NFSEToken)
	company.UpdatedAt = time.Now()

	if err := uc.repo.Update(company); err != nil {
		return nil, err
	}
	return entityToCompanyResponse(company), nil
}

func setStr(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func entityToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:                 c.ID,
		RazaoSocial:        c.RazaoSocial,
		NomeFantasia:       c.NomeFantasia,
		CNPJ:               c.CNPJ,
		InscricaoMunicipal: c.InscricaoMunicipal,
		Email:              c.Email,
		Telefone:           c.Telefone,
		Logradouro:         c.Logradouro,
		NumeroEndereco:     c.NumeroEndereco,
		Complemento:        c.Complemento,
		Bairro:             c.Bairro,
		Municipio:          c.Municipio,
		UF:                 c.UF,
		CEP:                c.CEP,
		CodigoMunicipio:    c.CodigoMunicipio,
		NFSEConfigurado:    c.NFSEToken != "",
		Status:             c.Status,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}
