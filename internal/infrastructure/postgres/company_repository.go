package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementação do porto CompanyRepository sobre PostgreSQL.
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, razao_social, nome_fantasia, cnpj, inscricao_municipal,
	email, telefone, logradouro, numero_endereco, complemento, bairro, municipio,
	uf, cep, codigo_municipio, nfse_token, status, created_at, updated_at`

// Create persiste uma nova empresa.
func (r *CompanyRepo) Create(company *entity.Company) error {
	if company.ID == "" {
		company.ID = uuid.New().String()
	}
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.RazaoSocial, company.NomeFantasia, company.CNPJ,
		company.InscricaoMunicipal, company.Email, company.Telefone,
		company.Logradouro, company.NumeroEndereco, company.Complemento,
		company.Bairro, company.Municipio, company.UF, company.CEP,
		company.CodigoMunicipio, company.NFSEToken, company.Status,
		company.CreatedAt, company.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("cnpj já cadastrado: %w", err)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// GetByID obtém uma empresa por ID.
func (r *CompanyRepo) GetByID(id string) (*entity.Company, error) {
	return r.getBy("id", id)
}

// GetByCNPJ obtém uma empresa por CNPJ.
func (r *CompanyRepo) GetByCNPJ(cnpj string) (*entity.Company, error) {
	return r.getBy("cnpj", cnpj)
}

func (r *CompanyRepo) getBy(column, value string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies WHERE ` + column + ` = $1`
	var c entity.Company
	err := r.q.QueryRow(context.Background(), query, value).Scan(
		&c.ID, &c.RazaoSocial, &c.NomeFantasia, &c.CNPJ, &c.InscricaoMunicipal,
		&c.Email, &c.Telefone, &c.Logradouro, &c.NumeroEndereco, &c.Complemento,
		&c.Bairro, &c.Municipio, &c.UF, &c.CEP, &c.CodigoMunicipio,
		&c.NFSEToken, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get company: %w", err)
	}
	return &c, nil
}

// Update atualiza os dados cadastrais e fiscais da empresa.
func (r *CompanyRepo) Update(company *entity.Company) error {
	query := `
		UPDATE companies
		SET razao_social = $2, nome_fantasia = $3, cnpj = $4, inscricao_municipal = $5,
		    email = $6, telefone = $7, logradouro = $8, numero_endereco = $9,
		    complemento = $10, bairro = $11, municipio = $12, uf = $13, cep = $14,
		    codigo_municipio = $15, nfse_token = $16, status = $17, updated_at = $18
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		company.ID, company.RazaoSocial, company.NomeFantasia, company.CNPJ,
		company.InscricaoMunicipal, company.Email, company.Telefone,
		company.Logradouro, company.NumeroEndereco, company.Complemento,
		company.Bairro, company.Municipio, company.UF, company.CEP,
		company.CodigoMunicipio, company.NFSEToken, company.Status, company.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	return nil
}
