package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementação do porto CustomerRepository sobre PostgreSQL.
type CustomerRepo struct {
	q Querier
}

// NewCustomerRepository constrói o adaptador. Passar pool ou tx (Querier).
func NewCustomerRepository(q Querier) *CustomerRepo {
	return &CustomerRepo{q: q}
}

const customerColumns = `id, company_id, nome, cpf, cnpj, email, telefone,
	logradouro, numero_endereco, complemento, bairro, municipio, uf, cep,
	created_at, updated_at`

// Create persiste um novo cliente.
func (r *CustomerRepo) Create(customer *entity.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.New().String()
	}
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.CompanyID, customer.Nome,
		nullIfEmpty(customer.CPF), nullIfEmpty(customer.CNPJ),
		customer.Email, customer.Telefone,
		customer.Logradouro, customer.NumeroEndereco, customer.Complemento,
		customer.Bairro, customer.Municipio, customer.UF, customer.CEP,
		customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("documento já cadastrado: %w", err)
		}
		return fmt.Errorf("insert customer: %w", err)
	}
	return nil
}

func (r *CustomerRepo) scanCustomer(row interface{ Scan(...any) error }) (*entity.Customer, error) {
	var c entity.Customer
	var cpf, cnpj *string
	err := row.Scan(
		&c.ID, &c.CompanyID, &c.Nome, &cpf, &cnpj, &c.Email, &c.Telefone,
		&c.Logradouro, &c.NumeroEndereco, &c.Complemento, &c.Bairro,
		&c.Municipio, &c.UF, &c.CEP, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CPF = derefStr(cpf)
	c.CNPJ = derefStr(cnpj)
	return &c, nil
}

// GetByID obtém um cliente por ID.
func (r *CustomerRepo) GetByID(id string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	c, err := r.scanCustomer(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}

// GetByCompanyAndDocument busca por CPF ou CNPJ dentro da empresa.
func (r *CustomerRepo) GetByCompanyAndDocument(companyID, document string) (*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE company_id = $1 AND (cpf = $2 OR cnpj = $2)`
	c, err := r.scanCustomer(r.q.QueryRow(context.Background(), query, companyID, document))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer by document: %w", err)
	}
	return c, nil
}

// ListByCompany lista clientes da empresa com paginação.
func (r *CustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers
		WHERE company_id = $1 ORDER BY nome LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Customer
	for rows.Next() {
		c, err := r.scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	return list, rows.Err()
}

// Update atualiza os dados do cliente.
func (r *CustomerRepo) Update(customer *entity.Customer) error {
	query := `
		UPDATE customers
		SET nome = $2, cpf = $3, cnpj = $4, email = $5, telefone = $6,
		    logradouro = $7, numero_endereco = $8, complemento = $9, bairro = $10,
		    municipio = $11, uf = $12, cep = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		customer.ID, customer.Nome, nullIfEmpty(customer.CPF), nullIfEmpty(customer.CNPJ),
		customer.Email, customer.Telefone, customer.Logradouro, customer.NumeroEndereco,
		customer.Complemento, customer.Bairro, customer.Municipio, customer.UF,
		customer.CEP, customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update customer: %w", err)
	}
	return nil
}

// Delete remove o cliente.
func (r *CustomerRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}
