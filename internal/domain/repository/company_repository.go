package repository

import "github.com/seu-usuario/oficina-pro/internal/domain/entity"

// CompanyRepository define o porto de persistência para Company (DIP).
// A implementação vive em infrastructure.
type CompanyRepository interface {
	Create(company *entity.Company) error
	GetByID(id string) (*entity.Company, error)
	GetByCNPJ(cnpj string) (*entity.Company, error)
	Update(company *entity.Company) error
}
