package usecase

import (
	"context"

	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// TxRunner executa um callback com repositórios amarrados a uma transação.
// A implementação concreta vive em infrastructure/postgres.
type TxRunner interface {
	// RunOrder roda fn numa transação com o repositório de ordens transacional.
	RunOrder(ctx context.Context, fn func(orders repository.ServiceOrderRepository) error) error
}
