package repository

import (
	"context"

	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
)

// InvoiceRepository define o porto de persistência do registro de NFS-e.
//
// ApplyByReference é a única escrita usada pelo webhook e pela consulta de
// status: um UPDATE condicional por reference que embute a proteção de estado
// terminal monotônico (ver nfse.AllowsTransition). Devolve applied=false
// quando a guarda rejeitou a transição — o registro atual permanece intacto.
type InvoiceRepository interface {
	Create(inv *entity.ServiceOrderInvoice) error
	GetByServiceOrderID(orderID string) (*entity.ServiceOrderInvoice, error)
	GetByReference(ctx context.Context, reference string) (*entity.ServiceOrderInvoice, error)
	Update(inv *entity.ServiceOrderInvoice) error
	ApplyByReference(ctx context.Context, reference string, up nfse.Update) (applied bool, err error)
}
