// Package pdf implementa a geração do comprovante da ordem de serviço em A4.
// O comprovante é documento interno da oficina, não substitui a NFS-e; quando
// a nota foi autorizada, o rodapé traz número, código de verificação e QR da
// página de consulta na prefeitura.
//
// Layout da página:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Razão Social + CNPJ  │  N° OS + Data               │
//	│  ─────────────────────────────────────────────────────────  │
//	│  OFICINA: Endereço / Tel / Email                            │
//	│  CLIENTE: Nome + CPF/CNPJ + contato │ VEÍCULO: placa etc.   │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABELA: Qtd | Descrição | Tipo | V.Unit | Subtotal         │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TOTAL DA ORDEM                                             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  RODAPÉ NFS-e: número + código de verificação + QR          │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
)

// ── Paleta de cores ───────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
)

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoReceiptGenerator implementa usecase.OrderPDFGenerator usando Maroto v2.
type MarotoReceiptGenerator struct{}

// NewMarotoReceiptGenerator constrói o gerador.
func NewMarotoReceiptGenerator() *MarotoReceiptGenerator { return &MarotoReceiptGenerator{} }

// GenerateOrderReceipt gera o PDF do comprovante e devolve seus bytes.
// invoice pode ser nil (ordem sem NFS-e emitida); vehicle idem.
func (g *MarotoReceiptGenerator) GenerateOrderReceipt(
	_ context.Context,
	order *entity.ServiceOrder,
	items []*entity.ServiceOrderItem,
	company *entity.Company,
	customer *entity.Customer,
	vehicle *entity.Vehicle,
	invoice *entity.ServiceOrderInvoice,
) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Comprovante de Ordem de Serviço", true).
		WithAuthor(company.RazaoSocial, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(order, company))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(oficinaRow(company))
	m.AddRows(clienteRow(customer, vehicle))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	for _, r := range tableItemRows(items) {
		m.AddRows(r)
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(totalRow(order))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	for _, r := range nfseFooterRows(invoice) {
		m.AddRows(r)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: gerar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Seções ────────────────────────────────────────────────────────────────────

// headerRow: razão social + CNPJ (esq) e nº da OS + data (dir).
func headerRow(order *entity.ServiceOrder, company *entity.Company) core.Row {
	numero := fmt.Sprintf("OS Nº %06d", order.Numero)
	data := order.CreatedAt.Format("02/01/2006")

	return row.New(18).Add(
		col.New(7).Add(
			text.New(company.RazaoSocial, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CNPJ: "+company.CNPJ, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New("COMPROVANTE DE ORDEM DE SERVIÇO", props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right,
				Color: colorPrimary, Top: 1,
			}),
			text.New(numero, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Data: "+data, props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// oficinaRow: dados da oficina emissora.
func oficinaRow(company *entity.Company) core.Row {
	endereco := company.Logradouro
	if company.NumeroEndereco != "" {
		endereco += ", " + company.NumeroEndereco
	}
	return row.New(12).Add(
		col.New(12).Add(
			text.New("DADOS DA OFICINA", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("Endereço: %s   |   Tel: %s   |   Email: %s",
				nonEmpty(endereco, "—"),
				nonEmpty(company.Telefone, "—"),
				nonEmpty(company.Email, "—"),
			), props.Text{Size: 8, Top: 7, Color: colorGray}),
		),
	)
}

// clienteRow: cliente e veículo lado a lado.
func clienteRow(customer *entity.Customer, vehicle *entity.Vehicle) core.Row {
	cols := []core.Col{
		col.New(7).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(customer.Nome, props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 6,
			}),
			text.New(fmt.Sprintf("CPF/CNPJ: %s   |   Tel: %s",
				nonEmpty(customer.TaxDocument(), "—"),
				nonEmpty(customer.Telefone, "—"),
			), props.Text{Size: 8, Top: 12, Color: colorGray}),
		),
	}
	if vehicle != nil {
		cols = append(cols, col.New(5).Add(
			text.New("VEÍCULO", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(fmt.Sprintf("%s %s %d", vehicle.Marca, vehicle.Modelo, vehicle.Ano), props.Text{
				Size: 9, Top: 6,
			}),
			text.New("Placa: "+vehicle.Placa, props.Text{Size: 8, Top: 12, Color: colorGray}),
		))
	} else {
		cols = append(cols, col.New(5))
	}
	return row.New(14).Add(cols...)
}

// tableHeaderRow: cabeçalho da tabela de itens.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Qtd.", 1, align.Center),
		h("Descrição", 5, align.Left),
		h("Tipo", 1, align.Center),
		h("V. Unit.", 2, align.Right),
		h("Subtotal", 3, align.Right),
	)
}

// tableItemRows: uma linha por item da ordem.
func tableItemRows(items []*entity.ServiceOrderItem) []core.Row {
	result := make([]core.Row, 0, len(items))
	for _, it := range items {
		result = append(result, row.New(7).Add(
			col.New(1).Add(text.New(
				it.Quantidade.String(),
				props.Text{Size: 8, Align: align.Center, Top: 1},
			)),
			col.New(5).Add(text.New(
				it.Descricao,
				props.Text{Size: 8, Align: align.Left, Top: 1, Left: 1},
			)),
			col.New(1).Add(text.New(
				it.Tipo,
				props.Text{Size: 7, Align: align.Center, Top: 1, Color: colorGray},
			)),
			col.New(2).Add(text.New(
				"R$ "+it.ValorUnitario.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
			col.New(3).Add(text.New(
				"R$ "+it.ValorTotal.StringFixed(2),
				props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1},
			)),
		))
	}
	return result
}

// totalRow: total da ordem alinhado à direita.
func totalRow(order *entity.ServiceOrder) core.Row {
	pago := "pagamento pendente"
	if order.Paga {
		pago = "pago"
	}
	return row.New(12).Add(
		col.New(6).Add(
			text.New("Situação: "+order.Status+" · "+pago, props.Text{
				Size: 8, Top: 3, Color: colorGray,
			}),
		),
		col.New(3).Add(
			text.New("TOTAL:", props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Top: 2, Right: 2,
			}),
		),
		col.New(3).Add(
			text.New("R$ "+order.Total.StringFixed(2), props.Text{
				Style: fontstyle.Bold, Size: 11, Align: align.Right,
				Color: colorPrimary, Top: 2, Right: 1,
			}),
		),
	)
}

// nfseFooterRows: situação da NFS-e; com nota autorizada inclui número,
// código de verificação e QR da página de consulta na prefeitura.
func nfseFooterRows(invoice *entity.ServiceOrderInvoice) []core.Row {
	rows := []core.Row{
		row.New(6).Add(col.New(12).Add(
			text.New("NOTA FISCAL DE SERVIÇO ELETRÔNICA (NFS-e)", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
		)),
	}

	if invoice == nil || invoice.Numero == "" {
		rows = append(rows, row.New(8).Add(col.New(12).Add(
			text.New("NFS-e ainda não emitida para esta ordem. Este comprovante não substitui documento fiscal.", props.Text{
				Size: 7.5, Color: colorGray, Top: 2,
			}),
		)))
		return rows
	}

	rows = append(rows, row.New(10).Add(col.New(12).Add(
		text.New(fmt.Sprintf("NFS-e Nº %s   |   Código de verificação: %s",
			invoice.Numero, nonEmpty(invoice.CodigoVerif, "—")), props.Text{
			Style: fontstyle.Bold, Size: 9, Top: 2,
		}),
	)))

	if invoice.URL != "" {
		rows = append(rows, row.New(50).Add(
			col.New(4).Add(code.NewQr(invoice.URL, props.Rect{
				Percent: 95,
				Center:  true,
			})),
			col.New(8).Add(
				text.New("Escaneie o código QR para consultar\na NFS-e no portal da prefeitura.", props.Text{
					Size: 8, Top: 4, Left: 3, Color: colorGray,
				}),
				text.New(invoice.URL, props.Text{
					Size: 6.5, Top: 24, Left: 3, Color: colorGray,
				}),
			),
		))
	}

	rows = append(rows, row.New(8).Add(col.New(12).Add(
		text.New(
			"Guarde este comprovante. A NFS-e é o documento fiscal da prestação do serviço.",
			props.Text{Size: 6.5, Color: colorGray, Top: 2},
		),
	)))

	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
