// Package fiscal orquestra o ciclo de emissão de NFS-e: validação prévia,
// submissão ao gateway, acompanhamento de status (push via webhook, pull via
// polling) e resolução/descarga dos documentos assinados.
package fiscal

import (
	"fmt"

	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
)

// Validator executa a validação pré-emissão: emissor, tomador, itens e estado
// da ordem, cada checagem produzindo zero ou mais pendências. As pendências
// são dados, nunca erros: o chamador particiona por tipo para decidir se a
// emissão pode prosseguir e para renderizar ações de correção.
type Validator struct {
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	orders    repository.ServiceOrderRepository
}

// NewValidator constrói o validador com seus repositórios de leitura.
func NewValidator(
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	orders repository.ServiceOrderRepository,
) *Validator {
	return &Validator{companies: companies, customers: customers, orders: orders}
}

// Validate devolve a lista de pendências da ordem, na ordem de inserção.
// Único curto-circuito: se o cadastro da empresa emissora não existir, emite
// uma pendência fatal e para — as demais checagens dependeriam dele.
func (v *Validator) Validate(companyID, orderID string) ([]nfse.Issue, error) {
	order, err := v.orders.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar ordem: %w", err)
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	var issues []nfse.Issue
	blocker := func(field, msg string, editable bool) {
		issues = append(issues, nfse.Issue{Kind: nfse.IssueError, Field: field, Message: msg, Editable: editable})
	}
	warning := func(field, msg string) {
		issues = append(issues, nfse.Issue{Kind: nfse.IssueWarning, Field: field, Message: msg, Editable: true})
	}

	// 1. Emissor: razão social, CNPJ, endereço completo e credencial do gateway.
	company, err := v.companies.GetByID(companyID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar empresa: %w", err)
	}
	if company == nil {
		blocker("Empresa", "cadastro da empresa emissora não encontrado", false)
		return issues, nil
	}
	if company.RazaoSocial == "" {
		blocker("Empresa", "razão social não preenchida", true)
	}
	if company.CNPJ == "" {
		blocker("Empresa", "CNPJ da empresa não preenchido", true)
	}
	if company.InscricaoMunicipal == "" {
		blocker("Empresa", "inscrição municipal não preenchida", true)
	}
	if !company.HasCompleteAddress() {
		blocker("Empresa", "endereço da empresa incompleto (logradouro, bairro, município, UF, CEP e código IBGE)", true)
	}
	if company.NFSEToken == "" {
		blocker("Empresa", "token do gateway de NFS-e não configurado", true)
	}

	// 2. Tomador: documento fiscal (CPF ou CNPJ) e endereço completo.
	customer, err := v.customers.GetByID(order.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar cliente: %w", err)
	}
	if customer == nil {
		blocker("Cliente", "cliente da ordem não encontrado", false)
	} else {
		if customer.TaxDocument() == "" {
			blocker("Cliente", "cliente sem CPF nem CNPJ", true)
		}
		if !customer.HasCompleteAddress() {
			blocker("Cliente", "endereço do cliente incompleto", true)
		}
	}

	// 3. Itens: ao menos um serviço faturável; código de serviço municipal com
	// exatamente 6 dígitos para serviços não isentos. É invariante de formato,
	// não consulta à tabela da prefeitura.
	items, err := v.orders.GetItems(orderID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar itens: %w", err)
	}
	services := 0
	for _, it := range items {
		if !it.IsService() {
			continue
		}
		services++
		if it.IsentoISS {
			continue
		}
		if !nfse.ValidServiceCode(it.CodigoServicoMunicipal) {
			blocker("Itens",
				fmt.Sprintf("serviço %q: código de serviço municipal deve ter 6 dígitos (recebido %q)",
					it.Descricao, it.CodigoServicoMunicipal), true)
		}
	}
	if services == 0 {
		warning("Itens", "a ordem só contém produtos; NFS-e cobre apenas serviços")
	}

	// 4. Estado da ordem: emitir antes de entregar/pagar é permitido, mas sinalizado.
	if order.Status != entity.OrderDelivered || !order.Paga {
		warning("Ordem", "ordem ainda não entregue/paga; a emissão é permitida mas ficará marcada")
	}

	return issues, nil
}
