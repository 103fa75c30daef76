package fiscal_test

import (
	"context"
	"sync"

	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
	"github.com/seu-usuario/oficina-pro/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// ── Fakes de repositório em memória ──────────────────────────────────────────

type fakeCompanyRepo struct {
	mu   sync.Mutex
	byID map[string]*entity.Company
}

func newFakeCompanyRepo(cs ...*entity.Company) *fakeCompanyRepo {
	r := &fakeCompanyRepo{byID: map[string]*entity.Company{}}
	for _, c := range cs {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeCompanyRepo) Create(c *entity.Company) error { r.byID[c.ID] = c; return nil }
func (r *fakeCompanyRepo) GetByID(id string) (*entity.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byID[id], nil
}
func (r *fakeCompanyRepo) GetByCNPJ(cnpj string) (*entity.Company, error) {
	for _, c := range r.byID {
		if c.CNPJ == cnpj {
			return c, nil
		}
	}
	return nil, nil
}
func (r *fakeCompanyRepo) Update(c *entity.Company) error { r.byID[c.ID] = c; return nil }

type fakeCustomerRepo struct {
	byID map[string]*entity.Customer
}

func newFakeCustomerRepo(cs ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{byID: map[string]*entity.Customer{}}
	for _, c := range cs {
		r.byID[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error { r.byID[c.ID] = c; return nil }
func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	return r.byID[id], nil
}
func (r *fakeCustomerRepo) GetByCompanyAndDocument(companyID, doc string) (*entity.Customer, error) {
	for _, c := range r.byID {
		if c.CompanyID == companyID && c.TaxDocument() == doc {
			return c, nil
		}
	}
	return nil, nil
}
func (r *fakeCustomerRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Customer, error) {
	var out []*entity.Customer
	for _, c := range r.byID {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (r *fakeCustomerRepo) Update(c *entity.Customer) error { r.byID[c.ID] = c; return nil }
func (r *fakeCustomerRepo) Delete(id string) error          { delete(r.byID, id); return nil }

type fakeOrderRepo struct {
	byID  map[string]*entity.ServiceOrder
	items map[string][]*entity.ServiceOrderItem
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		byID:  map[string]*entity.ServiceOrder{},
		items: map[string][]*entity.ServiceOrderItem{},
	}
}

func (r *fakeOrderRepo) Create(o *entity.ServiceOrder) error { r.byID[o.ID] = o; return nil }
func (r *fakeOrderRepo) CreateItem(it *entity.ServiceOrderItem) error {
	r.items[it.ServiceOrderID] = append(r.items[it.ServiceOrderID], it)
	return nil
}
func (r *fakeOrderRepo) GetByID(id string) (*entity.ServiceOrder, error) { return r.byID[id], nil }
func (r *fakeOrderRepo) GetItems(orderID string) ([]*entity.ServiceOrderItem, error) {
	return r.items[orderID], nil
}
func (r *fakeOrderRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.ServiceOrder, error) {
	var out []*entity.ServiceOrder
	for _, o := range r.byID {
		if o.CompanyID == companyID {
			out = append(out, o)
		}
	}
	return out, nil
}
func (r *fakeOrderRepo) NextNumber(companyID string) (int, error) { return len(r.byID) + 1, nil }
func (r *fakeOrderRepo) Update(o *entity.ServiceOrder) error      { r.byID[o.ID] = o; return nil }

// fakeInvoiceRepo espelha em memória a semântica da escrita condicional do
// repositório Postgres, inclusive a guarda de transição e a limpeza de campos.
type fakeInvoiceRepo struct {
	mu    sync.Mutex
	byRef map[string]*entity.ServiceOrderInvoice
}

func newFakeInvoiceRepo(recs ...*entity.ServiceOrderInvoice) *fakeInvoiceRepo {
	r := &fakeInvoiceRepo{byRef: map[string]*entity.ServiceOrderInvoice{}}
	for _, rec := range recs {
		r.byRef[rec.Reference] = rec
	}
	return r
}

func (r *fakeInvoiceRepo) Create(inv *entity.ServiceOrderInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRef[inv.Reference] = inv
	return nil
}

func (r *fakeInvoiceRepo) GetByServiceOrderID(orderID string) (*entity.ServiceOrderInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byRef {
		if rec.ServiceOrderID == orderID {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeInvoiceRepo) GetByReference(_ context.Context, ref string) (*entity.ServiceOrderInvoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.byRef[ref]
	if rec == nil {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *fakeInvoiceRepo) Update(inv *entity.ServiceOrderInvoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byRef[inv.Reference] = inv
	return nil
}

func (r *fakeInvoiceRepo) ApplyByReference(_ context.Context, ref string, up nfse.Update) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.byRef[ref]
	if rec == nil {
		return false, nil
	}
	if !nfse.AllowsTransition(rec.Status, up.Status) {
		return false, nil
	}
	rec.Status = up.Status
	if up.Number != "" {
		rec.Numero = up.Number
	}
	if up.VerificationCode != "" {
		rec.CodigoVerif = up.VerificationCode
	}
	switch up.Status {
	case nfse.StatusError, nfse.StatusRejected:
		rec.URL, rec.PDFURL, rec.XMLURL = "", "", ""
		rec.ErrorMessage, rec.ErrorCode = up.ErrorMessage, up.ErrorCode
	case nfse.StatusCancelled:
		rec.ErrorMessage, rec.ErrorCode = up.ErrorMessage, up.ErrorCode
	default:
		if up.URL != "" {
			rec.URL = up.URL
		}
		if up.PDFURL != "" {
			rec.PDFURL = up.PDFURL
		}
		if up.XMLURL != "" {
			rec.XMLURL = up.XMLURL
		}
		rec.ErrorMessage, rec.ErrorCode = "", ""
	}
	return true, nil
}

// ── Fake do gateway ──────────────────────────────────────────────────────────

type fakeGateway struct {
	emitFn   func(ctx context.Context, ref string, rps *infranfse.RPS) (*infranfse.EmitResult, error)
	statusFn func(ctx context.Context, ref string) (*infranfse.StatusPayload, error)
	fetchFn  func(ctx context.Context, url string) (*infranfse.FetchResult, error)
}

func (g *fakeGateway) Emit(ctx context.Context, ref string, rps *infranfse.RPS) (*infranfse.EmitResult, error) {
	return g.emitFn(ctx, ref, rps)
}
func (g *fakeGateway) Status(ctx context.Context, ref string) (*infranfse.StatusPayload, error) {
	return g.statusFn(ctx, ref)
}
func (g *fakeGateway) Fetch(ctx context.Context, url string) (*infranfse.FetchResult, error) {
	return g.fetchFn(ctx, url)
}
func (g *fakeGateway) BaseURL() string { return "https://gateway.test" }
func (g *fakeGateway) APIHost() string { return "gateway.test" }

// ── Cenário base ─────────────────────────────────────────────────────────────

func validCompany() *entity.Company {
	return &entity.Company{
		ID:                 "emp-1",
		RazaoSocial:        "Oficina do Zé LTDA",
		CNPJ:               "12345678000190",
		InscricaoMunicipal: "987654",
		Logradouro:         "Rua das Peças",
		NumeroEndereco:     "100",
		Bairro:             "Centro",
		Municipio:          "São Paulo",
		UF:                 "SP",
		CEP:                "01001000",
		CodigoMunicipio:    "3550308",
		NFSEToken:          "token-emp-1",
	}
}

func validCustomer() *entity.Customer {
	return &entity.Customer{
		ID:             "cli-1",
		CompanyID:      "emp-1",
		Nome:           "João da Silva",
		CPF:            "12345678901",
		Logradouro:     "Av. Brasil",
		NumeroEndereco: "42",
		Bairro:         "Jardim",
		Municipio:      "São Paulo",
		UF:             "SP",
		CEP:            "02002000",
	}
}
