package fiscal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/seu-usuario/oficina-pro/internal/domain"
	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
	infranfse "github.com/seu-usuario/oficina-pro/internal/infrastructure/nfse"
	"github.com/seu-usuario/oficina-pro/pkg/logger"
)

const (
	// submitTimeout limita a espera síncrona pela aceitação do gateway. O
	// timeout não significa falha: a prefeitura pode simplesmente estar lenta.
	submitTimeout = 120 * time.Second
	// trackWindow limita o acompanhamento em background após a aceitação.
	trackWindow = 15 * time.Minute
	// attemptTTL mantém a tentativa consultável após o desfecho.
	attemptTTL = 30 * time.Minute
)

// Fases de uma tentativa de emissão, na ordem do fluxo.
const (
	PhaseValidating = "validando"
	PhaseSending    = "enviando"
	PhaseProcessing = "processando"
	PhaseCompleted  = "concluido"
	PhaseError      = "erro"
)

// GatewayFactory constrói um cliente do gateway com o token da empresa.
// A credencial é por empresa, então o cliente não pode ser singleton.
type GatewayFactory func(token string) infranfse.Gateway

// Attempt é o estado efêmero de uma tentativa de emissão em curso. Vive só no
// registro em memória; o que sobrevive a restart é o ServiceOrderInvoice.
type Attempt struct {
	mu        sync.Mutex
	orderID   string
	companyID string
	reference string
	phase     string
	message   string
	startedAt time.Time
	tracker   *Tracker
}

// AttemptView é o snapshot consistente de uma tentativa.
type AttemptView struct {
	OrderID   string    `json:"ordem_id"`
	Reference string    `json:"referencia"`
	Phase     string    `json:"fase"`
	Message   string    `json:"mensagem,omitempty"`
	StartedAt time.Time `json:"iniciada_em"`
}

func (a *Attempt) set(phase, message string) {
	a.mu.Lock()
	a.phase = phase
	a.message = message
	a.mu.Unlock()
}

func (a *Attempt) setReference(ref string) {
	a.mu.Lock()
	a.reference = ref
	a.mu.Unlock()
}

// Snapshot devolve uma cópia estável dos campos mutáveis.
func (a *Attempt) Snapshot() AttemptView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AttemptView{
		OrderID:   a.orderID,
		Reference: a.reference,
		Phase:     a.phase,
		Message:   a.message,
		StartedAt: a.startedAt,
	}
}

// inFlight cobre também a fase processando: o tracker ainda está vivo e uma
// nova submissão da mesma ordem derrubaria o acompanhamento.
func (a *Attempt) inFlight() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase == PhaseValidating || a.phase == PhaseSending || a.phase == PhaseProcessing
}

// close libera o tracker associado, se houver.
func (a *Attempt) close() {
	a.mu.Lock()
	tr := a.tracker
	a.tracker = nil
	a.mu.Unlock()
	if tr != nil {
		tr.Stop()
	}
}

// EmissionService orquestra a emissão: valida, persiste o registro, submete ao
// gateway e entrega o acompanhamento a um Tracker. O registro de tentativas em
// memória serve a consulta de progresso e barra submissões concorrentes da
// mesma ordem neste processo; a proteção entre processos é a guarda condicional
// do repositório.
type EmissionService struct {
	validator *Validator
	companies repository.CompanyRepository
	customers repository.CustomerRepository
	orders    repository.ServiceOrderRepository
	invoices  repository.InvoiceRepository
	gateway   GatewayFactory
	appEnv    string
	attempts  *cache.Cache
	log       *logger.Logger
}

// NewEmissionService constrói o serviço de emissão. appEnv "dev" simula o
// gateway: o fluxo completo roda, mas nada sai do processo.
func NewEmissionService(
	validator *Validator,
	companies repository.CompanyRepository,
	customers repository.CustomerRepository,
	orders repository.ServiceOrderRepository,
	invoices repository.InvoiceRepository,
	gateway GatewayFactory,
	appEnv string,
	log *logger.Logger,
) *EmissionService {
	attempts := cache.New(attemptTTL, 10*time.Minute)
	attempts.OnEvicted(func(_ string, v any) {
		if a, ok := v.(*Attempt); ok {
			a.close()
		}
	})
	return &EmissionService{
		validator: validator,
		companies: companies,
		customers: customers,
		orders:    orders,
		invoices:  invoices,
		gateway:   gateway,
		appEnv:    appEnv,
		attempts:  attempts,
		log:       log,
	}
}

// Attempt devolve o snapshot da tentativa mais recente da ordem, se ainda
// estiver no registro. A tentativa só é visível para a empresa que a iniciou.
func (s *EmissionService) Attempt(companyID, orderID string) (AttemptView, bool) {
	v, ok := s.attempts.Get(orderID)
	if !ok {
		return AttemptView{}, false
	}
	a := v.(*Attempt)
	if a.companyID != companyID {
		return AttemptView{}, false
	}
	return a.Snapshot(), true
}

// Emit executa o fluxo completo de emissão para a ordem. As pendências da
// validação são devolvidas sempre; quando alguma é bloqueante o erro é
// domain.ErrEmissionBlocked e nada é submetido.
func (s *EmissionService) Emit(ctx context.Context, companyID, orderID string) ([]nfse.Issue, error) {
	// A posse da ordem é verificada antes de tocar no registro de tentativas:
	// uma chamada com outra empresa não pode derrubar uma tentativa em curso.
	order, err := s.orders.GetByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar ordem: %w", err)
	}
	if order == nil || order.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}

	if prev, ok := s.attempts.Get(orderID); ok {
		pa := prev.(*Attempt)
		if pa.inFlight() {
			return nil, fmt.Errorf("%w: emissão desta ordem já em andamento", domain.ErrConflict)
		}
		pa.close()
	}

	attempt := &Attempt{orderID: orderID, companyID: companyID, phase: PhaseValidating, startedAt: time.Now()}
	s.attempts.Set(orderID, attempt, cache.DefaultExpiration)

	issues, err := s.validator.Validate(companyID, orderID)
	if err != nil {
		attempt.set(PhaseError, "falha na validação")
		return nil, err
	}
	if !nfse.CanEmit(issues) {
		attempt.set(PhaseError, "pendências bloqueantes impedem a emissão")
		return issues, domain.ErrEmissionBlocked
	}

	company, err := s.companies.GetByID(companyID)
	if err != nil || company == nil {
		attempt.set(PhaseError, "empresa não encontrada")
		return issues, firstErr(err, domain.ErrNotFound)
	}
	customer, err := s.customers.GetByID(order.CustomerID)
	if err != nil || customer == nil {
		attempt.set(PhaseError, "cliente não encontrado")
		return issues, firstErr(err, domain.ErrNotFound)
	}
	items, err := s.orders.GetItems(orderID)
	if err != nil {
		attempt.set(PhaseError, "falha ao carregar itens")
		return issues, err
	}

	rec, err := s.ensureRecord(ctx, company, order)
	if err != nil {
		attempt.set(PhaseError, err.Error())
		return issues, err
	}
	attempt.setReference(rec.Reference)
	attempt.set(PhaseSending, "")

	if s.appEnv == "dev" {
		s.simulate(ctx, rec, attempt)
		return issues, nil
	}

	rps := buildRPS(company, customer, order, items)
	gw := s.gateway(company.NFSEToken)

	subCtx, cancel := context.WithTimeout(ctx, submitTimeout)
	defer cancel()

	res, err := gw.Emit(subCtx, rec.Reference, rps)
	switch {
	case err != nil && errors.Is(err, context.DeadlineExceeded):
		// Timeout não é rejeição: a prefeitura pode ter aceitado e estar
		// processando. Marca como processando e deixa o tracker convergir.
		s.apply(ctx, rec.Reference, nfse.Update{Status: nfse.StatusProcessing})
		attempt.set(PhaseProcessing, "a prefeitura ainda está processando; o status será atualizado automaticamente")
		s.startTracking(rec.Reference, attempt, nil)
		return issues, nil
	case err != nil:
		// Falha de transporte antes da aceitação: o desfecho é desconhecido.
		s.log.Error().Err(err).Str("ref", rec.Reference).Msg("emissão: falha de transporte")
		attempt.set(PhaseError, "falha de comunicação com o gateway; verifique o status mais tarde")
		return issues, fmt.Errorf("fiscal: submeter NFS-e: %w", err)
	case !res.Accepted:
		s.apply(ctx, rec.Reference, nfse.Update{
			Status:       nfse.StatusError,
			ErrorMessage: res.ErrorMessage,
			ErrorCode:    res.ErrorCode,
		})
		attempt.set(PhaseError, nfse.Coded(res.ErrorCode, res.ErrorMessage))
		return issues, nil
	}

	s.apply(ctx, rec.Reference, nfse.Update{Status: nfse.StatusProcessing})
	attempt.set(PhaseProcessing, "")
	s.startTracking(rec.Reference, attempt, nil)
	return issues, nil
}

// ensureRecord devolve o registro da NFS-e da ordem em status "enviando",
// criando-o na primeira emissão. A reference, uma vez atribuída, é reutilizada
// em reemissões: é a chave de idempotência junto ao gateway.
func (s *EmissionService) ensureRecord(ctx context.Context, company *entity.Company, order *entity.ServiceOrder) (*entity.ServiceOrderInvoice, error) {
	rec, err := s.invoices.GetByServiceOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("fiscal: carregar registro: %w", err)
	}
	if rec == nil {
		now := time.Now()
		rec = &entity.ServiceOrderInvoice{
			ID:             uuid.New().String(),
			CompanyID:      company.ID,
			ServiceOrderID: order.ID,
			Reference:      uuid.New().String(),
			Status:         nfse.StatusSending,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.invoices.Create(rec); err != nil {
			return nil, fmt.Errorf("fiscal: criar registro: %w", err)
		}
		return rec, nil
	}
	if rec.Status == nfse.StatusAuthorized {
		return nil, fmt.Errorf("%w: NFS-e já autorizada para esta ordem", domain.ErrConflict)
	}
	if rec.Status == nfse.StatusSending || rec.Status == nfse.StatusProcessing {
		return nil, fmt.Errorf("%w: emissão anterior ainda em processamento", domain.ErrConflict)
	}
	rec.Status = nfse.StatusSending
	rec.ErrorMessage = ""
	rec.ErrorCode = ""
	rec.UpdatedAt = time.Now()
	if err := s.invoices.Update(rec); err != nil {
		return nil, fmt.Errorf("fiscal: atualizar registro: %w", err)
	}
	return rec, nil
}

// simulate completa o fluxo sem gateway, para ambiente dev.
func (s *EmissionService) simulate(ctx context.Context, rec *entity.ServiceOrderInvoice, attempt *Attempt) {
	s.apply(ctx, rec.Reference, nfse.Update{Status: nfse.StatusProcessing})
	s.apply(ctx, rec.Reference, nfse.Update{
		Status:           nfse.StatusAuthorized,
		Number:           "000001",
		VerificationCode: "SIMULADO",
	})
	attempt.set(PhaseCompleted, "emissão simulada (ambiente dev)")
	s.log.Info().Str("ref", rec.Reference).Msg("emissão: autorização simulada")
}

func (s *EmissionService) startTracking(ref string, attempt *Attempt, onDone func()) {
	tr := NewTracker(s.invoices, ref, 0, TrackerCallbacks{
		OnAuthorized: func(inv *entity.ServiceOrderInvoice) {
			attempt.set(PhaseCompleted, "")
			if onDone != nil {
				onDone()
			}
		},
		OnError: func(inv *entity.ServiceOrderInvoice) {
			attempt.set(PhaseError, nfse.Coded(inv.ErrorCode, inv.ErrorMessage))
			if onDone != nil {
				onDone()
			}
		},
	}, s.log)

	attempt.mu.Lock()
	attempt.tracker = tr
	attempt.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), trackWindow)
	tr.Start(ctx)
	go func() {
		<-tr.Done()
		cancel()
	}()
}

// apply grava a atualização via escrita condicional, só registrando em log
// quando a guarda recusa: o registro pode já ter avançado pelo webhook.
func (s *EmissionService) apply(ctx context.Context, ref string, up nfse.Update) {
	applied, err := s.invoices.ApplyByReference(ctx, ref, up)
	if err != nil {
		s.log.Error().Err(err).Str("ref", ref).Str("status", up.Status).Msg("emissão: falha ao persistir status")
		return
	}
	if !applied {
		s.log.Info().Str("ref", ref).Str("status", up.Status).Msg("emissão: transição recusada pela guarda")
	}
}

// buildRPS monta o corpo de emissão a partir da ordem validada. Só itens de
// serviço entram; a alíquota e o código vêm do primeiro serviço não isento.
func buildRPS(company *entity.Company, customer *entity.Customer, order *entity.ServiceOrder, items []*entity.ServiceOrderItem) *infranfse.RPS {
	var (
		lines     []string
		total     = decimal.Zero
		itemCode  string
		aliquota  decimal.Decimal
		issRetido bool
	)
	for _, it := range items {
		if !it.IsService() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s (%s x R$ %s)",
			it.Descricao, it.Quantidade.String(), it.ValorUnitario.StringFixed(2)))
		total = total.Add(it.ValorTotal)
		if it.ISSRetido {
			issRetido = true
		}
		if itemCode == "" && !it.IsentoISS {
			itemCode = nfse.NormalizeServiceCode(it.CodigoServicoMunicipal)
			aliquota = it.Aliquota
		}
	}

	tomador := infranfse.RPSTomador{
		RazaoSocial: customer.Nome,
		Email:       customer.Email,
		Endereco: infranfse.RPSEndereco{
			Logradouro:  customer.Logradouro,
			Numero:      customer.NumeroEndereco,
			Complemento: customer.Complemento,
			Bairro:      customer.Bairro,
			Municipio:   customer.Municipio,
			UF:          customer.UF,
			CEP:         customer.CEP,
		},
	}
	if customer.CNPJ != "" {
		tomador.CNPJ = customer.CNPJ
	} else {
		tomador.CPF = customer.CPF
	}

	return &infranfse.RPS{
		DataEmissao: time.Now().Format("2006-01-02"),
		Prestador: infranfse.RPSPrestador{
			CNPJ:               company.CNPJ,
			InscricaoMunicipal: company.InscricaoMunicipal,
			CodigoMunicipio:    company.CodigoMunicipio,
		},
		Tomador: tomador,
		Servico: infranfse.RPSServico{
			Discriminacao:    strings.Join(lines, "\n"),
			ISSRetido:        issRetido,
			ItemListaServico: itemCode,
			ValorServicos:    total.InexactFloat64(),
			Aliquota:         aliquota.InexactFloat64(),
		},
	}
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
