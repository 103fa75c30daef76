package fiscal

import (
	"context"
	"sync"
	"time"

	"github.com/seu-usuario/oficina-pro/internal/domain/entity"
	"github.com/seu-usuario/oficina-pro/internal/domain/nfse"
	"github.com/seu-usuario/oficina-pro/internal/domain/repository"
	"github.com/seu-usuario/oficina-pro/pkg/logger"
)

// defaultPollInterval é o intervalo de polling do registro persistido. O
// registro é o único canal que garante refletir as escritas do webhook a
// partir deste processo, por isso o tracker consulta a DB e não o gateway.
const defaultPollInterval = 3 * time.Second

// TrackerCallbacks são invocados exatamente uma vez, na primeira observação
// de um estado terminal.
type TrackerCallbacks struct {
	OnAuthorized func(inv *entity.ServiceOrderInvoice)
	OnError      func(inv *entity.ServiceOrderInvoice)
}

// Tracker acompanha um registro de NFS-e até estado terminal via polling.
// É um objeto com ciclo de vida explícito, possuído por quem o iniciou:
// o ticker é liberado em todo caminho de saída (terminal observado, Stop,
// cancelamento do contexto), nunca fica como timer ambiente solto.
type Tracker struct {
	invoices  repository.InvoiceRepository
	reference string
	interval  time.Duration
	callbacks TrackerCallbacks
	log       *logger.Logger

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once
	fireOnce sync.Once
}

// NewTracker constrói o tracker. interval <= 0 usa o intervalo padrão de 3 s.
func NewTracker(invoices repository.InvoiceRepository, reference string, interval time.Duration, cb TrackerCallbacks, log *logger.Logger) *Tracker {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &Tracker{
		invoices:  invoices,
		reference: reference,
		interval:  interval,
		callbacks: cb,
		log:       log,
		done:      make(chan struct{}),
	}
}

// Start inicia o loop de polling numa goroutine. O ctx limita a janela total
// de acompanhamento; a autorização pode legitimamente demorar minutos, então
// o chamador decide o teto.
func (t *Tracker) Start(ctx context.Context) {
	ctx, t.cancel = context.WithCancel(ctx)
	go t.run(ctx)
}

// Stop cancela o polling. Idempotente; seguro chamar de qualquer goroutine.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		if t.cancel != nil {
			t.cancel()
		}
	})
}

// Done fecha quando o loop terminou (estado terminal, Stop ou ctx).
func (t *Tracker) Done() <-chan struct{} { return t.done }

func (t *Tracker) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if t.tick(ctx) {
				return
			}
		}
	}
}

// tick executa um ciclo completo de consulta; devolve true quando o estado é
// terminal e o polling deve parar. Ciclos nunca se sobrepõem: o próximo só
// começa depois que este devolve.
func (t *Tracker) tick(ctx context.Context) bool {
	inv, err := t.invoices.GetByReference(ctx, t.reference)
	if err != nil {
		t.log.Warn().Err(err).Str("ref", t.reference).Msg("tracker: falha ao consultar registro")
		return false
	}
	if inv == nil {
		t.log.Warn().Str("ref", t.reference).Msg("tracker: registro sumiu, encerrando")
		return true
	}

	switch {
	case inv.Status == nfse.StatusAuthorized:
		t.fireOnce.Do(func() {
			if t.callbacks.OnAuthorized != nil {
				t.callbacks.OnAuthorized(inv)
			}
		})
		return true
	case inv.Status == nfse.StatusError || inv.Status == nfse.StatusRejected ||
		inv.Status == nfse.StatusCancelled || inv.ErrorMessage != "":
		// Checagem defensiva da mensagem: status e error_message podem divergir
		// quando o gateway reporta erro sob um status não-erro.
		t.fireOnce.Do(func() {
			if t.callbacks.OnError != nil {
				t.callbacks.OnError(inv)
			}
		})
		return true
	default:
		// enviando / processando_autorizacao: continua o polling.
		return false
	}
}
