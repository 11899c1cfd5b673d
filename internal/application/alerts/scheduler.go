package alerts

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/invorya/stock-ledger/internal/domain"
	"github.com/invorya/stock-ledger/internal/infrastructure/metrics"
	"github.com/invorya/stock-ledger/pkg/logger"
)

// Scheduler ejecuta la reconciliación de alertas en un intervalo fijo y bajo
// demanda (RunNow). Garantiza a lo sumo una ejecución concurrente: una corrida
// disparada mientras otra sigue en curso se omite, no se encola.
type Scheduler struct {
	reconciler *Reconciler
	interval   time.Duration
	inFlight   atomic.Bool
	wg         sync.WaitGroup
	log        *logger.Logger
}

// NewScheduler construye el scheduler con el intervalo dado (por defecto 5 min
// vía configuración).
func NewScheduler(reconciler *Reconciler, interval time.Duration, log *logger.Logger) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		interval:   interval,
		log:        log,
	}
}

// Start lanza el temporizador en una goroutine. Cancelar ctx detiene el
// temporizador (no se programan corridas nuevas); una corrida en curso
// termina en lugar de cancelarse a la fuerza.
func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.log.Info().Dur("interval", s.interval).Msg("scheduler de alertas iniciado")
		for {
			select {
			case <-ctx.Done():
				s.log.Info().Msg("scheduler de alertas detenido")
				return
			case <-ticker.C:
				// La corrida no hereda la cancelación del ctx del scheduler:
				// si llega el apagado a mitad de pasada, la pasada se completa.
				err := s.tryRun(context.WithoutCancel(ctx))
				if err != nil && !errors.Is(err, domain.ErrConflict) {
					s.log.Error().Err(err).Msg("pasada periódica de reconciliación fallida")
				}
			}
		}
	}()
}

// Wait bloquea hasta que el temporizador haya terminado (tras cancelar ctx).
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// RunNow dispara una pasada bajo demanda. Devuelve domain.ErrConflict si hay
// una corrida en curso (se omite, no se encola); propaga el error del escaneo
// inicial si la pasada no pudo arrancar.
func (s *Scheduler) RunNow(ctx context.Context) error {
	return s.tryRun(ctx)
}

// tryRun entra a la corrida solo si el flag de exclusión está libre.
// El flag se limpia en defer: una corrida que falla no deja el scheduler trabado.
func (s *Scheduler) tryRun(ctx context.Context) error {
	if !s.inFlight.CompareAndSwap(false, true) {
		metrics.ReconcileSkipped.Inc()
		s.log.Debug().Msg("reconciliación omitida: corrida en curso")
		return domain.ErrConflict
	}
	defer s.inFlight.Store(false)
	return s.reconciler.Reconcile(ctx)
}
