package workers

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

const DefaultQueueSize = 100

// EffectHandler consumes one committed effect. Errors are logged by the
// worker and never reach the transition that produced the effect.
type EffectHandler interface {
	Handle(ctx context.Context, effect domain.Effect) error
}

type HandlerFunc func(ctx context.Context, effect domain.Effect) error

func (f HandlerFunc) Handle(ctx context.Context, effect domain.Effect) error {
	return f(ctx, effect)
}

// EffectWorker is a fire-and-forget dispatcher: Publish never blocks and
// drops effects when the queue is full.
type EffectWorker struct {
	jobs     chan domain.Effect
	handlers []EffectHandler
	log      *logrus.Logger
	done     chan struct{}
	once     sync.Once
}

var _ domain.EffectPublisher = (*EffectWorker)(nil)

func NewEffectWorker(log *logrus.Logger, queueSize int, handlers ...EffectHandler) *EffectWorker {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EffectWorker{
		jobs:     make(chan domain.Effect, queueSize),
		handlers: handlers,
		log:      log,
		done:     make(chan struct{}),
	}
}

func (w *EffectWorker) Start(ctx context.Context) {
	w.once.Do(func() {
		go func() {
			defer close(w.done)
			w.log.Info("effect worker started")
			for {
				select {
				case effect := <-w.jobs:
					w.process(ctx, effect)
				case <-ctx.Done():
					w.log.WithField("pending", len(w.jobs)).Info("effect worker shutting down")
					return
				}
			}
		}()
	})
}

// Done is closed once the worker loop has exited.
func (w *EffectWorker) Done() <-chan struct{} {
	return w.done
}

func (w *EffectWorker) Publish(effects ...domain.Effect) {
	for _, effect := range effects {
		select {
		case w.jobs <- effect:
		default:
			w.log.WithFields(logrus.Fields{
				"kind":    effect.Kind,
				"user_id": effect.UserID,
			}).Warn("effect queue full, dropping effect")
		}
	}
}

func (w *EffectWorker) process(ctx context.Context, effect domain.Effect) {
	for _, h := range w.handlers {
		w.dispatch(ctx, h, effect)
	}
}

func (w *EffectWorker) dispatch(ctx context.Context, h EffectHandler, effect domain.Effect) {
	entry := w.log.WithFields(logrus.Fields{
		"kind":      effect.Kind,
		"user_id":   effect.UserID,
		"source_id": effect.SourceID,
	})

	defer func() {
		if r := recover(); r != nil {
			entry.Errorf("effect handler panicked: %v", r)
		}
	}()

	if err := h.Handle(ctx, effect); err != nil {
		entry.WithError(err).Error("effect handler failed")
	}
}
