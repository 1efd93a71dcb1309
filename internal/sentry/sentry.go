package sentry

import (
	"context"
	"time"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/getsentry/sentry-go"
	"go.uber.org/fx"
)

const flushTimeout = 2 * time.Second

// Reporter is the reporting surface services and middleware depend on
type Reporter interface {
	CaptureException(ctx context.Context, err error, tags map[string]string)
}

var _ Reporter = (*Service)(nil)

// Service reports failures to Sentry. Every method is a no-op when Sentry is disabled
// or the service is nil.
type Service struct {
	cfg    *config.SentryConfig
	logger *logger.Logger
}

func Module() fx.Option {
	return fx.Options(
		fx.Provide(
			NewSentryService,
			func(s *Service) Reporter { return s },
		),
		fx.Invoke(RegisterHooks),
	)
}

func NewSentryService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{cfg: &cfg.Sentry, logger: logger}
}

// RegisterHooks initializes the client on start and flushes queued events on stop
func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.IsEnabled() {
				svc.logger.Info("sentry is disabled")
				return nil
			}
			if err := svc.init(); err != nil {
				svc.logger.Errorw("failed to initialize sentry", "error", err)
				return err
			}
			svc.logger.Infow("sentry initialized",
				"environment", svc.cfg.Environment,
				"sample_rate", svc.cfg.SampleRate,
			)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			svc.Flush()
			return nil
		},
	})
}

func (s *Service) init() error {
	return sentry.Init(sentry.ClientOptions{
		Dsn:              s.cfg.DSN,
		Environment:      s.cfg.Environment,
		EnableTracing:    s.cfg.SampleRate > 0,
		TracesSampleRate: s.cfg.SampleRate,
		TracesSampler: sentry.TracesSampler(func(ctx sentry.SamplingContext) float64 {
			if ctx.Span.Name == "GET /health" {
				return 0
			}
			return s.cfg.SampleRate
		}),
	})
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.cfg.Enabled
}

// hub prefers the request hub set by the gin middleware
func hub(ctx context.Context) *sentry.Hub {
	if h := sentry.GetHubFromContext(ctx); h != nil {
		return h
	}
	return sentry.CurrentHub()
}

// CaptureException reports err with the given tags attached to the event only
func (s *Service) CaptureException(ctx context.Context, err error, tags map[string]string) {
	if !s.IsEnabled() || err == nil {
		return
	}
	h := hub(ctx).Clone()
	h.Scope().SetTags(tags)
	h.CaptureException(err)
}

func (s *Service) AddBreadcrumb(ctx context.Context, category, message string, data map[string]interface{}) {
	if !s.IsEnabled() {
		return
	}
	hub(ctx).AddBreadcrumb(&sentry.Breadcrumb{
		Category: category,
		Message:  message,
		Level:    sentry.LevelInfo,
		Data:     data,
	}, nil)
}

// StartSpan starts a child span of the transaction in ctx. The returned finish func
// is always safe to call.
func (s *Service) StartSpan(ctx context.Context, op, description string) (context.Context, func()) {
	if !s.IsEnabled() {
		return ctx, func() {}
	}
	span := sentry.StartSpan(ctx, op, sentry.WithDescription(description))
	return span.Context(), span.Finish
}

func (s *Service) Flush() bool {
	if !s.IsEnabled() {
		return true
	}
	return sentry.Flush(flushTimeout)
}
