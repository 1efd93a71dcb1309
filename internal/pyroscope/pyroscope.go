package pyroscope

import (
	"context"
	"strings"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/grafana/pyroscope-go"
	"go.uber.org/fx"
)

var profileTypes = map[string]pyroscope.ProfileType{
	"cpu":            pyroscope.ProfileCPU,
	"alloc_objects":  pyroscope.ProfileAllocObjects,
	"alloc_space":    pyroscope.ProfileAllocSpace,
	"inuse_objects":  pyroscope.ProfileInuseObjects,
	"inuse_space":    pyroscope.ProfileInuseSpace,
	"goroutines":     pyroscope.ProfileGoroutines,
	"mutex_count":    pyroscope.ProfileMutexCount,
	"mutex_duration": pyroscope.ProfileMutexDuration,
	"block_count":    pyroscope.ProfileBlockCount,
	"block_duration": pyroscope.ProfileBlockDuration,
}

// Service runs the continuous profiler and labels hot paths so their samples can be
// filtered by operation
type Service struct {
	cfg      *config.PyroscopeConfig
	logger   *logger.Logger
	profiler *pyroscope.Profiler
}

func Module() fx.Option {
	return fx.Options(
		fx.Provide(NewPyroscopeService),
		fx.Invoke(RegisterHooks),
	)
}

func NewPyroscopeService(cfg *config.Configuration, logger *logger.Logger) *Service {
	return &Service{cfg: &cfg.Pyroscope, logger: logger}
}

func RegisterHooks(lc fx.Lifecycle, svc *Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if !svc.IsEnabled() {
				svc.logger.Info("pyroscope profiling is disabled")
				return nil
			}
			return svc.start()
		},
		OnStop: func(ctx context.Context) error {
			if svc.profiler == nil {
				return nil
			}
			return svc.profiler.Stop()
		},
	})
}

func (s *Service) start() error {
	types := s.ProfileTypes()
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   s.cfg.ApplicationName,
		ServerAddress:     s.cfg.ServerAddress,
		BasicAuthUser:     s.cfg.BasicAuthUser,
		BasicAuthPassword: s.cfg.BasicAuthPass,
		SampleRate:        s.cfg.SampleRate,
		ProfileTypes:      types,
		Logger:            s,
	})
	if err != nil {
		s.logger.Errorw("failed to start pyroscope", "error", err)
		return err
	}
	s.profiler = profiler
	s.logger.Infow("pyroscope profiling started",
		"application_name", s.cfg.ApplicationName,
		"server_address", s.cfg.ServerAddress,
		"profile_types", types,
	)
	return nil
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.cfg.Enabled
}

// ProfileTypes maps the configured names; unknown names are skipped and an empty
// list means cpu plus heap
func (s *Service) ProfileTypes() []pyroscope.ProfileType {
	var out []pyroscope.ProfileType
	for _, name := range s.cfg.ProfileTypes {
		if t, ok := profileTypes[strings.ToLower(strings.TrimSpace(name))]; ok {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileInuseSpace, pyroscope.ProfileAllocSpace}
	}
	return out
}

// Do runs fn with the operation label attached to its profile samples
func (s *Service) Do(ctx context.Context, operation string, fn func(ctx context.Context)) {
	if !s.IsEnabled() {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels("operation", operation), fn)
}

func (s *Service) Debugf(format string, args ...interface{}) {
	s.logger.Debugf("[pyroscope] "+format, args...)
}

func (s *Service) Infof(format string, args ...interface{}) {
	s.logger.Infof("[pyroscope] "+format, args...)
}

func (s *Service) Errorf(format string, args ...interface{}) {
	s.logger.Errorf("[pyroscope] "+format, args...)
}
