package pyroscope

import (
	"context"
	"testing"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
)

func TestProfileTypes(t *testing.T) {
	cfg := config.GetDefaultConfig()
	svc := NewPyroscopeService(cfg, logger.NewNopLogger())
	assert.Equal(t,
		[]pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileInuseSpace, pyroscope.ProfileAllocSpace},
		svc.ProfileTypes())

	cfg.Pyroscope.ProfileTypes = []string{"CPU", " goroutines ", "unknown"}
	assert.Equal(t,
		[]pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileGoroutines},
		svc.ProfileTypes())
}

func TestDo_RunsWhenDisabled(t *testing.T) {
	ran := false
	var nilSvc *Service
	nilSvc.Do(context.Background(), "recognize", func(context.Context) { ran = true })
	assert.True(t, ran)

	ran = false
	svc := NewPyroscopeService(config.GetDefaultConfig(), logger.NewNopLogger())
	svc.Do(context.Background(), "recognize", func(context.Context) { ran = true })
	assert.True(t, ran)
}
