package sentry

import (
	"context"
	"errors"
	"testing"

	"github.com/flexprice/notebilling/internal/config"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/stretchr/testify/assert"
)

func TestService_DisabledIsNoop(t *testing.T) {
	svc := NewSentryService(config.GetDefaultConfig(), logger.NewNopLogger())
	assert.False(t, svc.IsEnabled())

	ctx := context.Background()
	svc.CaptureException(ctx, errors.New("boom"), map[string]string{"operation": "test"})
	svc.AddBreadcrumb(ctx, "queue", "enqueued", nil)

	spanCtx, finish := svc.StartSpan(ctx, "recognize", "a.png")
	assert.Equal(t, ctx, spanCtx)
	finish()
	assert.True(t, svc.Flush())
}

func TestService_NilIsNoop(t *testing.T) {
	var svc *Service
	assert.False(t, svc.IsEnabled())
	svc.CaptureException(context.Background(), errors.New("boom"), nil)
	assert.True(t, svc.Flush())
}
