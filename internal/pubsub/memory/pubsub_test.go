package memory

import (
	"context"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/flexprice/notebilling/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPubSub_DeliversToSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ps := NewPubSub(logger.NewNopLogger())
	defer ps.Close()

	msgs, err := ps.Subscribe(ctx, "topic")
	require.NoError(t, err)

	require.NoError(t, ps.Publish(ctx, "topic", message.NewMessage(watermill.NewUUID(), []byte("hello"))))

	select {
	case msg := <-msgs:
		assert.Equal(t, "hello", string(msg.Payload))
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("message not delivered")
	}
}
