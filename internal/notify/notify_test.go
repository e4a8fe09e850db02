package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisabledPublisherIsSafe(t *testing.T) {
	p := NewPublisher(nil, "crm-events")

	// publishing without brokers is a silent no-op
	p.Publish(context.Background(), "order-created", "o1", map[string]string{"id": "o1"})
	require.NoError(t, p.Close())

	var nilPublisher *Publisher
	assert.NotPanics(t, func() {
		nilPublisher.Publish(context.Background(), "order-created", "o1", nil)
	})
}
