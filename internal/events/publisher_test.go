package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"linearrag/internal/config"
)

func TestNewPublisherDisabledReturnsNil(t *testing.T) {
	p := NewPublisher(config.EventsConfig{Enabled: false})
	assert.Nil(t, p)
}

func TestNewPublisherMissingBrokersReturnsNil(t *testing.T) {
	p := NewPublisher(config.EventsConfig{Enabled: true})
	assert.Nil(t, p)
}

func TestPublishAndCloseOnNilPublisherAreNoops(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.Publish(context.Background(), Transition{Timestamp: time.Unix(0, 0)}))
	assert.NoError(t, p.Close())
}
