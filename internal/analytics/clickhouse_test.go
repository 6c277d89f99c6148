package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linearrag/internal/config"
)

func TestOpenDisabledReturnsNilSink(t *testing.T) {
	sink, err := Open(context.Background(), config.AnalyticsConfig{Enabled: false})
	require.NoError(t, err)
	assert.Nil(t, sink)
}

func TestRecordOnNilSinkIsNoop(t *testing.T) {
	var sink *Sink
	assert.NoError(t, sink.Record(context.Background(), time.Time{}, nil))
}
