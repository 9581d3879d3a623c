package worker

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestPubSubHandler_AckDecisions(t *testing.T) {
	h := &PubSubHandler{
		processor: NewProcessor(ProcessorConfig{
			RefreshJob: NewRefreshJob(RefreshJobConfig{Logger: zerolog.Nop()}),
			Logger:     zerolog.Nop(),
		}),
		logger: zerolog.Nop(),
	}

	assert.True(t, h.handle(context.Background(), "1", []byte(`{"job_type":"health_check"}`)))
	assert.True(t, h.handle(context.Background(), "2", []byte(`garbage`)), "poison messages are acked")
	assert.True(t, h.handle(context.Background(), "3", []byte(`{"job_type":"mystery"}`)))
	assert.False(t, h.handle(context.Background(), "4", []byte(`{"job_type":"itinerary_optimize","itinerary_id":"itn_1"}`)),
		"missing optimizer is retried once configured")
}
