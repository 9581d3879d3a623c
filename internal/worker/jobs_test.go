package worker_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/itinerary"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/optimizer"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/planner"
	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/worker"
)

type optimizeCall struct {
	userID string
	id     string
	req    planner.OptimizeRequest
}

type fakeOptimizer struct {
	calls []optimizeCall
	err   error
}

func (f *fakeOptimizer) Optimize(_ context.Context, rc planner.RequestContext, id string, req planner.OptimizeRequest) (*optimizer.Result, error) {
	f.calls = append(f.calls, optimizeCall{userID: rc.UserID, id: id, req: req})
	if f.err != nil {
		return nil, f.err
	}
	return &optimizer.Result{}, nil
}

func newProcessor(opt worker.Optimizer, warmer worker.ForecastWarmer) *worker.Processor {
	return worker.NewProcessor(worker.ProcessorConfig{
		Optimizer: opt,
		RefreshJob: worker.NewRefreshJob(worker.RefreshJobConfig{
			Warmer: warmer,
			Logger: zerolog.Nop(),
		}),
		Logger: zerolog.Nop(),
	})
}

func TestProcessor_Optimize(t *testing.T) {
	opt := &fakeOptimizer{}
	p := newProcessor(opt, &fakeWarmer{})

	err := p.Process(context.Background(), []byte(`{"job_type":"itinerary_optimize","itinerary_id":"itn_1","user_id":"usr_1","criterion":"route","apply":true}`))
	require.NoError(t, err)

	require.Len(t, opt.calls, 1)
	assert.Equal(t, "usr_1", opt.calls[0].userID)
	assert.Equal(t, "itn_1", opt.calls[0].id)
	assert.Equal(t, planner.OptimizeRequest{Criterion: "route", Apply: true}, opt.calls[0].req)
}

func TestProcessor_OptimizeRequiresItinerary(t *testing.T) {
	p := newProcessor(&fakeOptimizer{}, &fakeWarmer{})

	err := p.Process(context.Background(), []byte(`{"job_type":"itinerary_optimize"}`))
	assert.ErrorIs(t, err, worker.ErrMalformedMessage)
	assert.False(t, worker.Retryable(err))
}

func TestProcessor_OptimizeErrorsKeepCause(t *testing.T) {
	opt := &fakeOptimizer{err: optimizer.ErrOptimizationInProgress}
	p := newProcessor(opt, &fakeWarmer{})

	err := p.Process(context.Background(), []byte(`{"job_type":"itinerary_optimize","itinerary_id":"itn_1","criterion":"budget"}`))
	assert.ErrorIs(t, err, optimizer.ErrOptimizationInProgress)
	assert.True(t, worker.Retryable(err))
}

func TestProcessor_WeatherRefresh(t *testing.T) {
	warmer := &fakeWarmer{}
	p := newProcessor(nil, warmer)

	require.NoError(t, p.Process(context.Background(), []byte(`{"job_type":"weather_refresh","cities":["hoian"]}`)))
	assert.Equal(t, []string{"hoian"}, warmer.cities())
}

func TestProcessor_WeatherRefreshTooManyFailures(t *testing.T) {
	fail := errors.New("provider unavailable")
	warmer := &fakeWarmer{failFor: map[string]error{"danang": fail, "hue": fail}}
	p := newProcessor(nil, warmer)

	err := p.Process(context.Background(), []byte(`{"job_type":"weather_refresh","cities":["danang","hue","hoian"]}`))
	require.Error(t, err)
	assert.True(t, worker.Retryable(err))
}

func TestProcessor_HealthCheck(t *testing.T) {
	warmer := &fakeWarmer{}
	p := newProcessor(nil, warmer)

	require.NoError(t, p.Process(context.Background(), []byte(`{"job_type":"health_check"}`)))
	require.Len(t, warmer.cities(), 1)

	failing := newProcessor(nil, &fakeWarmer{failFor: map[string]error{
		"danang": errors.New("down"),
		"hoian":  errors.New("down"),
	}})
	assert.Error(t, failing.Process(context.Background(), []byte(`{"job_type":"health_check"}`)))
}

func TestProcessor_RejectsBadPayloads(t *testing.T) {
	p := newProcessor(&fakeOptimizer{}, &fakeWarmer{})

	err := p.Process(context.Background(), []byte(`not json`))
	assert.ErrorIs(t, err, worker.ErrMalformedMessage)

	err = p.Process(context.Background(), []byte(`{"job_type":"provider_refresh"}`))
	assert.ErrorIs(t, err, worker.ErrUnknownJob)
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"not found", fmt.Errorf("optimize: %w", itinerary.ErrItineraryNotFound), false},
		{"validation", fmt.Errorf("optimize: %w", itinerary.NewValidationError("criterion", "is invalid")), false},
		{"unknown job", worker.ErrUnknownJob, false},
		{"version conflict", itinerary.ErrVersionConflict, true},
		{"transient", errors.New("connection reset"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, worker.Retryable(tt.err))
		})
	}
}
