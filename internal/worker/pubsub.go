package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/pubsub/v2"
	"github.com/rs/zerolog"

	"github.com/suka712/anvago-travel-planning-v2-sub001/internal/planner"
)

// PubSubHandler pulls job messages and hands them to a Processor.
type PubSubHandler struct {
	client           *pubsub.Client
	subscriber       *pubsub.Subscriber
	subscriptionName string
	processor        *Processor
	logger           zerolog.Logger
}

// PubSubConfig holds configuration for the Pub/Sub handler.
type PubSubConfig struct {
	ProjectID        string
	SubscriptionName string
	MaxOutstanding   int
	Processor        *Processor
	Logger           zerolog.Logger
}

// NewPubSubHandler creates a new Pub/Sub handler.
func NewPubSubHandler(ctx context.Context, cfg PubSubConfig) (*PubSubHandler, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	if cfg.MaxOutstanding <= 0 {
		cfg.MaxOutstanding = 10
	}

	subscriber := client.Subscriber(cfg.SubscriptionName)
	subscriber.ReceiveSettings.MaxOutstandingMessages = cfg.MaxOutstanding
	subscriber.ReceiveSettings.MaxExtension = 10 * time.Minute

	return &PubSubHandler{
		client:           client,
		subscriber:       subscriber,
		subscriptionName: cfg.SubscriptionName,
		processor:        cfg.Processor,
		logger:           cfg.Logger,
	}, nil
}

// Start receives messages until ctx is canceled.
func (h *PubSubHandler) Start(ctx context.Context) error {
	h.logger.Info().
		Str("subscription", h.subscriptionName).
		Msg("starting pubsub handler")

	return h.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		if h.handle(ctx, msg.ID, msg.Data) {
			msg.Ack()
			return
		}
		msg.Nack()
	})
}

// Close closes the Pub/Sub client.
func (h *PubSubHandler) Close() error {
	return h.client.Close()
}

// handle processes one message and reports whether it should be acked.
func (h *PubSubHandler) handle(ctx context.Context, id string, data []byte) bool {
	started := time.Now()
	logger := h.logger.With().Str("message_id", id).Logger()

	err := h.processor.Process(ctx, data)
	switch {
	case err == nil:
		logger.Info().Dur("duration", time.Since(started)).Msg("job completed")
		return true
	case Retryable(err):
		logger.Error().Err(err).Msg("job failed, will be redelivered")
		return false
	default:
		logger.Warn().Err(err).Msg("job dropped")
		return true
	}
}

// Publisher enqueues jobs on the worker topic.
type Publisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	logger    zerolog.Logger
}

// PublisherConfig holds configuration for the job publisher.
type PublisherConfig struct {
	ProjectID string
	TopicName string
	Logger    zerolog.Logger
}

// NewPublisher creates a job publisher.
func NewPublisher(ctx context.Context, cfg PublisherConfig) (*Publisher, error) {
	client, err := pubsub.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("creating pubsub client: %w", err)
	}
	return &Publisher{
		client:    client,
		publisher: client.Publisher(cfg.TopicName),
		logger:    cfg.Logger,
	}, nil
}

// Publish sends a job and waits for the server-assigned message ID.
func (p *Publisher) Publish(ctx context.Context, msg Message) (string, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("encoding job: %w", err)
	}

	id, err := p.publisher.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"job_type": msg.JobType},
	}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publishing %s job: %w", msg.JobType, err)
	}

	p.logger.Debug().Str("job_type", msg.JobType).Str("message_id", id).Msg("job published")
	return id, nil
}

// EnqueueOptimize queues an optimization of a caller's itinerary.
func (p *Publisher) EnqueueOptimize(ctx context.Context, userID, itineraryID string, req planner.OptimizeRequest) (string, error) {
	return p.Publish(ctx, Message{
		JobType:     JobItineraryOptimize,
		ItineraryID: itineraryID,
		UserID:      userID,
		Criterion:   req.Criterion,
		Apply:       req.Apply,
	})
}

// Close flushes pending messages and closes the client.
func (p *Publisher) Close() error {
	p.publisher.Stop()
	return p.client.Close()
}
