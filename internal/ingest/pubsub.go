package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub/v2"
)

// TopicRawHTML is the stream topic carrying raw HTML records.
const TopicRawHTML = "raw-html-events"

// PubSubPublisher implements StreamPublisher on Google Cloud Pub/Sub.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
}

func fullTopicName(projectID, topicID string) string {
	return fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
}

// NewPubSubPublisher connects to Pub/Sub using Application Default
// Credentials and prepares an ordering-enabled publisher for the topic.
func NewPubSubPublisher(ctx context.Context, projectID, topicID string) (*PubSubPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	publisher := client.Publisher(fullTopicName(projectID, topicID))
	publisher.EnableMessageOrdering = true
	return &PubSubPublisher{client: client, publisher: publisher}, nil
}

// Publish marshals the payload and publishes it keyed by URL. It blocks
// until the server acknowledges, so a broker outage surfaces as an error
// here and triggers the caller's fallback path.
func (p *PubSubPublisher) Publish(ctx context.Context, key string, payload Payload) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:        data,
		OrderingKey: key,
		Attributes: map[string]string{
			"source":     payload.Source,
			"agent_type": payload.AgentType,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish message: %w", err)
	}
	return id, nil
}

// Close stops the publisher and releases the client connection.
func (p *PubSubPublisher) Close() error {
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
