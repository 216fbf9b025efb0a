package main

import (
	"context"

	gcppubsub "cloud.google.com/go/pubsub/v2"
)

type gcpPublisher struct {
	topic *gcppubsub.Publisher
}

func newGCPPublisher(p *gcppubsub.Publisher) publisher {
	if p == nil {
		return nil
	}
	return &gcpPublisher{topic: p}
}

func (p *gcpPublisher) Publish(ctx context.Context, msg *gcppubsub.Message) publishResult {
	return &gcpResult{
		result:      p.topic.Publish(ctx, msg),
		topic:       p.topic,
		orderingKey: msg.OrderingKey,
	}
}

type gcpResult struct {
	result      *gcppubsub.PublishResult
	topic       *gcppubsub.Publisher
	orderingKey string
}

// Get waits for the server id. A failed ordered publish pauses its key on the
// client, so the key is resumed for the next attempt.
func (r *gcpResult) Get(ctx context.Context) (string, error) {
	id, err := r.result.Get(ctx)
	if err != nil && r.orderingKey != "" {
		r.topic.ResumePublish(r.orderingKey)
	}
	return id, err
}
