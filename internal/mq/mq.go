// Package mq provides a broker-agnostic publisher for the auth event stream.
package mq

import (
	"context"
	"fmt"

	"github.com/gatehouse/apiserver/config"
)

// Backend defines the broker operations the event stream relies on.
type Backend interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
	Close() error
}

// NewBackend constructs the broker selected by config. An empty backend name
// disables event publishing and returns nil.
func NewBackend(ctx context.Context, cfg config.MQConfig) (Backend, error) {
	switch cfg.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		return NewRabbitMQClient(cfg.RabbitMQ)
	case "pubsub":
		return NewPubSubClient(ctx, cfg.PubSub)
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.Backend)
	}
}
