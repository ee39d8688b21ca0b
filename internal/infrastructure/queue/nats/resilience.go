package nats

import (
	"github.com/nats-io/nats.go"

	"github.com/kirillkom/quote-assistant/internal/infrastructure/resilience"
)

var classifyNATSError = resilience.NewClassifier(
	resilience.TransientOn(nats.ErrNoServers, nats.ErrTimeout, nats.ErrConnectionClosed, nats.ErrDisconnected, nats.ErrConnectionReconnecting),
)

func wrapTemporaryIfNeeded(err error) error {
	return resilience.WrapTemporary("nats publish", err, classifyNATSError)
}
