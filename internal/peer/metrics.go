package peer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/Garsondee/Tank-Arena/internal/peer"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics counts protocol traffic. Uses the global OTel meter, so it is a
// no-op unless a provider is installed.
type metrics struct {
	sent     metric.Int64Counter
	received metric.Int64Counter
	dropped  metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := meter()
	var (
		mt  metrics
		err error
	)

	mt.sent, err = m.Int64Counter(
		"peer.messages.sent",
		metric.WithDescription("Protocol messages sent to the peer"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating sent counter: %w", err)
	}

	mt.received, err = m.Int64Counter(
		"peer.messages.received",
		metric.WithDescription("Protocol messages received and applied"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating received counter: %w", err)
	}

	mt.dropped, err = m.Int64Counter(
		"peer.messages.dropped",
		metric.WithDescription("Inbound messages dropped as malformed or out of order"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}
	return &mt, nil
}

func (m *metrics) recordSent(topic Topic) {
	m.sent.Add(context.Background(), 1, metric.WithAttributes(attribute.String("topic", string(topic))))
}

func (m *metrics) recordReceived(topic Topic) {
	m.received.Add(context.Background(), 1, metric.WithAttributes(attribute.String("topic", string(topic))))
}

func (m *metrics) recordDropped(topic Topic, reason string) {
	m.dropped.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("topic", string(topic)),
		attribute.String("reason", reason),
	))
}
