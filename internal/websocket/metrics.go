package websocket

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// HubMetrics are the OpenTelemetry instruments of a hub.
type HubMetrics struct {
	connections metric.Int64UpDownCounter
	messages    metric.Int64Counter
	dropped     metric.Int64Counter
}

// NewHubMetrics creates the hub instruments on meter. A nil meter yields
// no-op instruments.
func NewHubMetrics(meter metric.Meter) (*HubMetrics, error) {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("epicli/websocket")
	}

	connections, err := meter.Int64UpDownCounter("websocket_connections_active",
		metric.WithDescription("Number of connected websocket clients"))
	if err != nil {
		return nil, err
	}

	messages, err := meter.Int64Counter("websocket_messages_total",
		metric.WithDescription("Messages broadcast to websocket clients"))
	if err != nil {
		return nil, err
	}

	dropped, err := meter.Int64Counter("websocket_messages_dropped_total",
		metric.WithDescription("Messages dropped because a queue was full"))
	if err != nil {
		return nil, err
	}

	return &HubMetrics{connections: connections, messages: messages, dropped: dropped}, nil
}

func (m *HubMetrics) clientConnected(ctx context.Context) {
	if m != nil {
		m.connections.Add(ctx, 1)
	}
}

func (m *HubMetrics) clientDisconnected(ctx context.Context) {
	if m != nil {
		m.connections.Add(ctx, -1)
	}
}

func (m *HubMetrics) messageSent(ctx context.Context, messageType string) {
	if m != nil {
		m.messages.Add(ctx, 1, metric.WithAttributes(attribute.String("type", messageType)))
	}
}

func (m *HubMetrics) messageDropped(ctx context.Context, where string) {
	if m != nil {
		m.dropped.Add(ctx, 1, metric.WithAttributes(attribute.String("queue", where)))
	}
}
