// Package events defines the messages pushed to websocket clients.
package events

// MessageType names a websocket message.
type MessageType string

const (
	// Connection is the first message on every connection.
	Connection MessageType = "connection"

	// DatasetLoaded carries the domain.LoadSummary of a new current dataset.
	DatasetLoaded MessageType = "dataset:loaded"

	// DatasetLoadFailed reports a load that left the current dataset as it was.
	DatasetLoadFailed MessageType = "dataset:load_failed"
)

// StatusConnected is the Status of every ConnectionEvent.
const StatusConnected = "connected"

// ConnectionEvent greets a newly registered client.
type ConnectionEvent struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
}

// DatasetLoadFailedEvent is the payload of DatasetLoadFailed.
type DatasetLoadFailedEvent struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}
