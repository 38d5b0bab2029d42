package manager

import "github.com/rs/zerolog"

// Event represents a manager lifecycle event.
// Minimal and stable: name + model ID and optional fields via key/values.
type Event struct {
	Name    string
	ModelID string
	Fields  map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

// LogPublisher writes events to a structured logger. Used by the daemon.
type LogPublisher struct {
	log zerolog.Logger
}

// NewLogPublisher wraps a zerolog logger as an EventPublisher.
func NewLogPublisher(log zerolog.Logger) *LogPublisher {
	return &LogPublisher{log: log}
}

func (p *LogPublisher) Publish(e Event) {
	ev := p.log.Info().Str("model", e.ModelID)
	for k, v := range e.Fields {
		ev = ev.Interface(k, v)
	}
	ev.Msg(e.Name)
}
