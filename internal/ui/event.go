package ui

// Status is the state of one file in a batch.
type Status uint8

const (
	StatusQueued Status = iota
	StatusLinting
	StatusFixing
	StatusDone
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "queued"
	case StatusLinting:
		return "linting"
	case StatusFixing:
		return "fixing"
	case StatusDone:
		return "done"
	case StatusError:
		return "error"
	}
	return ""
}

// Event reports a status change of File.
type Event struct {
	File   string
	Status Status
	Note   string
}

// Sink receives progress events from workers.
type Sink interface {
	Emit(ev Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) Emit(ev Event) {
	s.Ch <- ev
}

// NopSink drops every event.
type NopSink struct{}

func (NopSink) Emit(Event) {}
