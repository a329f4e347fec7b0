package tui

type EventType int

const (
	EventTypeSpin EventType = iota
	EventTypeBar
	EventTypeText
)

// Event is a progress update from the core. Consumers are the bubbletea
// widget and the plain progress bar.
type Event struct {
	eventType EventType
	text      string
	percent   float64
}

func NewEventSpin(text string) Event {
	return Event{
		eventType: EventTypeSpin,
		text:      text,
	}
}

// NewEventBar reports progress in [0, 1].
func NewEventBar(text string, percent float64) Event {
	if percent < 0 {
		percent = 0
	}
	if percent > 1 {
		percent = 1
	}
	return Event{
		eventType: EventTypeBar,
		text:      text,
		percent:   percent,
	}
}

func NewEventText(text string) Event {
	return Event{
		eventType: EventTypeText,
		text:      text,
	}
}

func (e Event) Type() EventType  { return e.eventType }
func (e Event) Text() string     { return e.text }
func (e Event) Percent() float64 { return e.percent }
