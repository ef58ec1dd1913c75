package telemetry

import (
	"context"
	"time"
)

// EventKind classifies a reconciliation outcome
type EventKind string

const (
	EventExternalChange EventKind = "external_change"
	EventProfileSwitch  EventKind = "profile_switch"
	EventCommandFailure EventKind = "command_failure"
	EventProbeComplete  EventKind = "probe_complete"
)

// Event is one journaled reconciliation outcome
type Event struct {
	Timestamp time.Time
	Kind      EventKind
	Detail    string
}

// Recorder persists reconciliation events. A nil Recorder at the call site
// means telemetry is disabled.
type Recorder interface {
	Record(ctx context.Context, event Event) error
	Close() error
}
