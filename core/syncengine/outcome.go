package syncengine

import (
	"encoding/json"
	"fmt"
	"time"

	"fieldsync/core/queue"
	"fieldsync/core/remote"
)

// Mode selects how a handler treats the optimistic-concurrency check.
type Mode int

const (
	// ModeNormal compares the remote last-modified time with the enqueue time.
	ModeNormal Mode = iota
	// ModeForce applies the mutation without the comparison. Only used after
	// a human chose the local or merged copy of a conflict.
	ModeForce
)

func (m Mode) String() string {
	if m == ModeForce {
		return "force"
	}
	return "normal"
}

// OutcomeKind is the result of one attempt.
type OutcomeKind string

const (
	OutcomeSuccess        OutcomeKind = "success"
	OutcomeConflict       OutcomeKind = "conflict"
	OutcomeError          OutcomeKind = "error"
	OutcomeNotImplemented OutcomeKind = "not_implemented"
)

// Outcome is what a handler reports for one item.
type Outcome struct {
	Kind OutcomeKind
	// Err explains conflicts, errors and not-implemented outcomes.
	Err error
	// Record is the remote state after a successful write, or the state
	// that raised a conflict.
	Record *remote.Record
	// Local and Server are the conflict snapshots.
	Local  json.RawMessage
	Server json.RawMessage
}

// Succeeded builds a success outcome.
func Succeeded(rec *remote.Record) Outcome {
	return Outcome{Kind: OutcomeSuccess, Record: rec}
}

// Failed builds an error outcome.
func Failed(err error) Outcome {
	return Outcome{Kind: OutcomeError, Err: err}
}

// Conflicted builds a conflict outcome holding both snapshots.
func Conflicted(item *queue.Item, rec *remote.Record) Outcome {
	server, err := rec.Snapshot()
	if err != nil {
		return Failed(fmt.Errorf("snapshot remote record: %w", err))
	}
	return Outcome{
		Kind:   OutcomeConflict,
		Err:    fmt.Errorf("%w: %s/%s updated at %s", ErrConflictDetected, rec.Collection, rec.ID, rec.UpdatedAt.Format(time.RFC3339)),
		Record: rec,
		Local:  append(json.RawMessage(nil), item.Payload...),
		Server: server,
	}
}

// Unimplemented builds a not-implemented outcome for t.
func Unimplemented(t queue.Type) Outcome {
	return Outcome{Kind: OutcomeNotImplemented, Err: fmt.Errorf("%w: %s", ErrNotImplemented, t)}
}

// Message returns the error text stored on the item, if any.
func (o Outcome) Message() string {
	if o.Err == nil {
		return ""
	}
	return o.Err.Error()
}
