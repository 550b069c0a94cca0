package queue

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Type identifies the kind of mutation a queue item carries.
type Type string

const (
	TypeStatusUpdate Type = "status_update"
	TypeHazardReport Type = "hazard_report"
	TypeInspection   Type = "inspection"
	TypeTimeEntry    Type = "time_entry"
	TypePhotoCapture Type = "photo_capture"
)

// Types lists every supported mutation kind.
var Types = []Type{TypeStatusUpdate, TypeHazardReport, TypeInspection, TypeTimeEntry, TypePhotoCapture}

// Valid reports whether t is a supported mutation kind.
func (t Type) Valid() bool {
	for _, known := range Types {
		if t == known {
			return true
		}
	}
	return false
}

// ParseType accepts both the current snake_case names and the kebab-case
// names written by schema version 1.
func ParseType(s string) (Type, error) {
	t := Type(strings.ReplaceAll(strings.TrimSpace(strings.ToLower(s)), "-", "_"))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Resolution is the human decision recorded on a conflict.
type Resolution string

const (
	ResolutionLocal  Resolution = "local"
	ResolutionServer Resolution = "server"
	ResolutionMerged Resolution = "merged"
)

// Valid reports whether r is a known resolution.
func (r Resolution) Valid() bool {
	return r == ResolutionLocal || r == ResolutionServer || r == ResolutionMerged
}

// ConflictRecord captures both sides of a detected conflict.
type ConflictRecord struct {
	// LocalVersion is the queued payload at detection time.
	LocalVersion json.RawMessage `json:"local_version"`
	// ServerVersion is the remote record at detection time.
	ServerVersion json.RawMessage `json:"server_version"`
	// DetectedAt is when the dispatcher recorded the conflict.
	DetectedAt time.Time `json:"detected_at"`
	// ResolvedBy is write-once; empty while unresolved.
	ResolvedBy Resolution `json:"resolved_by,omitempty"`
	// ResolvedAt is set together with ResolvedBy.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Resolved reports whether a human decision has been recorded.
func (c *ConflictRecord) Resolved() bool {
	return c != nil && c.ResolvedBy != ""
}

// Item is a durable record of one not-yet-confirmed local mutation.
type Item struct {
	ID              string          `json:"id"`
	Type            Type            `json:"type"`
	Payload         json.RawMessage `json:"payload"`
	EnqueuedAt      time.Time       `json:"enqueued_at"`
	Synced          bool            `json:"synced"`
	SyncAttempts    int             `json:"sync_attempts"`
	LastSyncAttempt *time.Time      `json:"last_sync_attempt,omitempty"`
	Conflict        *ConflictRecord `json:"conflict,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// HasUnresolvedConflict reports whether the item is waiting on a human decision.
func (i *Item) HasUnresolvedConflict() bool {
	return i.Conflict != nil && !i.Conflict.Resolved()
}

// Clone returns a deep copy so callers never share mutable state with the mirror.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	out := *i
	out.Payload = cloneRaw(i.Payload)
	if i.LastSyncAttempt != nil {
		t := *i.LastSyncAttempt
		out.LastSyncAttempt = &t
	}
	if i.Conflict != nil {
		c := *i.Conflict
		c.LocalVersion = cloneRaw(i.Conflict.LocalVersion)
		c.ServerVersion = cloneRaw(i.Conflict.ServerVersion)
		if i.Conflict.ResolvedAt != nil {
			t := *i.Conflict.ResolvedAt
			c.ResolvedAt = &t
		}
		out.Conflict = &c
	}
	return &out
}

// NewID derives an item id from its type, the enqueue time and random bits.
func NewID(t Type, at time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("%s-%d-%s", t, at.UnixMilli(), random[:12])
}

// EncodePayload converts a producer payload into the opaque JSON the queue stores.
func EncodePayload(payload any) (json.RawMessage, error) {
	var raw []byte
	switch v := payload.(type) {
	case nil:
		return nil, fmt.Errorf("%w: payload is required", ErrInvalidPayload)
	case json.RawMessage:
		raw = v
	case []byte:
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		raw = b
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, fmt.Errorf("%w: payload is not valid JSON", ErrInvalidPayload)
	}
	return cloneRaw(raw), nil
}

func cloneRaw(b json.RawMessage) json.RawMessage {
	if b == nil {
		return nil
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out
}
