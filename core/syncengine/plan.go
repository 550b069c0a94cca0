package syncengine

import (
	"context"

	"fieldsync/core/queue"

	"go.uber.org/zap"
)

// PlanAction is what the next pass would do with an item.
type PlanAction string

const (
	// ActionApply means the mutation would be sent.
	ActionApply PlanAction = "apply"
	// ActionConflict means the remote changed and the item would be parked.
	ActionConflict PlanAction = "conflict"
	// ActionFail means the attempt would fail.
	ActionFail PlanAction = "fail"
	// ActionSkip means the item reached the attempt cap and would not be attempted.
	ActionSkip PlanAction = "skip"
)

// PlanEntry is the predicted handling of one pending item.
type PlanEntry struct {
	// ID is the queue item id.
	ID string `json:"id"`
	// Type is the item type.
	Type queue.Type `json:"type"`
	// Mode is the mode the pass would use.
	Mode string `json:"mode"`
	// Action is the predicted result.
	Action PlanAction `json:"action"`
	// Reason explains conflicts, failures and skips.
	Reason string `json:"reason,omitempty"`
	// Kind classifies a predicted failure.
	Kind Kind `json:"kind,omitempty"`
}

// PlanSummary provides aggregate counts for a plan.
type PlanSummary struct {
	// Pending is the number of items considered.
	Pending int `json:"pending"`
	// Apply counts items that would sync.
	Apply int `json:"apply"`
	// Conflicts counts items that would be parked.
	Conflicts int `json:"conflicts"`
	// Failures counts items that would fail, not-implemented types included.
	Failures int `json:"failures"`
	// Skipped counts items at the attempt cap.
	Skipped int `json:"skipped"`
}

// Plan is the dry-run view of the next sync pass.
type Plan struct {
	Entries []PlanEntry `json:"entries"`
	Summary PlanSummary `json:"summary"`
}

// Preview predicts the next pass without mutating the remote or the queue.
// Remote reads still happen, so a preview needs connectivity to be accurate.
func (d *Dispatcher) Preview(ctx context.Context) (*Plan, error) {
	plan := &Plan{Entries: []PlanEntry{}}

	for _, item := range d.queue.Pending() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		mode := passMode(item)
		entry := PlanEntry{ID: item.ID, Type: item.Type, Mode: mode.String()}

		if item.SyncAttempts >= d.maxAttempts {
			entry.Action = ActionSkip
			entry.Reason = "attempt cap reached"
			plan.Summary.Skipped++
			plan.Entries = append(plan.Entries, entry)
			continue
		}

		var out Outcome
		if h, err := d.registry.Lookup(item.Type); err != nil {
			out = Failed(err)
		} else {
			out = h.Check(ctx, item, mode)
		}

		switch out.Kind {
		case OutcomeSuccess:
			entry.Action = ActionApply
			plan.Summary.Apply++
		case OutcomeConflict:
			entry.Action = ActionConflict
			entry.Reason = out.Message()
			plan.Summary.Conflicts++
		default:
			entry.Action = ActionFail
			entry.Reason = out.Message()
			entry.Kind = Classify(out.Err)
			plan.Summary.Failures++
		}
		plan.Entries = append(plan.Entries, entry)
	}
	plan.Summary.Pending = len(plan.Entries)

	d.logger.Debug("Sync preview built",
		zap.Int("pending", plan.Summary.Pending),
		zap.Int("apply", plan.Summary.Apply),
		zap.Int("conflicts", plan.Summary.Conflicts),
		zap.Int("failures", plan.Summary.Failures),
		zap.Int("skipped", plan.Summary.Skipped))
	return plan, nil
}
