package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"fieldsync/core/config"
	"fieldsync/core/logger"
	"fieldsync/core/queue"
	"fieldsync/core/remote"
	"fieldsync/core/syncengine"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for queue commands
	queueActor     string
	queueType      string
	queueMerged    string
	queueSyncNow   bool
	queueDryRun    bool
	queueSynced    bool
	queuePending   bool
	queueConflicts bool
	yesConfirm     bool
)

// queueCmd is the parent command for local queue operations.
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and drive the offline mutation queue",
	Long: `Operate on the durable queue directly, without the HTTP server.

Examples:
  # Queue a status change while offline
  queue add status_update '{"work_order_id":"W1","fields":{"status":"completed"}}'

  # Preview what the next sync would do
  queue sync --dry-run

  # Sync as a specific technician
  queue sync --actor tech-7

  # Keep the local version of a conflicted item
  queue resolve status_update-1752400000000-a1b2c3d4e5f6 local

  # Drop synced items without prompting
  queue clear --yes`,
}

var queueAddCmd = &cobra.Command{
	Use:   "add <type> <payload-json>",
	Short: "Enqueue a mutation",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, l *zap.Logger, e *engine) error {
			t, err := queue.ParseType(args[0])
			if err != nil {
				return err
			}
			payload := json.RawMessage(args[1])
			if !json.Valid(payload) {
				return fmt.Errorf("%w: payload is not valid JSON", queue.ErrInvalidPayload)
			}

			id, err := e.queue.Enqueue(ctx, t, payload)
			if err != nil {
				return err
			}
			l.Info("Mutation queued", zap.String("id", id), zap.String("type", string(t)))

			if !queueSyncNow {
				return nil
			}
			pass, err := e.dispatcher.SyncAll(ctx)
			if pass != nil {
				printPassReport(l, pass)
			}
			return err
		})
	},
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued items",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, l *zap.Logger, e *engine) error {
			var items []*queue.Item
			switch {
			case queueConflicts:
				items = e.queue.Conflicts()
			case queuePending:
				items = e.queue.Pending()
			default:
				f := queue.Filter{}
				if cmd.Flags().Changed("synced") {
					f.Synced = &queueSynced
				}
				if queueType != "" {
					t, err := queue.ParseType(queueType)
					if err != nil {
						return err
					}
					f.Types = []queue.Type{t}
				}
				items = e.queue.Items(f)
			}

			for _, item := range items {
				printItem(l, item)
			}
			l.Info("Queue listed", zap.Int("count", len(items)))
			return nil
		})
	},
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show queue counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, l *zap.Logger, e *engine) error {
			e.dispatcher.RefreshStatus()
			s := e.service.Status()
			fields := []zap.Field{
				zap.String("status", string(s.Status)),
				zap.Int("pending", s.PendingCount),
				zap.Int("conflicts", s.ConflictCount),
				zap.Int("max_attempts", s.MaxAttempts),
			}
			if s.LastSyncTime != nil {
				fields = append(fields, zap.Time("last_sync_time", *s.LastSyncTime))
			}
			l.Info("Queue status", fields...)
			return nil
		})
	},
}

var queueSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass against the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, l *zap.Logger, e *engine) error {
			if queueDryRun {
				plan, err := e.dispatcher.Preview(ctx)
				if err != nil {
					return err
				}
				printPlanReport(l, plan)
				l.Info("Dry-run mode: No changes were made.")
				return nil
			}

			pass, err := e.dispatcher.SyncAll(ctx)
			if pass != nil {
				printPassReport(l, pass)
			}
			return err
		})
	},
}

var queueResolveCmd = &cobra.Command{
	Use:   "resolve <id> <server|local|merged>",
	Short: "Resolve a conflicted item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, l *zap.Logger, e *engine) error {
			var merged json.RawMessage
			if queueMerged != "" {
				merged = json.RawMessage(queueMerged)
			}
			item, err := e.resolver.ResolveConflict(ctx, args[0], queue.Resolution(args[1]), merged)
			if err != nil {
				return err
			}
			printItem(l, item)
			return nil
		})
	},
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Discard a queued item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, l *zap.Logger, e *engine) error {
			item, err := e.queue.Get(args[0])
			if err != nil {
				return err
			}
			printItem(l, item)
			if !item.Synced && !confirmDestructiveAction() {
				l.Warn("Operation cancelled by user. No changes were made.")
				return nil
			}
			if err := e.queue.Remove(ctx, item.ID); err != nil {
				return err
			}
			l.Info("Item removed", zap.String("id", item.ID))
			return nil
		})
	},
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every synced item",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(func(ctx context.Context, l *zap.Logger, e *engine) error {
			synced := e.queue.Items(queue.SyncedOnly())
			if len(synced) == 0 {
				l.Info("No synced items to clear.")
				return nil
			}
			l.Info("Synced items to clear", zap.Int("count", len(synced)))
			if !confirmDestructiveAction() {
				l.Warn("Operation cancelled by user. No changes were made.")
				return nil
			}
			removed, err := e.queue.ClearSynced(ctx)
			if err != nil {
				return err
			}
			l.Info("Synced items cleared", zap.Int("count", removed))
			return nil
		})
	},
}

func init() {
	queueCmd.PersistentFlags().StringVar(&queueActor, "actor", "", "Technician id stamped onto created records (overrides remote.actor_id)")

	queueAddCmd.Flags().BoolVar(&queueSyncNow, "sync", false, "Run a sync pass right after queueing")

	queueListCmd.Flags().StringVar(&queueType, "type", "", "Only list items of this type")
	queueListCmd.Flags().BoolVar(&queueSynced, "synced", false, "Filter by synced state")
	queueListCmd.Flags().BoolVar(&queuePending, "pending", false, "Only list items waiting for a sync")
	queueListCmd.Flags().BoolVar(&queueConflicts, "conflicts", false, "Only list items with an unresolved conflict")

	queueSyncCmd.Flags().BoolVar(&queueDryRun, "dry-run", false, "Report what a pass would do without mutating anything")

	queueResolveCmd.Flags().StringVar(&queueMerged, "merged", "", "Merged payload JSON, required with the merged resolution")

	queueRemoveCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")
	queueClearCmd.Flags().BoolVar(&yesConfirm, "yes", false, "Auto-confirm destructive actions (non-interactive)")

	queueCmd.AddCommand(queueAddCmd, queueListCmd, queueStatusCmd, queueSyncCmd, queueResolveCmd, queueRemoveCmd, queueClearCmd)
	RootCmd.AddCommand(queueCmd)
}

// withEngine loads configuration, opens the engine and runs fn with it.
func withEngine(fn func(ctx context.Context, l *zap.Logger, e *engine) error) error {
	ctx := context.Background()
	if queueActor != "" {
		ctx = remote.WithActor(ctx, queueActor)
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer l.Sync()

	e, err := openEngine(ctx, cfg, l, true)
	if err != nil {
		return err
	}
	defer e.Close()

	return fn(ctx, l, e)
}

func printItem(l *zap.Logger, item *queue.Item) {
	fields := []zap.Field{
		zap.String("id", item.ID),
		zap.String("type", string(item.Type)),
		zap.Time("enqueued_at", item.EnqueuedAt),
		zap.Bool("synced", item.Synced),
		zap.Int("attempts", item.SyncAttempts),
	}
	if item.Error != "" {
		fields = append(fields, zap.String("error", item.Error))
	}
	if item.Conflict != nil {
		fields = append(fields,
			zap.Time("conflict_detected_at", item.Conflict.DetectedAt),
			zap.String("resolved_by", string(item.Conflict.ResolvedBy)),
		)
	}
	l.Info("Queue item", fields...)
}

// printPassReport prints the outcome of a sync pass using logger.
func printPassReport(l *zap.Logger, pass *syncengine.PassResult) {
	if pass.Skipped {
		l.Info("A sync pass is already running; nothing to do")
		return
	}

	l.Info("Sync report",
		zap.String("status", string(pass.Status)),
		zap.Int("attempted", pass.Attempted),
		zap.Int("succeeded", pass.Succeeded),
		zap.Int("conflicts", pass.Conflicts),
		zap.Int("errors", pass.Errors),
		zap.Duration("took", pass.FinishedAt.Sub(pass.StartedAt)),
	)

	for _, r := range pass.Items {
		if r.Outcome == syncengine.OutcomeSuccess {
			continue
		}
		l.Warn("Item not synced",
			zap.String("id", r.ID),
			zap.String("type", string(r.Type)),
			zap.String("outcome", string(r.Outcome)),
			zap.String("kind", string(r.Kind)),
			zap.String("error", r.Error),
		)
	}
	if len(pass.Stalled) > 0 {
		l.Warn("Items reached the retry cap and need attention", zap.Strings("ids", pass.Stalled))
	}
}

// printPlanReport prints a dry-run plan using logger.
func printPlanReport(l *zap.Logger, plan *syncengine.Plan) {
	s := plan.Summary

	l.Info("Sync plan",
		zap.Int("pending", s.Pending),
		zap.Int("apply", s.Apply),
		zap.Int("conflicts", s.Conflicts),
		zap.Int("failures", s.Failures),
		zap.Int("skipped", s.Skipped),
	)

	maxShow := min(10, len(plan.Entries))
	for _, entry := range plan.Entries[:maxShow] {
		l.Info("Planned action",
			zap.String("id", entry.ID),
			zap.String("type", string(entry.Type)),
			zap.String("mode", entry.Mode),
			zap.String("action", string(entry.Action)),
			zap.String("reason", entry.Reason),
		)
	}
	if len(plan.Entries) > maxShow {
		l.Info("Additional actions not shown", zap.Int("count", len(plan.Entries)-maxShow))
	}
}

// confirmDestructiveAction prompts the user for confirmation or uses --yes flag.
func confirmDestructiveAction() bool {
	if yesConfirm {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Print("\n⚠️  Type 'yes' to confirm destructive actions: ")
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
