package tasks

import (
	"context"
	"errors"
	"time"
)

var errMissingDependency = errors.New("task dependency not configured")

// SweepOverdueTaskDef flips pending invoices past their due date to overdue
type SweepOverdueTaskDef struct{}

func (t *SweepOverdueTaskDef) TaskID() string {
	return "sweep_overdue_invoices"
}

func (t *SweepOverdueTaskDef) HandleExecution(ctx context.Context, env *Env, args map[string]interface{}) (map[string]interface{}, error) {
	if env.Invoices == nil {
		return nil, errMissingDependency
	}
	n, err := env.Invoices.SweepOverdue(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"status": "success", "updated": n}, nil
}

var SweepOverdueTask = &SweepOverdueTaskDef{}

// SendOverdueRemindersTaskDef reminds residents about overdue invoices.
// Arguments: every_hours (default 72), limit (default 200).
type SendOverdueRemindersTaskDef struct{}

func (t *SendOverdueRemindersTaskDef) TaskID() string {
	return "send_overdue_reminders"
}

func (t *SendOverdueRemindersTaskDef) HandleExecution(ctx context.Context, env *Env, args map[string]interface{}) (map[string]interface{}, error) {
	if env.Notifier == nil {
		return nil, errMissingDependency
	}
	every := time.Duration(argInt(args, "every_hours", 72)) * time.Hour
	result, err := env.Notifier.SendOverdueReminders(ctx, env.now(), every, argInt(args, "limit", 200))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":  "success",
		"sent":    result.Sent,
		"skipped": result.Skipped,
		"failed":  result.Failed,
	}, nil
}

var SendOverdueRemindersTask = &SendOverdueRemindersTaskDef{}

type GenerateRecurringInvoicesTaskDef struct{}

func (t *GenerateRecurringInvoicesTaskDef) TaskID() string {
	return "generate_recurring_invoices"
}

func (t *GenerateRecurringInvoicesTaskDef) HandleExecution(ctx context.Context, env *Env, args map[string]interface{}) (map[string]interface{}, error) {
	if env.Recurring == nil {
		return nil, errMissingDependency
	}
	result, err := env.Recurring.GenerateDue(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":      "success",
		"created":     result.Created,
		"failed":      result.Failed,
		"invoice_ids": result.Invoices,
	}, nil
}

var GenerateRecurringInvoicesTask = &GenerateRecurringInvoicesTaskDef{}

// RelayOutboxTaskDef publishes pending outbox events. Arguments: batch (default 100).
type RelayOutboxTaskDef struct{}

func (t *RelayOutboxTaskDef) TaskID() string {
	return "relay_outbox_events"
}

func (t *RelayOutboxTaskDef) HandleExecution(ctx context.Context, env *Env, args map[string]interface{}) (map[string]interface{}, error) {
	if env.Relay == nil {
		return nil, errMissingDependency
	}
	result, err := env.Relay.Relay(ctx, argInt(args, "batch", 100))
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"status":    "success",
		"published": result.Published,
		"failed":    result.Failed,
	}, nil
}

var RelayOutboxTask = &RelayOutboxTaskDef{}
