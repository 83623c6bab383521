package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"apartment_app_echo/internal/models"
	"apartment_app_echo/internal/tasks"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Create a scheduled task for the worker",
	Example: `  # Send reminders once tonight
  billingctl schedule --task send_overdue_reminders --due "2026-03-15 20:00"

  # Relay outbox events every minute
  billingctl schedule --task relay_outbox_events --args '{"batch":50}' \
    --due 2026-03-15T00:00:00Z --type recurring --recurring "FREQ=MINUTELY"`,
	RunE: runSchedule,
}

var scheduleOpts struct {
	task       string
	args       string
	due        string
	taskType   string
	recurring  string
	maxAttempt int
}

func init() {
	f := scheduleCmd.Flags()
	f.StringVar(&scheduleOpts.task, "task", "", "Name of the task (required)")
	f.StringVar(&scheduleOpts.args, "args", "{}", "JSON arguments for the task")
	f.StringVar(&scheduleOpts.due, "due", "", "Due time, RFC3339 or '2006-01-02 15:04' local time (default now)")
	f.StringVar(&scheduleOpts.taskType, "type", string(models.ScheduledTaskTypeOneTime), "Task type: onetime or recurring")
	f.StringVar(&scheduleOpts.recurring, "recurring", "", "RRULE for recurring tasks, e.g. FREQ=HOURLY")
	f.IntVar(&scheduleOpts.maxAttempt, "max-attempt", 3, "Attempts per run")
	_ = scheduleCmd.MarkFlagRequired("task")

	rootCmd.AddCommand(scheduleCmd)
}

func parseDue(v string) (time.Time, error) {
	if v == "" {
		return time.Now().UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", v, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q, use RFC3339 or '2006-01-02 15:04'", v)
	}
	return t, nil
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	if _, ok := tasks.DefaultRegistry().Get(scheduleOpts.task); !ok {
		return fmt.Errorf("unknown task %q, known tasks: %v", scheduleOpts.task, tasks.DefaultRegistry().Names())
	}

	var args map[string]interface{}
	if err := json.Unmarshal([]byte(scheduleOpts.args), &args); err != nil {
		return fmt.Errorf("invalid JSON arguments: %w", err)
	}

	due, err := parseDue(scheduleOpts.due)
	if err != nil {
		return err
	}

	taskType := models.ScheduledTaskType(scheduleOpts.taskType)
	var recurring *string
	switch taskType {
	case models.ScheduledTaskTypeOneTime:
	case models.ScheduledTaskTypeRecurring:
		if scheduleOpts.recurring == "" {
			return fmt.Errorf("--recurring is required for recurring tasks")
		}
		recurring = &scheduleOpts.recurring
	default:
		return fmt.Errorf("unknown task type %q", scheduleOpts.taskType)
	}

	task, err := tasks.BuildScheduledTask(scheduleOpts.task, args, due, recurring, taskType, scheduleOpts.maxAttempt)
	if err != nil {
		return err
	}

	application, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer application.Close()

	if err := application.DB.WithContext(cmd.Context()).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Successfully created task ID: %d\n", task.ID)
	fmt.Fprintf(out, "Task: %s\nDue: %s\nType: %s\n", task.TaskName, task.Due.Format(time.RFC3339), task.TaskType)
	return nil
}
