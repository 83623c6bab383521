package tasks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

const (
	historySuccess         = "success"
	historyFailure         = "failure"
	historyHandlerNotFound = "handler_not_found"
)

// Runner executes scheduled tasks whose due time has passed
type Runner struct {
	db       *gorm.DB
	registry *Registry
	env      *Env
}

func NewRunner(db *gorm.DB, registry *Registry, env *Env) *Runner {
	if env == nil {
		env = &Env{DB: db}
	}
	return &Runner{db: db, registry: registry, env: env}
}

type RunSummary struct {
	Processed int `json:"processed"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// RunDue processes every active task with due <= now, oldest first
func (r *Runner) RunDue(ctx context.Context) (RunSummary, error) {
	var summary RunSummary
	log := logger.WithComponent("worker")

	var pending []models.ScheduledTask
	err := r.db.WithContext(ctx).
		Where("status = ? AND due <= ?", models.ScheduledTaskStatusActive, r.env.now()).
		Order("due ASC, id ASC").
		Find(&pending).Error
	if err != nil {
		return summary, fmt.Errorf("load pending tasks: %w", err)
	}

	if len(pending) == 0 {
		log.Debug().Msg("no pending tasks")
		return summary, nil
	}
	log.Info().Int("count", len(pending)).Msg("found pending tasks")

	for _, task := range pending {
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		ok, err := r.Execute(ctx, task)
		if err != nil {
			return summary, err
		}
		summary.Processed++
		if ok {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

// Execute runs one task, retrying up to MaxAttempt times, records one history
// row per attempt and reschedules it. It reports whether an attempt succeeded.
func (r *Runner) Execute(ctx context.Context, task models.ScheduledTask) (bool, error) {
	log := logger.WithComponent("worker")
	log.Info().Uint("task_id", task.ID).Str("task", task.TaskName).Msg("processing task")

	if task.Arguments == nil {
		task.Arguments = make(map[string]interface{})
	}
	maxAttempt := task.MaxAttempt
	if maxAttempt < 1 {
		maxAttempt = 1
	}

	handler, found := r.registry.Get(task.TaskName)
	if !found {
		now := r.env.now()
		log.Warn().Str("task", task.TaskName).Msg("task handler not found, marking as failure")
		if err := r.record(ctx, task, models.ScheduledTaskHistory{
			RunAt:         now,
			Status:        historyHandlerNotFound,
			AttemptNumber: 1,
			Result:        map[string]interface{}{"error": "handler not found"},
			Error:         "handler not found",
		}); err != nil {
			return false, err
		}
		return false, r.finish(ctx, task, now, false)
	}

	var startTime time.Time
	succeeded := false
	for attempt := 1; attempt <= maxAttempt && !succeeded; attempt++ {
		startTime = r.env.now()
		began := time.Now()
		result, runErr := handler(ctx, r.env, task.Arguments)

		history := models.ScheduledTaskHistory{
			RunAt:         startTime,
			RuntimeMs:     time.Since(began).Milliseconds(),
			AttemptNumber: attempt,
		}
		if runErr != nil {
			history.Status = historyFailure
			history.Result = map[string]interface{}{"error": runErr.Error()}
			history.Error = runErr.Error()
			log.Error().Err(runErr).Str("task", task.TaskName).Int("attempt", attempt).Msg("task failed")
		} else {
			history.Status = historySuccess
			history.Result = result
			succeeded = true
			log.Info().Str("task", task.TaskName).Int("attempt", attempt).Msg("task completed")
		}

		if err := r.record(ctx, task, history); err != nil {
			return false, err
		}
		if ctx.Err() != nil {
			break
		}
	}

	return succeeded, r.finish(ctx, task, startTime, succeeded)
}

func (r *Runner) record(ctx context.Context, task models.ScheduledTask, history models.ScheduledTaskHistory) error {
	history.ScheduledTaskID = task.ID
	history.TaskName = task.TaskName
	history.Arguments = task.Arguments
	if err := r.db.WithContext(ctx).Create(&history).Error; err != nil {
		return fmt.Errorf("record history for task %d: %w", task.ID, err)
	}
	return nil
}

// finish stores the outcome. Recurring tasks move to their next occurrence
// even after a failure so one bad run does not stop the schedule.
func (r *Runner) finish(ctx context.Context, task models.ScheduledTask, ranAt time.Time, succeeded bool) error {
	updates := map[string]interface{}{
		"last_run": ranAt,
	}

	switch {
	case task.TaskType == models.ScheduledTaskTypeRecurring:
		nextDue := task.NextDue(ranAt)
		if nextDue.After(ranAt) {
			updates["status"] = models.ScheduledTaskStatusActive
			updates["due"] = nextDue
		} else if succeeded {
			updates["status"] = models.ScheduledTaskStatusDone
		} else {
			updates["status"] = models.ScheduledTaskStatusFailure
		}
	case succeeded:
		updates["status"] = models.ScheduledTaskStatusDone
	default:
		updates["status"] = models.ScheduledTaskStatusFailure
	}

	if err := r.db.WithContext(ctx).Model(&models.ScheduledTask{}).Where("id = ?", task.ID).Updates(updates).Error; err != nil {
		return fmt.Errorf("update task %d: %w", task.ID, err)
	}
	return nil
}
