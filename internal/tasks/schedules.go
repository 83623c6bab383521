package tasks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"apartment_app_echo/internal/logger"
	"apartment_app_echo/internal/models"
)

// DefaultSchedule is a recurring task the worker keeps scheduled
type DefaultSchedule struct {
	TaskName   string
	RRule      string
	Arguments  map[string]interface{}
	MaxAttempt int
}

var DefaultSchedules = []DefaultSchedule{
	{TaskName: SweepOverdueTask.TaskID(), RRule: "FREQ=HOURLY", MaxAttempt: 3},
	{TaskName: SendOverdueRemindersTask.TaskID(), RRule: "FREQ=DAILY;BYHOUR=1;BYMINUTE=0;BYSECOND=0", MaxAttempt: 2,
		Arguments: map[string]interface{}{"every_hours": 72, "limit": 200}},
	{TaskName: GenerateRecurringInvoicesTask.TaskID(), RRule: "FREQ=HOURLY", MaxAttempt: 3},
	{TaskName: RelayOutboxTask.TaskID(), RRule: "FREQ=MINUTELY;INTERVAL=5", MaxAttempt: 1,
		Arguments: map[string]interface{}{"batch": 100}},
}

// EnsureDefaultSchedules creates each default recurring task that has no
// active row yet, due immediately. It returns how many were created.
func EnsureDefaultSchedules(ctx context.Context, db *gorm.DB, now time.Time) (int, error) {
	log := logger.WithComponent("worker")
	created := 0

	for _, def := range DefaultSchedules {
		var count int64
		err := db.WithContext(ctx).Model(&models.ScheduledTask{}).
			Where("task_name = ? AND status = ? AND task_type = ?", def.TaskName, models.ScheduledTaskStatusActive, models.ScheduledTaskTypeRecurring).
			Count(&count).Error
		if err != nil {
			return created, fmt.Errorf("check schedule %s: %w", def.TaskName, err)
		}
		if count > 0 {
			continue
		}

		rule := def.RRule
		task, err := BuildScheduledTask(def.TaskName, def.Arguments, now, &rule, models.ScheduledTaskTypeRecurring, def.MaxAttempt)
		if err != nil {
			return created, err
		}
		if err := db.WithContext(ctx).Create(task).Error; err != nil {
			return created, fmt.Errorf("create schedule %s: %w", def.TaskName, err)
		}
		created++
		log.Info().Str("task", def.TaskName).Str("rrule", rule).Msg("scheduled default task")
	}
	return created, nil
}
