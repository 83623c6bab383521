package tasks

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"apartment_app_echo/internal/services"
)

// Env carries the dependencies task handlers run against
type Env struct {
	DB        *gorm.DB
	Invoices  *services.InvoiceService
	Recurring *services.RecurringInvoiceService
	Notifier  *services.Notifier
	Relay     *services.OutboxRelay
	Now       func() time.Time
}

func (e *Env) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now().UTC()
}

// TaskHandler is the function signature for a task handler
// It takes context, the environment and arguments, and returns a result map and error
type TaskHandler func(ctx context.Context, env *Env, args map[string]interface{}) (map[string]interface{}, error)

// Task is a named handler; each task definition implements it
type Task interface {
	TaskID() string
	HandleExecution(ctx context.Context, env *Env, args map[string]interface{}) (map[string]interface{}, error)
}

// Registry stores the mapping of task names to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]TaskHandler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]TaskHandler)}
}

// Register adds a handler for a task name
func (r *Registry) Register(name string, handler TaskHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// RegisterTask registers a task definition under its own ID
func (r *Registry) RegisterTask(t Task) {
	r.Register(t.TaskID(), t.HandleExecution)
}

// Get retrieves a handler for a task name
func (r *Registry) Get(name string) (TaskHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, ok := r.handlers[name]
	return handler, ok
}

// Names lists registered task names in order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
