package tasks

// DefineTasks registers all available tasks
func DefineTasks(r *Registry) {
	r.RegisterTask(SweepOverdueTask)
	r.RegisterTask(SendOverdueRemindersTask)
	r.RegisterTask(GenerateRecurringInvoicesTask)
	r.RegisterTask(RelayOutboxTask)
}

// DefaultRegistry returns a registry holding every billing task
func DefaultRegistry() *Registry {
	r := NewRegistry()
	DefineTasks(r)
	return r
}
