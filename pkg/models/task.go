package models

// Task is a single to-do item. ID is assigned once at creation and is the
// only field used for lookup and removal.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// CloneTasks returns a copy of tasks that shares no backing array with it.
func CloneTasks(tasks []Task) []Task {
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}
