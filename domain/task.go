package domain

import "fmt"

// Status is the lifecycle stage of a task.
type Status int

// Status constants, in the only order a task may move through them.
const (
	StatusNotStarted Status = iota
	StatusInProgress
	StatusDone
)

// ParseStatus converts a stored integer into a Status.
func ParseStatus(v int) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return 0, WrapError(ErrCodeInvalid, fmt.Sprintf("status %d out of range", v), nil)
	}
	return s, nil
}

func (s Status) Valid() bool {
	return s >= StatusNotStarted && s <= StatusDone
}

// Next returns the status that follows s. Done has no successor.
func (s Status) Next() (Status, bool) {
	if !s.Valid() || s == StatusDone {
		return s, false
	}
	return s + 1, true
}

func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusInProgress:
		return "in_progress"
	case StatusDone:
		return "done"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Label is the human-facing name shown in listings.
func (s Status) Label() string {
	switch s {
	case StatusNotStarted:
		return "Not started"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Task represents a unit of work assigned to a user.
type Task struct {
	Code     int    `json:"code"`
	Name     string `json:"name"`
	Status   Status `json:"status"`
	Assignee User   `json:"assignee"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// CanAdvanceTo reports whether to is exactly one step ahead of the current status.
func (t *Task) CanAdvanceTo(to Status) bool {
	if t == nil {
		return false
	}
	next, ok := t.Status.Next()
	return ok && next == to
}

// TaskView is a task annotated for display to a particular viewer.
type TaskView struct {
	Task          Task   `json:"task"`
	AssigneeLabel string `json:"assignee_label"`
	StatusLabel   string `json:"status_label"`
}

// AssigneeSelf is the assignee label used when the viewer owns the task.
const AssigneeSelf = "you"

// View annotates t for viewer.
func (t Task) View(viewer User) TaskView {
	label := t.Assignee.Name
	if t.Assignee.Is(viewer) {
		label = AssigneeSelf
	}
	return TaskView{
		Task:          t,
		AssigneeLabel: label,
		StatusLabel:   t.Status.Label(),
	}
}
