package domain

import "time"

// Log is an audit entry: a user set a task to a status on a date.
type Log struct {
	TaskCode       int       `json:"task_code"`
	ChangeUserCode int       `json:"change_user_code"`
	Status         Status    `json:"status"`
	ChangeDate     time.Time `json:"change_date"`
}

// NewLog records actor setting task to its current status on the day of now.
func NewLog(task Task, actor User, now time.Time) Log {
	y, m, d := now.Date()
	return Log{
		TaskCode:       task.Code,
		ChangeUserCode: actor.Code,
		Status:         task.Status,
		ChangeDate:     time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
	}
}
