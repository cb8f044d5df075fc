package monitor

import "time"

// Component is the outcome of one probe.
type Component struct {
	Name   string `json:"name"`
	Online bool   `json:"online"`
	Size   int    `json:"size"`
	Error  string `json:"error,omitempty"`
}

type Status struct {
	Healthy    bool        `json:"healthy"`
	Components []Component `json:"components"`
	LastCheck  time.Time   `json:"last_check"`
}
