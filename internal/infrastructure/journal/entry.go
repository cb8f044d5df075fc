package journal

import (
	"time"

	"github.com/google/uuid"

	"github.com/fastygo/taskapp/domain"
)

const DefaultBucket = "audit"

// Entry is an audit record whose append to the log store failed.
type Entry struct {
	ID         string     `json:"id"`
	Log        domain.Log `json:"log"`
	Cause      string     `json:"cause"`
	Attempts   int        `json:"attempts"`
	RecordedAt time.Time  `json:"recorded_at"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
}
