package entity

import (
	"time"
)

// Job names used by the orchestrator and in scan logs.
const (
	JobMailScan    = "mail_scan"
	JobStatusPoll  = "status_poll"
	JobCheckinSync = "checkin_sync"
	JobCleanup     = "cleanup"
)

// ScanLog is the append-only audit record for one unit run. It is written
// exactly once, after the unit completes or fails, and never mutated.
type ScanLog struct {
	ID          string    `bson:"_id,omitempty"`
	Job         string    `bson:"job"`
	Target      string    `bson:"target"`
	UserID      uint      `bson:"userId,omitempty"`
	WindowStart time.Time `bson:"windowStart,omitempty"`
	WindowEnd   time.Time `bson:"windowEnd,omitempty"`
	Seen        int       `bson:"seen"`
	Created     int       `bson:"created"`
	Updated     int       `bson:"updated"`
	Duplicates  int       `bson:"duplicates"`
	Failed      int       `bson:"failed"`
	ErrorKind   string    `bson:"errorKind,omitempty"`
	Error       string    `bson:"error,omitempty"`
	StartedAt   time.Time `bson:"startedAt"`
	FinishedAt  time.Time `bson:"finishedAt"`
}

// Count bumps the counter matching a reconciliation outcome.
func (l *ScanLog) Count(o Outcome) {
	switch o {
	case OutcomeCreated:
		l.Created++
	case OutcomeUpdated:
		l.Updated++
	case OutcomeDuplicate:
		l.Duplicates++
	case OutcomeFailed:
		l.Failed++
	}
}
