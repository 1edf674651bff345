package activity

import (
	"time"
)

// ActivityRecord is one line in the audit trail of a consent flow.
type ActivityRecord struct {
	UID       string
	FlowUID   string
	Kind      string
	Details   string `datastore:",noindex"`
	CreatedAt time.Time
}
