package domain

import "time"

// TransitionEvent records a single applied state transition for the audit trail.
type TransitionEvent struct {
	PackageID string
	From      PackageState
	To        PackageState
	Actor     string
	Timestamp time.Time
}
