package ports

import "time"

// Clock abstracts wall-clock reads so date invariants can be tested without sleeping.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
