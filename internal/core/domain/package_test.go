package domain

import "testing"

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to PackageState
		want     bool
	}{
		{StatePublished, StateSuggested, true},
		{StatePublished, StateCancelled, true},
		{StatePublished, StateApproved, false},
		{StateRequested, StateApproved, true},
		{StateRequested, StatePublished, true},
		{StateRequested, StateCancelled, true},
		{StateSuggested, StateApproved, true},
		{StateSuggested, StateCancelled, false},
		{StateApproved, StateShipped, true},
		{StateApproved, StateCancelled, true},
		{StateShipped, StateInTransit, true},
		{StateShipped, StateCancelled, false},
		{StateInTransit, StateReceived, true},
		{StateReceived, StateCompleted, true},
		{StateCompleted, StatePublished, false},
		{StateCancelled, StatePublished, false},
	}
	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestPackageStateIsValid(t *testing.T) {
	for _, s := range []PackageState{
		StatePublished, StateRequested, StateSuggested, StateApproved,
		StateShipped, StateInTransit, StateReceived, StateCompleted, StateCancelled,
	} {
		if !s.IsValid() {
			t.Errorf("%q reported invalid", s)
		}
	}
	for _, s := range []PackageState{"", "Published", "publicado", "Desconocido"} {
		if s.IsValid() {
			t.Errorf("%q reported valid", s)
		}
	}
}
