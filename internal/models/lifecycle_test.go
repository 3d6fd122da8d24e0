package models

import (
	"testing"
	"time"
)

func TestCanTransition(t *testing.T) {
	allowed := map[[2]string]bool{
		{StatusRegistered, StatusEmailVerified}: true,
		{StatusEmailVerified, StatusAccepted}:   true,
		{StatusAccepted, StatusConfirmed}:       true,
		{StatusAccepted, StatusRejected}:        true,
	}

	states := []string{StatusRegistered, StatusEmailVerified, StatusAccepted, StatusConfirmed, StatusRejected}
	for _, from := range states {
		for _, to := range states {
			want := allowed[[2]string{from, to}]
			if got := CanTransition(from, to); got != want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestTransitionSetsStatusAndTimestampTogether(t *testing.T) {
	now := time.Now()
	p := &Person{Status: StatusRegistered}

	if err := p.Transition(StatusEmailVerified, now); err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if p.Status != StatusEmailVerified {
		t.Errorf("status = %s", p.Status)
	}
	if p.EmailVerifiedAt == nil || !p.EmailVerifiedAt.Equal(now) {
		t.Error("EmailVerifiedAt not set alongside the status")
	}
}

func TestTransitionRejectsSkips(t *testing.T) {
	p := &Person{Status: StatusRegistered}
	if err := p.Transition(StatusAccepted, time.Now()); err == nil {
		t.Fatal("skipping EMAIL_VERIFIED must fail")
	}
	if p.AcceptedAt != nil {
		t.Error("failed transition must not set a timestamp")
	}
}

func TestFinalStatesAreTerminal(t *testing.T) {
	now := time.Now()
	for _, terminal := range []string{StatusConfirmed, StatusRejected} {
		p := &Person{Status: terminal}
		for _, to := range []string{StatusRegistered, StatusEmailVerified, StatusAccepted, StatusConfirmed, StatusRejected} {
			if err := p.Transition(to, now); err == nil {
				t.Errorf("transition %s -> %s should fail", terminal, to)
			}
		}
	}
}

func TestDerivedStatusMatchesTimestamps(t *testing.T) {
	now := time.Now()

	cases := []struct {
		name   string
		person Person
		want   string
	}{
		{"fresh", Person{}, StatusRegistered},
		{"verified", Person{EmailVerifiedAt: &now}, StatusEmailVerified},
		{"accepted", Person{EmailVerifiedAt: &now, AcceptedAt: &now}, StatusAccepted},
		{"confirmed", Person{EmailVerifiedAt: &now, AcceptedAt: &now, ConfirmedAt: &now}, StatusConfirmed},
		{"rejected", Person{EmailVerifiedAt: &now, AcceptedAt: &now, RejectedAt: &now}, StatusRejected},
	}
	for _, tc := range cases {
		if got := tc.person.DerivedStatus(); got != tc.want {
			t.Errorf("%s: DerivedStatus = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestPresenceDuration(t *testing.T) {
	entry := time.Now().Add(-90 * time.Minute)
	exit := time.Now()

	complete := Presence{EntryAt: &entry, ExitAt: &exit}
	if got := complete.Duration(); got < 89*time.Minute || got > 91*time.Minute {
		t.Errorf("complete interval duration = %v", got)
	}

	open := Presence{EntryAt: &entry}
	if open.Duration() != 0 {
		t.Error("open interval must contribute zero")
	}

	degenerate := Presence{ExitAt: &exit}
	if degenerate.Duration() != 0 {
		t.Error("exit-only row must contribute zero")
	}
}
