package services

import (
	"testing"
	"time"
)

func TestOverlaps(t *testing.T) {
	t.Parallel()
	at := func(h int) time.Time { return time.Date(2024, 1, 10, h, 0, 0, 0, time.UTC) }
	tests := []struct {
		s1, e1, s2, e2 int
		want           bool
	}{
		{14, 15, 14, 15, true},
		{13, 15, 14, 16, true},
		{14, 16, 13, 15, true},
		{13, 14, 14, 15, false},
		{15, 16, 14, 15, false},
		{9, 10, 11, 12, false},
	}
	for _, tt := range tests {
		got := Overlaps(at(tt.s1), at(tt.e1), at(tt.s2), at(tt.e2))
		if got != tt.want {
			t.Fatalf("Overlaps(%d-%d, %d-%d) = %v, want %v", tt.s1, tt.e1, tt.s2, tt.e2, got, tt.want)
		}
		if rev := Overlaps(at(tt.s2), at(tt.e2), at(tt.s1), at(tt.e1)); rev != got {
			t.Fatalf("Overlaps is not symmetric for %d-%d, %d-%d", tt.s1, tt.e1, tt.s2, tt.e2)
		}
	}
}

func TestPolicyInBusinessZone(t *testing.T) {
	t.Parallel()
	loc := time.FixedZone("UTC+3", 3*60*60)
	p := DefaultBookingPolicy()
	p.Location = loc

	local, err := p.ParseInstant("2024-01-10T09:00")
	if err != nil {
		t.Fatalf("parse local: %v", err)
	}
	if want := time.Date(2024, 1, 10, 6, 0, 0, 0, time.UTC); !local.Equal(want) {
		t.Fatalf("local = %v, want %v", local, want)
	}
	if local.Location() != time.UTC {
		t.Fatalf("location = %v, want UTC", local.Location())
	}
	if !p.WithinWindow(local) || !p.OnTheHour(local) {
		t.Fatalf("09:00 local should be bookable")
	}
	if got := p.SlotLabel(local); got != "09:00" {
		t.Fatalf("slot label = %q, want %q", got, "09:00")
	}

	early, _ := p.ParseInstant("2024-01-10T08:00:00+03:00")
	if p.WithinWindow(early) {
		t.Fatalf("08:00 local should be outside the window")
	}

	day, err := p.ParseDate("2024-01-10")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if want := time.Date(2024, 1, 9, 21, 0, 0, 0, time.UTC); !day.Equal(want) {
		t.Fatalf("day = %v, want %v", day, want)
	}
	fromStamp, err := p.ParseDate("2024-01-10T00:00:00.000Z")
	if err != nil || !fromStamp.Equal(day) {
		t.Fatalf("date from timestamp = %v, %v, want %v", fromStamp, err, day)
	}

	if _, err := p.ParseInstant("10/01/2024 09:00"); err == nil {
		t.Fatalf("expected an error for an unsupported layout")
	}
}

func TestCanCancel(t *testing.T) {
	t.Parallel()
	p := DefaultBookingPolicy()
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	tests := []struct {
		now  time.Time
		want bool
	}{
		{start.Add(-2 * time.Hour), true},
		{start.Add(-time.Hour - time.Second), true},
		{start.Add(-time.Hour), false},
		{start.Add(-time.Minute), false},
		{start.Add(time.Hour), false},
	}
	for _, tt := range tests {
		if got := p.CanCancel(tt.now, start); got != tt.want {
			t.Fatalf("CanCancel(%v) = %v, want %v", tt.now, got, tt.want)
		}
	}
}

func TestPolicyMessages(t *testing.T) {
	t.Parallel()
	p := BookingPolicy{OpenHour: 8, LastStartHour: 18, CancelCutoff: 90 * time.Minute}
	if got, want := p.windowMessage(), "Bookings must start between 08:00 and 18:00"; got != want {
		t.Fatalf("window message = %q, want %q", got, want)
	}
	if got, want := p.cutoffMessage(), "Bookings can only be cancelled more than 90 minutes before the start time"; got != want {
		t.Fatalf("cutoff message = %q, want %q", got, want)
	}
	p.CancelCutoff = 24 * time.Hour
	if got, want := humanDuration(p.CancelCutoff), "24 hours"; got != want {
		t.Fatalf("humanDuration = %q, want %q", got, want)
	}
}
