package services

import (
	"testing"
	"time"

	"github.com/danielagrograos-wq/senior/internal/models"
)

func TestBookingPriceCentsHourly(t *testing.T) {
	caregiver := &models.CaregiverProfile{PriceHour: 35.5}
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)

	if got := bookingPriceCents(caregiver, "hourly", start, end); got != 14200 {
		t.Fatalf("expected 14200 cents, got %d", got)
	}
}

func TestBookingPriceCentsNightShiftFlatRate(t *testing.T) {
	night := 180.0
	caregiver := &models.CaregiverProfile{PriceHour: 30, PriceNight: &night}
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	if got := bookingPriceCents(caregiver, "night_shift", start, end); got != 18000 {
		t.Fatalf("expected flat 18000 cents, got %d", got)
	}
}

func TestBookingPriceCentsNightShiftFallsBackToHourly(t *testing.T) {
	caregiver := &models.CaregiverProfile{PriceHour: 30}
	start := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)

	if got := bookingPriceCents(caregiver, "night_shift", start, end); got != 30000 {
		t.Fatalf("expected hourly fallback 30000 cents, got %d", got)
	}
}

func TestNormalizeBookingStatusAcceptsAliases(t *testing.T) {
	cases := map[string]string{
		"Confirmed":   models.BookingConfirmed,
		" cancel ":    models.BookingCancelled,
		"canceled":    models.BookingCancelled,
		"complete":    models.BookingCompleted,
		"in_progress": models.BookingInProgress,
	}
	for input, want := range cases {
		got, err := normalizeBookingStatus(input)
		if err != nil {
			t.Fatalf("normalizeBookingStatus(%q): %v", input, err)
		}
		if got != want {
			t.Fatalf("normalizeBookingStatus(%q) = %q, want %q", input, got, want)
		}
	}
	if _, err := normalizeBookingStatus("pending"); err == nil {
		t.Fatal("expected pending to be rejected as a requested status")
	}
}

func TestValidateBookingTransitionClientOnlyCancels(t *testing.T) {
	booking := &models.Booking{Status: models.BookingConfirmed}

	if err := validateBookingTransition("client", booking, models.BookingCompleted); err != ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if err := validateBookingTransition("client", booking, models.BookingCancelled); err != nil {
		t.Fatalf("expected cancel to be allowed, got %v", err)
	}

	booking.Status = models.BookingCompleted
	if err := validateBookingTransition("client", booking, models.BookingCancelled); err != ErrInvalidStateTransition {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestValidateBookingTransitionCaregiverLifecycle(t *testing.T) {
	cases := []struct {
		current string
		next    string
		wantErr error
	}{
		{models.BookingPending, models.BookingConfirmed, nil},
		{models.BookingConfirmed, models.BookingConfirmed, ErrInvalidStateTransition},
		{models.BookingConfirmed, models.BookingInProgress, nil},
		{models.BookingPending, models.BookingInProgress, ErrInvalidStateTransition},
		{models.BookingConfirmed, models.BookingCompleted, nil},
		{models.BookingInProgress, models.BookingCompleted, nil},
		{models.BookingPending, models.BookingCompleted, ErrInvalidStateTransition},
		{models.BookingInProgress, models.BookingCancelled, nil},
		{models.BookingCancelled, models.BookingCancelled, ErrInvalidStateTransition},
		{models.BookingCompleted, models.BookingCancelled, ErrInvalidStateTransition},
	}

	for _, tc := range cases {
		booking := &models.Booking{Status: tc.current}
		if err := validateBookingTransition("caregiver", booking, tc.next); err != tc.wantErr {
			t.Fatalf("%s -> %s: expected %v, got %v", tc.current, tc.next, tc.wantErr, err)
		}
	}
}

func TestEscrowStatusFollowsLifecycle(t *testing.T) {
	if got := escrowStatusFor(models.BookingConfirmed); got != models.EscrowHeld {
		t.Fatalf("confirmed should hold escrow, got %q", got)
	}
	if got := escrowStatusFor(models.BookingCompleted); got != models.EscrowReleased {
		t.Fatalf("completed should release escrow, got %q", got)
	}
	if got := escrowStatusFor(models.BookingCancelled); got != models.EscrowRefunded {
		t.Fatalf("cancelled should refund escrow, got %q", got)
	}
	if got := escrowStatusFor(models.BookingInProgress); got != "" {
		t.Fatalf("in_progress should leave escrow untouched, got %q", got)
	}
}
