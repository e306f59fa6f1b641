package booking

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/Leganyst/room-booking/internal/model"
	"github.com/Leganyst/room-booking/internal/repository"
)

func validBooking(teacher string, period int) model.Booking {
	return model.Booking{
		TeacherName: teacher,
		Subject:     "Math",
		Lesson:      "Fractions",
		Grade:       "10 أ",
		DayName:     "الخميس",
		DateStr:     "9/10",
		Period:      period,
		WeekNumber:  5,
		Year:        2025,
	}
}

// wholeSetStore — хранилище без операций над слотом.
type wholeSetStore struct {
	set      model.BookingSet
	replaces int
	readErr  error
}

func (s *wholeSetStore) Read(context.Context) (model.BookingSet, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	return s.set.Clone(), nil
}

func (s *wholeSetStore) Replace(_ context.Context, set model.BookingSet) error {
	s.replaces++
	s.set = set.Clone()
	return nil
}

func (s *wholeSetStore) Subscribe(context.Context) (<-chan model.BookingSet, func(), error) {
	return nil, func() {}, repository.ErrSubscriptionUnsupported
}

func (s *wholeSetStore) Networked() bool { return false }

func TestConfirm_AddsBookingWithoutMutatingInput(t *testing.T) {
	current := model.BookingSet{"2025-9-9-1": validBooking("A", 1)}

	next, err := Confirm(current, "2025-9-9-2", validBooking("B", 2))
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if len(next) != 2 || next["2025-9-9-2"].TeacherName != "B" {
		t.Fatalf("unexpected set: %+v", next)
	}
	if len(current) != 1 {
		t.Fatalf("expected input set untouched, got %+v", current)
	}
}

func TestConfirm_RejectsOccupiedSlot(t *testing.T) {
	current := model.BookingSet{"2025-9-9-1": validBooking("A", 1)}

	_, err := Confirm(current, "2025-9-9-1", validBooking("B", 1))
	if !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	if current["2025-9-9-1"].TeacherName != "A" {
		t.Fatalf("expected existing booking untouched")
	}
}

func TestConfirm_RejectsIncompleteBooking(t *testing.T) {
	b := validBooking("A", 1)
	b.Lesson = "   "

	if _, err := Confirm(model.BookingSet{}, "2025-9-9-1", b); !errors.Is(err, ErrIncompleteBooking) {
		t.Fatalf("expected ErrIncompleteBooking, got %v", err)
	}

	b = validBooking("A", 9)
	if _, err := Confirm(model.BookingSet{}, "2025-9-9-9", b); !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking for period 9, got %v", err)
	}
}

func TestConfirm_RejectsBookingNotMatchingKey(t *testing.T) {
	b := validBooking("A", 5)
	b.DateStr = "1/1"

	if _, err := Confirm(model.BookingSet{}, "2025-9-9-5", b); !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking for date mismatch, got %v", err)
	}
	if _, err := Confirm(model.BookingSet{}, "2025-9-9-1", validBooking("A", 5)); !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking for period mismatch, got %v", err)
	}
	if _, err := Confirm(model.BookingSet{}, "not-a-key", validBooking("A", 5)); !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking for malformed key, got %v", err)
	}

	store := &wholeSetStore{set: model.BookingSet{}}
	m := NewMutator(store, SharedSecret(DefaultCancelSecret))
	if err := m.Confirm(context.Background(), "2025-9-9-5", b); !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking from mutator, got %v", err)
	}
	if store.replaces != 0 || len(store.set) != 0 {
		t.Fatalf("expected nothing written, got %+v", store.set)
	}
}

func TestCancel_ChecksSecretBeforeLookup(t *testing.T) {
	current := model.BookingSet{"2025-9-9-1": validBooking("A", 1)}
	auth := SharedSecret(DefaultCancelSecret)

	if _, err := Cancel(current, "2025-9-9-1", "0000", auth); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := Cancel(current, "2025-9-9-5", "0000", auth); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for missing slot with wrong secret, got %v", err)
	}
	if _, err := Cancel(current, "2025-9-9-5", DefaultCancelSecret, auth); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	next, err := Cancel(current, "2025-9-9-1", DefaultCancelSecret, auth)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(next) != 0 || len(current) != 1 {
		t.Fatalf("expected new empty set and untouched input, got next=%+v current=%+v", next, current)
	}
}

func TestSharedSecret(t *testing.T) {
	if !SharedSecret("2410").AuthorizeCancel("2410") {
		t.Fatalf("expected matching secret to authorize")
	}
	if SharedSecret("2410").AuthorizeCancel(" 2410") {
		t.Fatalf("expected exact comparison")
	}
	if SharedSecret("").AuthorizeCancel("") {
		t.Fatalf("expected empty secret to never authorize")
	}
}

func TestBcryptSecret(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("2410"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	auth, err := NewBcryptSecret(string(hash))
	if err != nil {
		t.Fatalf("new bcrypt secret: %v", err)
	}
	if !auth.AuthorizeCancel("2410") || auth.AuthorizeCancel("2411") {
		t.Fatalf("unexpected bcrypt authorization result")
	}
	if _, err := NewBcryptSecret("plain"); err == nil {
		t.Fatalf("expected error for non-bcrypt hash")
	}
}

func TestMutator_UsesSlotOperations(t *testing.T) {
	store := repository.NewLocalBookingRepository(filepath.Join(t.TempDir(), "bookings.json"))
	m := NewMutator(store, SharedSecret(DefaultCancelSecret))
	ctx := context.Background()

	if err := m.Confirm(ctx, "2025-9-9-1", validBooking("A", 1)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if err := m.Confirm(ctx, "2025-9-9-1", validBooking("B", 1)); !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	if err := m.Cancel(ctx, "2025-9-9-1", "bad"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := m.Cancel(ctx, "2025-9-9-1", DefaultCancelSecret); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := m.Cancel(ctx, "2025-9-9-1", DefaultCancelSecret); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMutator_FallsBackToWholeSetReplace(t *testing.T) {
	store := &wholeSetStore{set: model.BookingSet{}}
	m := NewMutator(store, SharedSecret(DefaultCancelSecret))
	ctx := context.Background()

	if err := m.Confirm(ctx, "2025-9-9-1", validBooking("A", 1)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if store.replaces != 1 || store.set["2025-9-9-1"].TeacherName != "A" {
		t.Fatalf("expected one replace with the new booking, got %d %+v", store.replaces, store.set)
	}
	if err := m.Confirm(ctx, "2025-9-9-1", validBooking("B", 1)); !errors.Is(err, ErrSlotOccupied) {
		t.Fatalf("expected ErrSlotOccupied, got %v", err)
	}
	if store.replaces != 1 {
		t.Fatalf("expected no write on rejected confirm")
	}
	if err := m.Cancel(ctx, "2025-9-9-1", DefaultCancelSecret); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(store.set) != 0 {
		t.Fatalf("expected empty set, got %+v", store.set)
	}
}

func TestMutator_WrapsStoreFailures(t *testing.T) {
	boom := errors.New("connection refused")
	store := &wholeSetStore{readErr: boom}
	m := NewMutator(store, SharedSecret(DefaultCancelSecret))

	err := m.Confirm(context.Background(), "2025-9-9-1", validBooking("A", 1))
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
}

func TestValidator_ValidateDetails(t *testing.T) {
	v, err := NewValidator(model.DefaultCatalog())
	if err != nil {
		t.Fatalf("new validator: %v", err)
	}

	ok := NormalizeDetails(model.BookingDetails{
		TeacherName: "  أحمد ",
		Subject:     "Math",
		Lesson:      " Fractions",
		Grade:       "10 أ",
	})
	if ok.TeacherName != "أحمد" || ok.Lesson != "Fractions" {
		t.Fatalf("expected trimmed fields, got %+v", ok)
	}
	if err := v.ValidateDetails(ok); err != nil {
		t.Fatalf("expected valid details, got %v", err)
	}

	missing := ok
	missing.Lesson = ""
	if err := v.ValidateDetails(missing); !errors.Is(err, ErrIncompleteBooking) {
		t.Fatalf("expected ErrIncompleteBooking, got %v", err)
	}

	unknown := ok
	unknown.Subject = "Astrology"
	if err := v.ValidateDetails(unknown); !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking for subject, got %v", err)
	}

	badGrade := ok
	badGrade.Grade = "13 أ"
	if err := v.ValidateDetails(badGrade); !errors.Is(err, ErrInvalidBooking) {
		t.Fatalf("expected ErrInvalidBooking for grade, got %v", err)
	}
}

func TestRegisterTag_ReportsFailure(t *testing.T) {
	err := registerTag(validator.New(), "", func(string) bool { return true })
	if err == nil {
		t.Fatalf("expected error for empty tag")
	}
}
