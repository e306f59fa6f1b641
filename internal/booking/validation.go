package booking

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Leganyst/room-booking/internal/calendar"
	"github.com/Leganyst/room-booking/internal/model"
)

// Validator проверяет введённые данные бронирования по справочникам.
type Validator struct {
	validate *validator.Validate
	catalog  model.Catalog
}

func NewValidator(catalog model.Catalog) (*Validator, error) {
	v := validator.New()
	if err := registerTag(v, "subject", catalog.HasSubject); err != nil {
		return nil, err
	}
	if err := registerTag(v, "grade", catalog.HasGrade); err != nil {
		return nil, err
	}
	return &Validator{validate: v, catalog: catalog}, nil
}

func registerTag(v *validator.Validate, tag string, known func(string) bool) error {
	err := v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return known(fl.Field().String())
	})
	if err != nil {
		return fmt.Errorf("register %q validation: %w", tag, err)
	}
	return nil
}

// Catalog возвращает справочники, по которым идёт проверка.
func (v *Validator) Catalog() model.Catalog { return v.catalog }

// NormalizeDetails обрезает пробелы по краям всех полей.
func NormalizeDetails(d model.BookingDetails) model.BookingDetails {
	return model.BookingDetails{
		TeacherName: strings.TrimSpace(d.TeacherName),
		Subject:     strings.TrimSpace(d.Subject),
		Lesson:      strings.TrimSpace(d.Lesson),
		Grade:       strings.TrimSpace(d.Grade),
	}
}

// ValidateDetails: пустое поле -> ErrIncompleteBooking,
// предмет или класс вне справочника -> ErrInvalidBooking.
func (v *Validator) ValidateDetails(d model.BookingDetails) error {
	err := v.validate.Struct(d)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}

	var missing, invalid []string
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
		} else {
			invalid = append(invalid, fe.Field())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteBooking, strings.Join(missing, ", "))
	}
	return fmt.Errorf("%w: unknown %s", ErrInvalidBooking, strings.Join(invalid, ", "))
}

// requireFields: ни одно бронирование не сохраняется
// с пустым обязательным полем или уроком вне 1..PeriodsPerDay.
func requireFields(b model.Booking) error {
	var missing []string
	if strings.TrimSpace(b.TeacherName) == "" {
		missing = append(missing, "TeacherName")
	}
	if strings.TrimSpace(b.Subject) == "" {
		missing = append(missing, "Subject")
	}
	if strings.TrimSpace(b.Lesson) == "" {
		missing = append(missing, "Lesson")
	}
	if strings.TrimSpace(b.Grade) == "" {
		missing = append(missing, "Grade")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteBooking, strings.Join(missing, ", "))
	}
	if b.Period < 1 || b.Period > model.PeriodsPerDay {
		return fmt.Errorf("%w: period %d", ErrInvalidBooking, b.Period)
	}
	return nil
}

// requireSlot дополняет requireFields: дата и урок бронирования должны
// совпадать с ключом, под которым оно хранится.
func requireSlot(key string, b model.Booking) error {
	if err := requireFields(b); err != nil {
		return err
	}
	// Ключ и dateStr не зависят от пояса, сравниваем в UTC.
	if !calendar.ConsistentWithKey(key, b, time.UTC) {
		return fmt.Errorf("%w: booking %s/%d does not match slot %q", ErrInvalidBooking, b.DateStr, b.Period, key)
	}
	return nil
}
