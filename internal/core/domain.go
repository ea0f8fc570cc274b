package core

import (
	"strings"
	"time"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const (
	MaxCategoryNameLen = 100
	MaxGoalNameLen     = 150
	MaxDescriptionLen  = 255
)

type (
	TransactionType string

	// Date is a calendar date. The time-of-day part is always midnight UTC.
	Date struct {
		time.Time
	}

	// Money is an exact amount in cents. All aggregation happens on cents;
	// conversion to float64 is allowed only at the chart/JSON boundary.
	Money struct {
		Cents int64
	}

	User struct {
		ID           string
		Username     string
		PasswordHash string
		CreatedAt    time.Time
	}

	Category struct {
		ID       int64
		UserID   string
		Name     string
		IsIncome bool
	}

	Transaction struct {
		ID           int64
		UserID       string
		CategoryID   *int64 // nil once the category is deleted
		CategoryName string // resolved on read, empty when CategoryID is nil
		Type         TransactionType
		Amount       Money
		Date         Date
		Description  string
	}

	Goal struct {
		ID            int64
		UserID        string
		Name          string
		TargetAmount  Money
		CurrentAmount Money
		Deadline      Date // zero value means no deadline
		CreatedAt     time.Time
	}
)

var (
	ErrInvalidAmount      = &ValidationError{Field: "amount", Msg: "amount must be a positive decimal"}
	ErrInvalidType        = &ValidationError{Field: "type", Msg: "type must be 'income' or 'expense'"}
	ErrFutureDate         = &ValidationError{Field: "date", Msg: "date must not be in the future"}
	ErrInvalidDate        = &ValidationError{Field: "date", Msg: "invalid date"}
	ErrEmptyName          = &ValidationError{Field: "name", Msg: "name must not be empty"}
	ErrNameTooLong        = &ValidationError{Field: "name", Msg: "name is too long"}
	ErrDescriptionTooLong = &ValidationError{Field: "description", Msg: "description is too long"}
	ErrInvalidTarget      = &ValidationError{Field: "target_amount", Msg: "target amount must be greater than zero"}
	ErrNegativeCurrent    = &ValidationError{Field: "current_amount", Msg: "current amount must not be negative"}
	ErrPastDeadline       = &ValidationError{Field: "deadline", Msg: "deadline must be in the future"}
)

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MonthKey returns the YYYY-MM bucket label for the date.
func (d Date) MonthKey() string {
	return d.Format("2006-01")
}

// MarshalJSON encodes the date as a "YYYY-MM-DD" string, or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts "YYYY-MM-DD" strings and null.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" || s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (t TransactionType) Valid() bool {
	return t == Income || t == Expense
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if len(c.Name) > MaxCategoryNameLen {
		return ErrNameTooLong
	}
	return nil
}

// Validate checks the transaction against today's date. A transaction dated
// exactly today is accepted; tomorrow is not.
func (t Transaction) Validate(today Date) error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if t.Date.After(today.Time) {
		return ErrFutureDate
	}
	if len(t.Description) > MaxDescriptionLen {
		return ErrDescriptionTooLong
	}
	return nil
}

// Validate checks the goal fields. The deadline, when set, must be strictly
// after today: a deadline of today is rejected, tomorrow is accepted.
func (g Goal) Validate(today Date) error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > MaxGoalNameLen {
		return ErrNameTooLong
	}
	if g.TargetAmount.Cents <= 0 {
		return ErrInvalidTarget
	}
	if g.CurrentAmount.Cents < 0 {
		return ErrNegativeCurrent
	}
	if !g.Deadline.IsZero() && !g.Deadline.After(today.Time) {
		return ErrPastDeadline
	}
	return nil
}

// IsCompleted reports whether the goal has reached its target. Completion is
// derived on every read, never stored, so it cannot go stale after edits.
func (g Goal) IsCompleted() bool {
	return g.CurrentAmount.Cents >= g.TargetAmount.Cents
}

// ProgressPercent returns current/target as a percentage for display.
// It is 0 when the target is zero or absent.
func (g Goal) ProgressPercent() float64 {
	if g.TargetAmount.Cents <= 0 {
		return 0
	}
	return float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
}
