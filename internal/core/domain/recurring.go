package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type Frequency string

const FrequencyMonthly Frequency = "monthly"

type RecurringStatus string

const (
	RecurringSettled   RecurringStatus = "settled"
	RecurringScheduled RecurringStatus = "scheduled"
)

const (
	DefaultHorizon = 6
	MaxHorizon     = 60
)

// RecurringExpense is one member of a recurring series. Members share
// GroupID; Sequence 0 is the anchor.
type RecurringExpense struct {
	RecordMeta
	GroupID     string          `json:"group_id" db:"group_id"`
	Description string          `json:"description" db:"description"`
	Amount      Cents           `json:"amount" db:"amount"`
	Frequency   Frequency       `json:"frequency" db:"frequency"`
	AnchorDate  time.Time       `json:"anchor_date" db:"anchor_date"`
	AnchorDay   int             `json:"anchor_day" db:"anchor_day"`
	Sequence    int             `json:"sequence" db:"sequence"`
	Date        time.Time       `json:"date" db:"expense_date"`
	MonthKey    string          `json:"month_key" db:"month_key"`
	Status      RecurringStatus `json:"status" db:"status"`
	SettledAt   *time.Time      `json:"settled_at,omitempty" db:"settled_at"`
}

type RecurringFields struct {
	Description  string
	Amount       Cents
	Frequency    Frequency
	AnchorDate   time.Time
	Horizon      int
	SettleAnchor bool
}

func validateFrequency(f Frequency) error {
	if f != FrequencyMonthly {
		return ErrInvalidFrequency
	}
	return nil
}

func validateHorizon(h int) error {
	if h < 1 || h > MaxHorizon {
		return ErrInvalidHorizon
	}
	return nil
}

// SeriesDates returns the dates of offsets from..from+count-1 after the
// anchor. Each date is computed from the anchor, never from the previous
// member, so a clamp in February does not drag later months to the 28th.
func SeriesDates(anchor time.Time, frequency Frequency, from, count int) ([]time.Time, error) {
	if err := validateFrequency(frequency); err != nil {
		return nil, err
	}

	anchor = DateOnly(anchor)
	dates := make([]time.Time, 0, count)
	for i := from; i < from+count; i++ {
		dates = append(dates, AddMonthsClamped(anchor, i, anchor.Day()))
	}
	return dates, nil
}

// GenerateSeries expands the anchor into horizon future dates (offsets
// 1..horizon). The horizon is never extended implicitly.
func GenerateSeries(anchor time.Time, horizon int, frequency Frequency) ([]time.Time, error) {
	if err := validateHorizon(horizon); err != nil {
		return nil, err
	}
	return SeriesDates(anchor, frequency, 1, horizon)
}

// NewRecurringSeries builds the anchor member followed by its scheduled
// future members.
func NewRecurringSeries(userID string, f RecurringFields, now time.Time) ([]*RecurringExpense, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserContext
	}
	if f.Amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if f.Amount > MaxAmount {
		return nil, ErrAmountOutOfRange
	}
	if f.AnchorDate.IsZero() {
		return nil, ErrInvalidDate
	}

	dates, err := GenerateSeries(f.AnchorDate, f.Horizon, f.Frequency)
	if err != nil {
		return nil, err
	}

	anchor := DateOnly(f.AnchorDate)
	template := RecurringExpense{
		GroupID:     uuid.NewString(),
		Description: strings.TrimSpace(f.Description),
		Amount:      f.Amount,
		Frequency:   f.Frequency,
		AnchorDate:  anchor,
		AnchorDay:   anchor.Day(),
	}

	members := make([]*RecurringExpense, 0, len(dates)+1)

	first := template.member(userID, 0, anchor, now)
	if f.SettleAnchor {
		_ = first.Settle(now)
	}
	members = append(members, first)

	for i, d := range dates {
		members = append(members, template.member(userID, i+1, d, now))
	}
	return members, nil
}

// ExtendSeries appends count scheduled members after the highest existing
// sequence of the series.
func ExtendSeries(series []*RecurringExpense, count int, now time.Time) ([]*RecurringExpense, error) {
	if len(series) == 0 {
		return nil, ErrRecurringNotFound
	}
	if err := validateHorizon(count); err != nil {
		return nil, err
	}

	last := series[0]
	for _, m := range series {
		if m.Sequence > last.Sequence {
			last = m
		}
	}

	dates, err := SeriesDates(last.AnchorDate, last.Frequency, last.Sequence+1, count)
	if err != nil {
		return nil, err
	}

	members := make([]*RecurringExpense, 0, count)
	for i, d := range dates {
		members = append(members, last.member(last.UserID, last.Sequence+1+i, d, now))
	}
	return members, nil
}

func (r RecurringExpense) member(userID string, seq int, date time.Time, now time.Time) *RecurringExpense {
	return &RecurringExpense{
		RecordMeta:  newRecordMeta(userID, now),
		GroupID:     r.GroupID,
		Description: r.Description,
		Amount:      r.Amount,
		Frequency:   r.Frequency,
		AnchorDate:  r.AnchorDate,
		AnchorDay:   r.AnchorDay,
		Sequence:    seq,
		Date:        date,
		MonthKey:    MonthKey(date),
		Status:      RecurringScheduled,
	}
}

func (r *RecurringExpense) Settle(now time.Time) error {
	if r.Status == RecurringSettled {
		return ErrAlreadySettled
	}

	now = now.UTC()
	r.Status = RecurringSettled
	r.SettledAt = &now
	r.touch(now)
	return nil
}
