package domain

import (
	"math"
	"strings"
	"time"
)

type GoalType string

const (
	GoalAccumulative GoalType = "accumulative"
	GoalChecklist    GoalType = "checklist"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalArchived  GoalStatus = "archived"
)

const DefaultGoalReward = 100

type Goal struct {
	RecordMeta
	Title         string     `json:"title" db:"title"`
	GoalType      GoalType   `json:"goal_type" db:"goal_type"`
	CurrentValue  int64      `json:"current_value" db:"current_value"`
	TargetValue   int64      `json:"target_value" db:"target_value"`
	Unit          string     `json:"unit,omitempty" db:"unit"`
	Status        GoalStatus `json:"status" db:"status"`
	XPOnComplete  int64      `json:"xp_on_complete" db:"xp_on_complete"`
	XPPerProgress int64      `json:"xp_per_progress" db:"xp_per_progress"`
	CompletedAt   *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type GoalFields struct {
	Title         string
	GoalType      GoalType
	TargetValue   int64
	Unit          string
	XPOnComplete  int64
	XPPerProgress int64
}

// GoalProgress is the outcome of one progress operation.
type GoalProgress struct {
	GoalID       string  `json:"goal_id"`
	PrevPercent  float64 `json:"prev_percent"`
	NewPercent   float64 `json:"new_percent"`
	CurrentValue int64   `json:"current_value"`
	Completed    bool    `json:"completed"`
	XPAward      int64   `json:"xp_award"`
}

func NewGoal(userID string, f GoalFields, now time.Time) (*Goal, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidUserContext
	}

	title := strings.TrimSpace(f.Title)
	if title == "" {
		return nil, ErrTitleEmpty
	}
	if len(title) > MaxTitleLen {
		return nil, ErrTitleTooLong
	}
	if err := ValidateXPReward(f.XPOnComplete); err != nil {
		return nil, err
	}
	if err := ValidateXPReward(f.XPPerProgress); err != nil {
		return nil, err
	}

	g := &Goal{
		RecordMeta:    newRecordMeta(userID, now),
		Title:         title,
		GoalType:      f.GoalType,
		Unit:          strings.TrimSpace(f.Unit),
		Status:        GoalActive,
		XPOnComplete:  f.XPOnComplete,
		XPPerProgress: f.XPPerProgress,
	}

	switch f.GoalType {
	case GoalAccumulative:
		if f.TargetValue <= 0 {
			return nil, ErrInvalidGoalTarget
		}
		g.TargetValue = f.TargetValue
	case GoalChecklist:
		// Checklist targets track the milestone count.
	default:
		return nil, ErrInvalidGoalType
	}

	return g, nil
}

func percentOf(current, target int64) float64 {
	if target <= 0 {
		return 0
	}
	return float64(current) / float64(target) * 100
}

func reached(current, target int64) bool {
	return target > 0 && current >= target
}

func (g *Goal) Percent() float64 {
	return percentOf(g.CurrentValue, g.TargetValue)
}

// EnsureActive rejects goals that are completed or archived.
func (g *Goal) EnsureActive() error {
	switch g.Status {
	case GoalCompleted:
		return ErrGoalAlreadyComplete
	case GoalArchived:
		return ErrGoalArchived
	}
	return nil
}

func (g *Goal) complete(now time.Time) {
	now = now.UTC()
	g.Status = GoalCompleted
	g.CompletedAt = &now
}

// ApplyDelta advances an accumulative goal. Crossing from below the target
// to at-or-above it is the completion event: the goal becomes terminal and
// the award is XPOnComplete alone, whatever the size of the jump. Other
// positive increments earn XPPerProgress; regressions floor at zero and
// earn nothing.
func (g *Goal) ApplyDelta(delta int64, now time.Time) (GoalProgress, error) {
	if g.GoalType != GoalAccumulative {
		return GoalProgress{}, ErrInvalidGoalOperation
	}
	if delta == 0 {
		return GoalProgress{}, ErrInvalidProgressDelta
	}
	if err := g.EnsureActive(); err != nil {
		return GoalProgress{}, err
	}

	prev := g.CurrentValue
	if delta > 0 && delta > math.MaxInt64-prev {
		return GoalProgress{}, ErrInvalidProgressDelta
	}
	next := prev + delta
	if next < 0 {
		next = 0
	}

	out := GoalProgress{
		GoalID:      g.ID,
		PrevPercent: percentOf(prev, g.TargetValue),
		NewPercent:  percentOf(next, g.TargetValue),
	}

	g.CurrentValue = next
	switch {
	case !reached(prev, g.TargetValue) && reached(next, g.TargetValue):
		g.complete(now)
		out.Completed = true
		out.XPAward = g.XPOnComplete
	case delta > 0:
		out.XPAward = g.XPPerProgress
	}

	out.CurrentValue = g.CurrentValue
	g.touch(now)
	return out, nil
}

// ApplyChecklist records the milestone tally of a checklist goal and
// detects the crossing the same way ApplyDelta does.
func (g *Goal) ApplyChecklist(done, total int64, now time.Time) (GoalProgress, error) {
	if g.GoalType != GoalChecklist {
		return GoalProgress{}, ErrInvalidGoalOperation
	}
	if err := g.EnsureActive(); err != nil {
		return GoalProgress{}, err
	}

	wasReached := reached(g.CurrentValue, g.TargetValue)
	out := GoalProgress{
		GoalID:      g.ID,
		PrevPercent: g.Percent(),
		NewPercent:  percentOf(done, total),
	}

	g.CurrentValue = done
	g.TargetValue = total
	if !wasReached && reached(done, total) {
		g.complete(now)
		out.Completed = true
		out.XPAward = g.XPOnComplete
	}

	out.CurrentValue = g.CurrentValue
	g.touch(now)
	return out, nil
}

// Regress undoes one unit of accumulative progress, floored at zero. It is
// a no-op for goals that are not active accumulative goals.
func (g *Goal) Regress(now time.Time) bool {
	if g.GoalType != GoalAccumulative || g.Status != GoalActive || g.CurrentValue == 0 {
		return false
	}
	g.CurrentValue--
	g.touch(now)
	return true
}

// AddMilestoneSlot grows the checklist when a milestone is attached.
func (g *Goal) AddMilestoneSlot(now time.Time) error {
	if g.GoalType != GoalChecklist {
		return ErrInvalidGoalOperation
	}
	if err := g.EnsureActive(); err != nil {
		return err
	}
	g.TargetValue++
	g.touch(now)
	return nil
}

func (g *Goal) Archive(now time.Time) error {
	if err := g.EnsureActive(); err != nil {
		return err
	}
	g.Status = GoalArchived
	g.touch(now)
	return nil
}

func (g *Goal) Restore(now time.Time) error {
	if g.Status != GoalArchived {
		return ErrGoalNotArchived
	}
	g.Status = GoalActive
	g.touch(now)
	return nil
}
