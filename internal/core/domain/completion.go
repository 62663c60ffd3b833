package domain

type CompletionKind string

const (
	KindHabit     CompletionKind = "habit"
	KindTask      CompletionKind = "task"
	KindMilestone CompletionKind = "milestone"
	KindGoal      CompletionKind = "goal"
)

// Reversible reports whether the kind exposes the uncomplete edge.
func (k CompletionKind) Reversible() bool {
	return k == KindHabit
}

// MaxXPReward caps every configured reward, keeping the doubled
// uncomplete penalty far inside int64.
const MaxXPReward = 1_000_000

func ValidateXPReward(reward int64) error {
	if reward < 0 || reward > MaxXPReward {
		return ErrInvalidXPReward
	}
	return nil
}

// CompletionXP is the award for a completion. Overdue instances earn half
// the base reward, rounded half-up (7 -> 4, 8 -> 4).
func CompletionXP(base int64, overdue bool) int64 {
	if !overdue {
		return base
	}
	return (base + 1) / 2
}

// UncompletePenalty is twice the base reward, so a complete/uncomplete
// round trip is always a net loss of one base reward.
func UncompletePenalty(base int64) int64 {
	return -2 * base
}

// CompletionResult describes a committed transition.
type CompletionResult struct {
	Kind         CompletionKind   `json:"kind"`
	EntityID     string           `json:"entity_id"`
	Completed    bool             `json:"completed"`
	XPDelta      int64            `json:"xp_delta"`
	Transactions []*XPTransaction `json:"transactions"`
	Goal         *GoalProgress    `json:"goal,omitempty"`
	Level        LevelInfo        `json:"level"`
}
