package domain

import "time"

type EffectKind string

const (
	EffectXPAwarded         EffectKind = "xp_awarded"
	EffectLevelChanged      EffectKind = "level_changed"
	EffectHabitCompleted    EffectKind = "habit_completed"
	EffectHabitUncompleted  EffectKind = "habit_uncompleted"
	EffectTaskCompleted     EffectKind = "task_completed"
	EffectMilestoneComplete EffectKind = "milestone_completed"
	EffectGoalProgressed    EffectKind = "goal_progressed"
	EffectGoalCompleted     EffectKind = "goal_completed"
	EffectInstallmentPaid   EffectKind = "installment_paid"
)

// Effect is a notification emitted after a transition commits. Consumers
// (sound cues, toasts, streaks, metrics) are best effort: they never gate
// or roll back the transition that produced the effect.
type Effect struct {
	Kind       EffectKind `json:"kind"`
	UserID     string     `json:"user_id"`
	SourceType SourceType `json:"source_type,omitempty"`
	SourceID   string     `json:"source_id,omitempty"`
	Amount     int64      `json:"amount,omitempty"`
	LevelIndex int        `json:"level_index,omitempty"`
	SFX        bool       `json:"sfx"`
	At         time.Time  `json:"at"`
}

// EffectPublisher receives committed effects. Publish must not block.
type EffectPublisher interface {
	Publish(effects ...Effect)
}

// Effects accumulates effects during a unit of work; they are published
// only once the unit commits.
type Effects []Effect

func (e *Effects) Add(uc UserContext, kind EffectKind, source SourceType, sourceID string, amount int64) {
	*e = append(*e, Effect{
		Kind:       kind,
		UserID:     uc.UserID,
		SourceType: source,
		SourceID:   sourceID,
		Amount:     amount,
		SFX:        uc.SFXEnabled,
		At:         uc.Clock().UTC(),
	})
}
