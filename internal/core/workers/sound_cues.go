package workers

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

type Cue string

const (
	CueXPGain     Cue = "xp_gain"
	CueXPLoss     Cue = "xp_loss"
	CueLevelUp    Cue = "level_up"
	CueLevelDown  Cue = "level_down"
	CueComplete   Cue = "complete"
	CueGoalReward Cue = "goal_complete"
	CuePayment    Cue = "payment"
)

// CueFor maps an effect to the sound a client should play, or "" when the
// effect is silent.
func CueFor(effect domain.Effect) Cue {
	switch effect.Kind {
	case domain.EffectXPAwarded:
		if effect.Amount < 0 {
			return CueXPLoss
		}
		if effect.Amount > 0 {
			return CueXPGain
		}
	case domain.EffectLevelChanged:
		if effect.Amount < 0 {
			return CueLevelDown
		}
		return CueLevelUp
	case domain.EffectHabitCompleted, domain.EffectTaskCompleted, domain.EffectMilestoneComplete:
		return CueComplete
	case domain.EffectGoalCompleted:
		return CueGoalReward
	case domain.EffectInstallmentPaid:
		return CuePayment
	}
	return ""
}

// CueSink receives the cues of users who have sound enabled.
type CueSink interface {
	Play(userID string, cue Cue)
}

// SoundCueNotifier turns effects into sound cues, honoring the user's
// sound preference carried on the effect.
type SoundCueNotifier struct {
	sink CueSink
	log  *logrus.Logger
}

func NewSoundCueNotifier(sink CueSink, log *logrus.Logger) *SoundCueNotifier {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SoundCueNotifier{sink: sink, log: log}
}

func (n *SoundCueNotifier) Handle(ctx context.Context, effect domain.Effect) error {
	if !effect.SFX {
		return nil
	}
	cue := CueFor(effect)
	if cue == "" {
		return nil
	}

	if n.sink != nil {
		n.sink.Play(effect.UserID, cue)
		return nil
	}
	n.log.WithFields(logrus.Fields{
		"user_id": effect.UserID,
		"cue":     cue,
	}).Debug("sound cue")
	return nil
}
