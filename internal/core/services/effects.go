package services

import (
	"github.com/sirupsen/logrus"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
)

// publishCommitted hands effects of a committed transition to the
// publisher. A panicking publisher is logged and never reaches the caller.
func publishCommitted(log logrus.FieldLogger, publisher domain.EffectPublisher, userID string, fx domain.Effects) {
	if publisher == nil || len(fx) == 0 {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithField("user_id", userID).Errorf("effect publisher panicked: %v", r)
		}
	}()
	publisher.Publish(fx...)
}
