package natsio

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fadliRafidan/smart-lock-api/pkg/notify"
	nats "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
)

// DefaultBaseSubject is the subject prefix used when none is configured
const DefaultBaseSubject = "smartlock.devicestate.v1"

type natsPublisher struct {
	nc          *nats.Conn
	baseSubject string
}

// New returns a Publisher that sends each transition as JSON to
// <baseSubject>.<device id>.events.transition
func New(nc *nats.Conn, baseSubject string) notify.Publisher {
	if baseSubject == "" {
		baseSubject = DefaultBaseSubject
	}
	return &natsPublisher{
		nc:          nc,
		baseSubject: baseSubject,
	}
}

func (p *natsPublisher) PublishTransition(t *notify.Transition) error {
	data, err := json.Marshal(t)
	if err != nil {
		return errors.Wrap(err, "failed to marshal transition")
	}

	if err := p.nc.Publish(TransitionSubject(p.baseSubject, t.DeviceID), data); err != nil {
		return errors.Wrap(err, "failed to publish transition")
	}

	return nil
}

var subjectTokenReplacer = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// TransitionSubject returns the subject transitions of deviceID are published on
func TransitionSubject(baseSubject, deviceID string) string {
	return fmt.Sprintf("%s.%s.events.transition", baseSubject, subjectTokenReplacer.Replace(deviceID))
}

// TransitionWildcard matches the transitions of every device
func TransitionWildcard(baseSubject string) string {
	return fmt.Sprintf("%s.*.events.transition", baseSubject)
}
