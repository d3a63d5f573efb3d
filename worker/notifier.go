package worker

import (
	"context"

	"github.com/sirupsen/logrus"

	"startupops/utils"
)

// Notification kinds the worker knows how to deliver.
const (
	NotifyAccessGranted = "access_granted"
	NotifyTeamWelcome   = "team_welcome"
)

type Notification struct {
	Kind        string
	To          string
	StartupName string
	Flavor      string // investor or mentor, for access grants
}

// Notifier delivers emails off the request path. Handlers enqueue and move
// on; a failed send is logged and dropped, never surfaced to the request
// that caused it.
type Notifier struct {
	queue  chan Notification
	logger *logrus.Logger
}

func NewNotifier(logger *logrus.Logger) *Notifier {
	return &Notifier{
		queue:  make(chan Notification, 64),
		logger: logger,
	}
}

// Enqueue hands a notification to the worker. Non-blocking: if the queue is
// full the notification is dropped with a log line.
func (n *Notifier) Enqueue(note Notification) {
	select {
	case n.queue <- note:
	default:
		n.logger.WithFields(logrus.Fields{
			"kind": note.Kind,
			"to":   note.To,
		}).Warn("notification queue full, dropping")
	}
}

// Start consumes the queue until the context is cancelled, then drains
// whatever is already enqueued before returning.
func (n *Notifier) Start(ctx context.Context) {
	n.logger.Info("notification worker started")
	for {
		select {
		case <-ctx.Done():
			n.logger.Info("notification worker stopping")
			for {
				select {
				case note := <-n.queue:
					n.deliver(note)
				default:
					return
				}
			}
		case note := <-n.queue:
			n.deliver(note)
		}
	}
}

func (n *Notifier) deliver(note Notification) {
	var err error
	switch note.Kind {
	case NotifyAccessGranted:
		err = utils.SendAccessGrantedEmail(note.To, note.StartupName, note.Flavor)
	case NotifyTeamWelcome:
		err = utils.SendTeamWelcomeEmail(note.To, note.StartupName)
	default:
		n.logger.WithField("kind", note.Kind).Warn("unknown notification kind")
		return
	}

	if err != nil {
		n.logger.WithFields(logrus.Fields{
			"kind":  note.Kind,
			"to":    note.To,
			"error": err,
		}).Error("failed to send notification email")
	}
}
