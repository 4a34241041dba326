package notification

import (
	"fmt"
	"log/slog"
)

// FailoverNotifier tries an ordered list of notifiers until one succeeds.
// It replaces ad-hoc primary/fallback transport handling with an explicit
// delivery chain: the first notifier that accepts the message wins, and a
// single error is returned only when every notifier in the chain has failed.
type FailoverNotifier struct {
	notifiers []Notifier
}

func NewFailoverNotifier(notifiers ...Notifier) *FailoverNotifier {
	return &FailoverNotifier{notifiers: notifiers}
}

// Append adds a notifier to the end of the chain.
func (f *FailoverNotifier) Append(n Notifier) {
	f.notifiers = append(f.notifiers, n)
}

func (f *FailoverNotifier) Send(noticeType NoticeType, notification NotificationData, template NoticeTemplate) error {
	if len(f.notifiers) == 0 {
		return fmt.Errorf("no notifiers configured in failover chain")
	}

	var lastErr error
	for i, n := range f.notifiers {
		err := n.Send(noticeType, notification, template)
		if err == nil {
			if i > 0 {
				slog.Info("Notification delivered by fallback notifier", "position", i, "type", noticeType)
			}
			return nil
		}
		slog.Warn("Notifier failed, trying next in chain", "position", i, "type", noticeType, "err", err)
		lastErr = err
	}

	return fmt.Errorf("all %d notifiers failed, last error: %w", len(f.notifiers), lastErr)
}
