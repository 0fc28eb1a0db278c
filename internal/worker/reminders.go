package worker

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/model"
	"github.com/chesterguides/guiding-backend/internal/notify"
)

// SlotDateLister loads assigned, upcoming slots on one calendar date.
type SlotDateLister interface {
	ListByDate(ctx context.Context, date string) ([]model.ScheduleSlot, error)
}

// GuideResolver resolves guides to their notification users.
type GuideResolver interface {
	GetByID(ctx context.Context, guideID uint64) (*model.Guide, error)
}

// ReminderWorker notifies each guide of tomorrow's tour times, once per
// local day.  Dates and times are evaluated in the configured tour zone.
type ReminderWorker struct {
	Slots    SlotDateLister
	Guides   GuideResolver
	Notifier notify.Notifier
	Logger   *logrus.Logger
	Interval time.Duration
	Loc      *time.Location
	Now      func() time.Time // injectable for tests, defaults to time.Now

	lastSent string // local date reminders were last sent for
}

func (w *ReminderWorker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Run sends reminders on every interval until the context is cancelled.
// SendTomorrowReminders itself dedupes per day, so the interval only
// controls how promptly the daily batch goes out.
func (w *ReminderWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.SendTomorrowReminders(ctx); err != nil {
				w.Logger.WithError(err).Error("tour reminders: send failed")
			}
		}
	}
}

// SendTomorrowReminders notifies every guide with a slot tomorrow of the
// slot times.  Calling it twice on the same local day is a no-op.
func (w *ReminderWorker) SendTomorrowReminders(ctx context.Context) error {
	localNow := w.now().In(w.Loc)
	tomorrow := localNow.AddDate(0, 0, 1).Format("2006-01-02")
	if w.lastSent == tomorrow {
		return nil
	}

	slots, err := w.Slots.ListByDate(ctx, tomorrow)
	if err != nil {
		return err
	}
	if len(slots) == 0 {
		w.lastSent = tomorrow
		return nil
	}

	timesByGuide := make(map[uint64][]string)
	for _, s := range slots {
		if s.GuideID == nil || s.SlotTime == nil {
			continue
		}
		t := *s.SlotTime
		if len(t) >= 5 {
			t = t[:5]
		}
		timesByGuide[*s.GuideID] = appendUnique(timesByGuide[*s.GuideID], t)
	}

	notified := 0
	for guideID, times := range timesByGuide {
		guide, err := w.Guides.GetByID(ctx, guideID)
		if err != nil {
			w.Logger.WithError(err).WithFields(logrus.Fields{"guide_id": guideID}).Warn("tour reminders: guide lookup failed")
			continue
		}
		sort.Strings(times)
		msg := notify.Message{
			Title: "Tour tomorrow",
			Body:  "You have a tour tomorrow at " + strings.Join(times, ", ") + ".",
			Data:  map[string]string{"type": "tour_reminder", "date": tomorrow},
		}
		if err := w.Notifier.NotifyUser(ctx, guide.UserID, msg); err != nil {
			w.Logger.WithError(err).WithFields(logrus.Fields{"guide_id": guideID}).Warn("tour reminders: notify failed")
			continue
		}
		notified++
	}
	w.lastSent = tomorrow
	w.Logger.WithFields(logrus.Fields{"slots": len(slots), "guides": notified, "date": tomorrow}).Info("tour reminders: batch sent")
	return nil
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}
