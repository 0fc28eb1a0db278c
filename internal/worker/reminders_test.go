package worker

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/model"
	"github.com/chesterguides/guiding-backend/internal/notify"
)

type fakeReminderStore struct {
	slots  []model.ScheduleSlot
	guides map[uint64]*model.Guide
	lists  int
}

func (f *fakeReminderStore) ListByDate(ctx context.Context, date string) ([]model.ScheduleSlot, error) {
	f.lists++
	var out []model.ScheduleSlot
	for _, s := range f.slots {
		if s.SlotDate.Format("2006-01-02") == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeReminderStore) GetByID(ctx context.Context, guideID uint64) (*model.Guide, error) {
	g, ok := f.guides[guideID]
	if !ok {
		return nil, context.Canceled
	}
	return g, nil
}

type recordingNotifier struct {
	sent map[string][]notify.Message
}

func (r *recordingNotifier) NotifyUser(ctx context.Context, userID string, msg notify.Message) error {
	if r.sent == nil {
		r.sent = map[string][]notify.Message{}
	}
	r.sent[userID] = append(r.sent[userID], msg)
	return nil
}

func timeOfDay(s string) *string { return &s }

func newReminderWorker(f *fakeReminderStore, n *recordingNotifier) *ReminderWorker {
	return &ReminderWorker{
		Slots:    f,
		Guides:   f,
		Notifier: n,
		Logger:   logrus.New(),
		Interval: time.Hour,
		Loc:      time.UTC,
		Now:      func() time.Time { return testNow },
	}
}

func TestSendTomorrowReminders_GroupsTimesPerGuide(t *testing.T) {
	tomorrow := testNow.AddDate(0, 0, 1)
	f := &fakeReminderStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: tomorrow, SlotTime: timeOfDay("14:00:00"), GuideID: guideID(9)},
			{ID: 2, SlotDate: tomorrow, SlotTime: timeOfDay("10:30:00"), GuideID: guideID(9)},
			{ID: 3, SlotDate: tomorrow, SlotTime: timeOfDay("10:30:00"), GuideID: guideID(7)},
			{ID: 4, SlotDate: tomorrow, GuideID: guideID(7)}, // no time, skipped
			{ID: 5, SlotDate: testNow, SlotTime: timeOfDay("10:30:00"), GuideID: guideID(9)},
		},
		guides: map[uint64]*model.Guide{
			9: {ID: 9, UserID: "user-9"},
			7: {ID: 7, UserID: "user-7"},
		},
	}
	n := &recordingNotifier{}
	w := newReminderWorker(f, n)

	if err := w.SendTomorrowReminders(context.Background()); err != nil {
		t.Fatalf("SendTomorrowReminders error: %v", err)
	}

	msgs := n.sent["user-9"]
	if len(msgs) != 1 {
		t.Fatalf("expected one reminder for user-9, got %d", len(msgs))
	}
	if !strings.Contains(msgs[0].Body, "10:30, 14:00") {
		t.Fatalf("times not grouped and sorted: %q", msgs[0].Body)
	}
	if len(n.sent["user-7"]) != 1 {
		t.Fatalf("expected one reminder for user-7, got %d", len(n.sent["user-7"]))
	}
}

func TestSendTomorrowReminders_OncePerDay(t *testing.T) {
	tomorrow := testNow.AddDate(0, 0, 1)
	f := &fakeReminderStore{
		slots: []model.ScheduleSlot{
			{ID: 1, SlotDate: tomorrow, SlotTime: timeOfDay("10:00:00"), GuideID: guideID(9)},
		},
		guides: map[uint64]*model.Guide{9: {ID: 9, UserID: "user-9"}},
	}
	n := &recordingNotifier{}
	w := newReminderWorker(f, n)

	for i := 0; i < 3; i++ {
		if err := w.SendTomorrowReminders(context.Background()); err != nil {
			t.Fatalf("SendTomorrowReminders error: %v", err)
		}
	}
	if len(n.sent["user-9"]) != 1 {
		t.Fatalf("expected a single reminder per day, got %d", len(n.sent["user-9"]))
	}
	if f.lists != 1 {
		t.Fatalf("expected one slot query per day, got %d", f.lists)
	}
}
