// Package notify delivers push notifications to guides' registered
// devices.  Delivery is strictly best-effort: expired tokens, gone
// endpoints and provider hiccups are logged per endpoint and never fail
// a batch, let alone the business operation that triggered it.
package notify

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// Message is one push notification.  Data is a small string map so the
// same payload fits both the Expo and the Web Push transports.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Notifier fans a message out to a user's registered endpoints.
type Notifier interface {
	NotifyUser(ctx context.Context, userID string, msg Message) error
}

// TokenSource resolves a user's registered push endpoints.
type TokenSource interface {
	ExpoTokensForUser(ctx context.Context, userID string) ([]string, error)
	WebPushForUser(ctx context.Context, userID string) ([]model.WebPushSubscription, error)
	DeleteWebPush(ctx context.Context, endpoint string) error
}

// PushNotifier sends over both supported transports.  Either sender may
// be nil when its transport is not configured.
type PushNotifier struct {
	Tokens  TokenSource
	Expo    *ExpoSender
	WebPush *WebPushSender
	Logger  *logrus.Logger
}

// NotifyUser looks up the user's registrations and sends on every
// transport.  Endpoint lookup failures are returned; per-endpoint send
// failures are handled inside the senders.
func (n *PushNotifier) NotifyUser(ctx context.Context, userID string, msg Message) error {
	if n.Expo != nil {
		tokens, err := n.Tokens.ExpoTokensForUser(ctx, userID)
		if err != nil {
			return err
		}
		n.Expo.Send(ctx, tokens, msg)
	}
	if n.WebPush != nil {
		subs, err := n.Tokens.WebPushForUser(ctx, userID)
		if err != nil {
			return err
		}
		n.WebPush.Send(ctx, subs, msg)
	}
	return nil
}
