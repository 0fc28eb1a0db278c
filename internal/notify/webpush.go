package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// WebPushSender delivers messages to browser subscriptions using the Web
// Push protocol with VAPID authentication.  Endpoints reported gone by
// the push service are unregistered so they are not retried forever.
type WebPushSender struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subscriber      string
	Tokens          TokenSource
	Logger          *logrus.Logger
}

// NewWebPushSenderFromEnv builds a sender from VAPID_PUBLIC_KEY,
// VAPID_PRIVATE_KEY and VAPID_SUBJECT.  Returns nil when the keys are
// not configured, which disables the transport.
func NewWebPushSenderFromEnv(tokens TokenSource, logger *logrus.Logger) *WebPushSender {
	pub := os.Getenv("VAPID_PUBLIC_KEY")
	priv := os.Getenv("VAPID_PRIVATE_KEY")
	if pub == "" || priv == "" {
		return nil
	}
	sub := os.Getenv("VAPID_SUBJECT")
	if sub == "" {
		sub = "mailto:ops@example.com"
	}
	return &WebPushSender{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		Subscriber:      sub,
		Tokens:          tokens,
		Logger:          logger,
	}
}

// Send pushes one message to every subscription.  A 404 or 410 from the
// push service means the subscription is dead and gets removed.
func (s *WebPushSender) Send(ctx context.Context, subs []model.WebPushSubscription, msg Message) {
	payload, err := json.Marshal(map[string]interface{}{
		"title": msg.Title,
		"body":  msg.Body,
		"data":  msg.Data,
	})
	if err != nil {
		s.Logger.WithError(err).Warn("web push payload marshal failed")
		return
	}
	for _, sub := range subs {
		resp, err := webpush.SendNotification(payload, &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys:     webpush.Keys{P256dh: sub.P256dh, Auth: sub.Auth},
		}, &webpush.Options{
			Subscriber:      s.Subscriber,
			VAPIDPublicKey:  s.VAPIDPublicKey,
			VAPIDPrivateKey: s.VAPIDPrivateKey,
			TTL:             60,
		})
		if err != nil {
			s.Logger.WithError(err).Warn("web push send failed")
			continue
		}
		if resp != nil {
			if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
				if err := s.Tokens.DeleteWebPush(ctx, sub.Endpoint); err != nil {
					s.Logger.WithError(err).Warn("failed to remove dead web push endpoint")
				}
			}
			_ = resp.Body.Close()
		}
	}
}
