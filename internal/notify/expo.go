package notify

import (
	"context"

	expo "github.com/oliveroneill/exponent-server-sdk-golang/sdk"
	"github.com/sirupsen/logrus"
)

// ExpoSender delivers messages through Expo's push service.  Tokens that
// fail Expo's format check are skipped up front; per-ticket rejections
// from the service are logged and otherwise ignored.
type ExpoSender struct {
	Client *expo.PushClient
	Logger *logrus.Logger
}

// NewExpoSender returns a sender backed by the default Expo endpoint.
func NewExpoSender(logger *logrus.Logger) *ExpoSender {
	return &ExpoSender{Client: expo.NewPushClient(nil), Logger: logger}
}

// Send pushes one message to every valid token.  A batch with no valid
// tokens is a no-op.
func (s *ExpoSender) Send(ctx context.Context, tokens []string, msg Message) {
	valid := make([]expo.ExponentPushToken, 0, len(tokens))
	for _, raw := range tokens {
		token, err := expo.NewExponentPushToken(raw)
		if err != nil {
			s.Logger.WithFields(logrus.Fields{"token": raw}).Debug("skipping malformed expo token")
			continue
		}
		valid = append(valid, token)
	}
	for _, token := range valid {
		resp, err := s.Client.Publish(&expo.PushMessage{
			To:       []expo.ExponentPushToken{token},
			Title:    msg.Title,
			Body:     msg.Body,
			Data:     msg.Data,
			Sound:    "default",
			Priority: expo.DefaultPriority,
		})
		if err != nil {
			s.Logger.WithError(err).Warn("expo push send failed")
			continue
		}
		if err := resp.ValidateResponse(); err != nil {
			s.Logger.WithError(err).WithFields(logrus.Fields{"token": string(token)}).Warn("expo push rejected")
		}
	}
}
