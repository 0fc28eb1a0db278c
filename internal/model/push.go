package model

import "time"

// PushToken is an Expo push registration for a user's device.  Tokens are
// opaque; expired or unknown tokens are tolerated at send time.
type PushToken struct {
	ID            uint64    // push_tokens.id
	UserID        string    // push_tokens.user_id
	ExpoPushToken string    // push_tokens.expo_push_token
	CreatedAt     time.Time // push_tokens.created_at
}

// WebPushSubscription is a browser push registration.  Endpoint plus the
// p256dh/auth key pair are everything the Web Push protocol needs.
type WebPushSubscription struct {
	ID        uint64    // web_push_subscriptions.id
	UserID    string    // web_push_subscriptions.user_id
	Endpoint  string    // web_push_subscriptions.endpoint
	P256dh    string    // web_push_subscriptions.p256dh
	Auth      string    // web_push_subscriptions.auth
	CreatedAt time.Time // web_push_subscriptions.created_at
}

// Availability marks whether a guide can be scheduled on a date.  One row
// per guide and date, upserted by the availability endpoint.
type Availability struct {
	ID          uint64    // availability.id
	GuideID     uint64    // availability.guide_id
	Date        time.Time // availability.date
	IsAvailable bool      // availability.is_available
	CreatedAt   time.Time // availability.created_at
}
