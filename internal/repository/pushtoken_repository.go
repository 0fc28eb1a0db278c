package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// PushTokenRepo stores device push registrations. Expo tokens and Web
// Push subscriptions live in separate tables but are registered and
// resolved the same way: upsert on the opaque endpoint, list per user.
type PushTokenRepo struct {
	db *sql.DB
}

// NewPushTokenRepo returns a new PushTokenRepo bound to the given database.
func NewPushTokenRepo(db *sql.DB) *PushTokenRepo { return &PushTokenRepo{db: db} }

// RegisterExpoToken records an Expo push token for a user. Re-registering
// the same token moves it to the new user, which is what happens when a
// device changes hands or a user logs in again.
func (r *PushTokenRepo) RegisterExpoToken(ctx context.Context, userID, token string) error {
	const q = `INSERT INTO push_tokens (user_id, expo_push_token) VALUES (?, ?)
			   ON DUPLICATE KEY UPDATE user_id = VALUES(user_id)`
	_, err := r.db.ExecContext(ctx, q, userID, token)
	return err
}

// ExpoTokensForUser returns all Expo tokens registered by one user.
func (r *PushTokenRepo) ExpoTokensForUser(ctx context.Context, userID string) ([]string, error) {
	const q = `SELECT expo_push_token FROM push_tokens WHERE user_id = ?`
	return r.stringColumn(ctx, q, userID)
}

// ExpoTokensForUsers returns all Expo tokens registered by any of the
// given users in one query.
func (r *PushTokenRepo) ExpoTokensForUsers(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	query := `SELECT expo_push_token FROM push_tokens WHERE user_id IN (` +
		strings.TrimSuffix(strings.Repeat("?,", len(userIDs)), ",") + `)`
	args := make([]interface{}, 0, len(userIDs))
	for _, id := range userIDs {
		args = append(args, id)
	}
	return r.stringColumn(ctx, query, args...)
}

// RegisterWebPush records a browser push subscription for a user,
// overwriting the keys when the endpoint is already known.
func (r *PushTokenRepo) RegisterWebPush(ctx context.Context, sub model.WebPushSubscription) error {
	const q = `INSERT INTO web_push_subscriptions (user_id, endpoint, p256dh, auth) VALUES (?, ?, ?, ?)
			   ON DUPLICATE KEY UPDATE user_id = VALUES(user_id), p256dh = VALUES(p256dh), auth = VALUES(auth)`
	_, err := r.db.ExecContext(ctx, q, sub.UserID, sub.Endpoint, sub.P256dh, sub.Auth)
	return err
}

// WebPushForUser returns all browser subscriptions registered by one user.
func (r *PushTokenRepo) WebPushForUser(ctx context.Context, userID string) ([]model.WebPushSubscription, error) {
	const q = `SELECT id, user_id, endpoint, p256dh, auth, created_at
			   FROM web_push_subscriptions WHERE user_id = ?`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.WebPushSubscription
	for rows.Next() {
		var s model.WebPushSubscription
		if err := rows.Scan(&s.ID, &s.UserID, &s.Endpoint, &s.P256dh, &s.Auth, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DeleteWebPush removes a subscription by endpoint, used when a push
// service reports the endpoint gone.
func (r *PushTokenRepo) DeleteWebPush(ctx context.Context, endpoint string) error {
	const q = `DELETE FROM web_push_subscriptions WHERE endpoint = ?`
	_, err := r.db.ExecContext(ctx, q, endpoint)
	return err
}

func (r *PushTokenRepo) stringColumn(ctx context.Context, query string, args ...interface{}) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		if v != "" {
			out = append(out, v)
		}
	}
	return out, rows.Err()
}
