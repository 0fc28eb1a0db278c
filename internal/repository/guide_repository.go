package repository

import (
	"context"
	"database/sql"

	"github.com/chesterguides/guiding-backend/internal/model"
)

// GuideRepo provides read access to guides. Guide records are managed by
// the back office; this service only resolves them for billing, invoice
// rendering and notification routing.
type GuideRepo struct {
	db *sql.DB
}

// NewGuideRepo returns a new GuideRepo bound to the given database.
func NewGuideRepo(db *sql.DB) *GuideRepo { return &GuideRepo{db: db} }

const guideColumns = `id, user_id, name, bank_payee_name, bank_sort_code, bank_account_number, bank_email, created_at`

func scanGuide(row interface{ Scan(dest ...interface{}) error }) (model.Guide, error) {
	var (
		g                        model.Guide
		payee, sort, acct, email sql.NullString
	)
	err := row.Scan(&g.ID, &g.UserID, &g.Name, &payee, &sort, &acct, &email, &g.CreatedAt)
	if err != nil {
		return model.Guide{}, err
	}
	for _, pair := range []struct {
		src sql.NullString
		dst **string
	}{{payee, &g.BankPayeeName}, {sort, &g.BankSortCode}, {acct, &g.BankAccountNumber}, {email, &g.BankEmail}} {
		if pair.src.Valid {
			v := pair.src.String
			*pair.dst = &v
		}
	}
	return g, nil
}

// GetByID returns a single guide or ErrGuideNotFound.
func (r *GuideRepo) GetByID(ctx context.Context, guideID uint64) (*model.Guide, error) {
	const q = `SELECT ` + guideColumns + ` FROM guides WHERE id = ?`
	g, err := scanGuide(r.db.QueryRowContext(ctx, q, guideID))
	if err == sql.ErrNoRows {
		return nil, ErrGuideNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByUserID resolves the guide owning an identity-provider subject, as
// carried in the bearer token. Returns ErrGuideNotFound when the user is
// not a registered guide.
func (r *GuideRepo) GetByUserID(ctx context.Context, userID string) (*model.Guide, error) {
	const q = `SELECT ` + guideColumns + ` FROM guides WHERE user_id = ?`
	g, err := scanGuide(r.db.QueryRowContext(ctx, q, userID))
	if err == sql.ErrNoRows {
		return nil, ErrGuideNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}
