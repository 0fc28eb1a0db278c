package repository

import (
	"context"
	"database/sql"
)

// ConfigurationRepo reads the key/value pricing configuration table. The
// table is externally managed and read-only here. A failed read is
// propagated to the caller; missing keys are not an error at this layer,
// numeric validation belongs to the billing package.
type ConfigurationRepo struct {
	db *sql.DB
}

// NewConfigurationRepo returns a new ConfigurationRepo bound to the given database.
func NewConfigurationRepo(db *sql.DB) *ConfigurationRepo { return &ConfigurationRepo{db: db} }

// LoadAll fetches every configuration row into a key-to-number map.
func (r *ConfigurationRepo) LoadAll(ctx context.Context) (map[string]float64, error) {
	const q = `SELECT cfg_key, value_numeric FROM configuration`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]float64)
	for rows.Next() {
		var (
			key   string
			value sql.NullFloat64
		)
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if value.Valid {
			out[key] = value.Float64
		}
	}
	return out, rows.Err()
}
