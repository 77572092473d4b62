package repository

import (
	"database/sql"

	"github.com/lib/pq"
)

// PreferenceRepository persists interest profiles and read history so a
// returning session can warm-start its preference store. Sessions remain
// process-local by default; this is only wired when a database is
// configured.
type PreferenceRepository struct {
	db *sql.DB
}

func NewPreferenceRepository(db *sql.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

func (r *PreferenceRepository) SaveProfile(sessionKey string, interests []string) error {
	_, err := r.db.Exec(`
		INSERT INTO preference_profile(session_key, interests, updated_at)
		VALUES($1, $2, NOW())
		ON CONFLICT (session_key) DO UPDATE
		SET interests = EXCLUDED.interests, updated_at = NOW()
	`, sessionKey, pq.Array(interests))
	return err
}

func (r *PreferenceRepository) LoadProfile(sessionKey string) ([]string, error) {
	var interests []string
	err := r.db.QueryRow(`
		SELECT interests FROM preference_profile
		WHERE session_key = $1
	`, sessionKey).Scan(pq.Array(&interests))

	if err == sql.ErrNoRows {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return interests, nil
}

func (r *PreferenceRepository) AppendRead(sessionKey, articleID string) error {
	_, err := r.db.Exec(`
		INSERT INTO read_history(session_key, article_id)
		VALUES($1, $2)
		ON CONFLICT (session_key, article_id) DO NOTHING
	`, sessionKey, articleID)
	return err
}

// LoadReadHistory returns article ids most recent first.
func (r *PreferenceRepository) LoadReadHistory(sessionKey string, limit int) ([]string, error) {
	rows, err := r.db.Query(`
		SELECT article_id FROM read_history
		WHERE session_key = $1
		ORDER BY read_at DESC
		LIMIT $2
	`, sessionKey, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}
