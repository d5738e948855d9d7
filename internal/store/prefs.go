package store

import (
	"context"
	"database/sql"

	brerrors "github.com/bburd/BibleRef/core/errors"
)

// normalizeTranslation collapses Strong's-tagged codes to their plain
// edition; preferences only ever store plain codes.
func normalizeTranslation(code string) string {
	switch code {
	case "asvs":
		return "asv"
	case "kjv_strongs":
		return "kjv"
	}
	return code
}

var allowedTranslations = map[string]bool{"asv": true, "kjv": true}

// GetUserTranslation returns the user's preferred translation code, or ""
// when they have none.
func (s *Store) GetUserTranslation(ctx context.Context, userID string) (string, error) {
	var code string
	err := s.db.QueryRowContext(ctx,
		"SELECT translation FROM user_prefs WHERE user_id = ?", userID).Scan(&code)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return normalizeTranslation(code), nil
}

// SetUserTranslation stores the user's preferred translation code.
func (s *Store) SetUserTranslation(ctx context.Context, userID, code string) error {
	normalized := normalizeTranslation(code)
	if !allowedTranslations[normalized] {
		return brerrors.Wrapf(brerrors.ErrInvalidInput, "translation %q", code)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_prefs (user_id, translation, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET translation=excluded.translation, updated_at=excluded.updated_at`,
		userID, normalized, s.now().UnixMilli())
	return err
}
