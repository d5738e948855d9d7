// Package store persists reading-plan definitions, per-user plan progress,
// and user preferences in a single settings database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"time"

	brerrors "github.com/bburd/BibleRef/core/errors"
	"github.com/bburd/BibleRef/core/plan"
	"github.com/bburd/BibleRef/core/sqlite"
	"github.com/bburd/BibleRef/internal/cache"
)

// defCacheTTL bounds how stale a cached plan definition may get. Definitions
// only change when a seed file is reloaded, so a short TTL is plenty.
const defCacheTTL = 5 * time.Minute

// Store is the settings database handle. Safe for concurrent use.
type Store struct {
	db   *sql.DB
	defs *cache.TTLCache[string, *PlanDef]
	now  func() time.Time
}

// Open opens (creating if needed) the settings database at path and applies
// the schema.
func Open(path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, brerrors.Wrapf(err, "open settings db %s", path)
	}
	s := &Store{
		db:   db,
		defs: cache.New[string, *PlanDef](defCacheTTL),
		now:  time.Now,
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS plan_defs (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT,
		days TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_plans (
		user_id TEXT PRIMARY KEY,
		plan_id TEXT NOT NULL,
		day INTEGER NOT NULL DEFAULT 0,
		streak INTEGER NOT NULL DEFAULT 0,
		last_completed TEXT,
		last_notified TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS plan_log (
		user_id TEXT,
		plan_id TEXT,
		day INTEGER,
		completed_at TEXT,
		PRIMARY KEY(user_id, plan_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS user_prefs (
		user_id TEXT PRIMARY KEY,
		translation TEXT NOT NULL CHECK(translation IN ('asv','kjv')),
		updated_at INTEGER
	)`,
	// Older rows stored Strong's-tagged codes; collapse them to the plain
	// edition.
	`UPDATE user_prefs SET translation = CASE translation
		WHEN 'asvs' THEN 'asv'
		WHEN 'kjv_strongs' THEN 'kjv'
		ELSE translation END
	WHERE translation IN ('asvs','kjv_strongs')`,
}

func (s *Store) migrate() error {
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return brerrors.Wrap(err, "migrate settings db")
		}
	}
	return nil
}

func (s *Store) today() string {
	return s.now().UTC().Format("2006-01-02")
}

func (s *Store) yesterday() string {
	return s.now().UTC().Add(-24 * time.Hour).Format("2006-01-02")
}

// PlanDef is one reading-plan definition with its normalized days.
type PlanDef struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Days        []plan.PlanDay `json:"days"`
}

// UserPlan is one user's progress through their active plan.
type UserPlan struct {
	UserID        string `json:"user_id"`
	PlanID        string `json:"plan_id"`
	Day           int    `json:"day"`
	Streak        int    `json:"streak"`
	LastCompleted string `json:"last_completed,omitempty"`
	LastNotified  string `json:"last_notified,omitempty"`
}

// Progress is the result of completing one plan day.
type Progress struct {
	Plan        *PlanDef
	NextReading *plan.PlanDay // nil when the plan is finished
	NextDay     int
	Streak      int
}

// seedDef is the raw shape of one entry in a plan seed file.
type seedDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Days        any    `json:"days"`
}

// SeedPlans loads plan definitions from a JSON file, normalizing each day
// before storing. Already-seeded ids are left untouched; a missing seed file
// is not an error.
func (s *Store) SeedPlans(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return brerrors.Wrapf(err, "read plan seed %s", path)
	}
	var defs []seedDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return brerrors.Wrapf(err, "parse plan seed %s", path)
	}

	for _, def := range defs {
		days := plan.NormalizeDays(def.Days)
		encoded, err := json.Marshal(days)
		if err != nil {
			return brerrors.Wrapf(err, "encode days for plan %s", def.ID)
		}
		_, err = s.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO plan_defs (id, name, description, days) VALUES (?, ?, ?, ?)",
			def.ID, def.Name, def.Description, string(encoded))
		if err != nil {
			return brerrors.Wrapf(err, "seed plan %s", def.ID)
		}
	}
	s.defs.Invalidate()
	return nil
}

// ListPlanDefs returns every plan definition.
func (s *Store) ListPlanDefs(ctx context.Context) ([]PlanDef, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, days FROM plan_defs ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []PlanDef{}
	for rows.Next() {
		def, err := scanPlanDef(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *def)
	}
	return out, rows.Err()
}

// GetPlanDef returns one plan definition by id.
func (s *Store) GetPlanDef(ctx context.Context, id string) (*PlanDef, error) {
	if def, ok := s.defs.Get(id); ok {
		return def, nil
	}
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, days FROM plan_defs WHERE id = ?", id)
	def, err := scanPlanDef(row)
	if err == sql.ErrNoRows {
		return nil, brerrors.NewNotFound("plan", id)
	}
	if err == nil {
		s.defs.Set(id, def)
	}
	return def, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPlanDef(row scanner) (*PlanDef, error) {
	var def PlanDef
	var days string
	if err := row.Scan(&def.ID, &def.Name, &def.Description, &days); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(days), &def.Days); err != nil {
		return nil, brerrors.Wrapf(err, "decode days for plan %s", def.ID)
	}
	return &def, nil
}

// StartPlan puts the user at day zero of a plan, replacing any plan they
// already had.
func (s *Store) StartPlan(ctx context.Context, userID, planID string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_plans (user_id, plan_id, day, streak, last_completed, last_notified)
		 VALUES (?, ?, 0, 0, NULL, NULL)
		 ON CONFLICT(user_id) DO UPDATE SET
			plan_id=excluded.plan_id, day=0, streak=0, last_completed=NULL, last_notified=NULL`,
		userID, planID)
	return err
}

// GetUserPlan returns the user's active plan progress, or nil when they have
// none.
func (s *Store) GetUserPlan(ctx context.Context, userID string) (*UserPlan, error) {
	var up UserPlan
	var lastCompleted, lastNotified sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, plan_id, day, streak, last_completed, last_notified FROM user_plans WHERE user_id = ?",
		userID).Scan(&up.UserID, &up.PlanID, &up.Day, &up.Streak, &lastCompleted, &lastNotified)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	up.LastCompleted = lastCompleted.String
	up.LastNotified = lastNotified.String
	return &up, nil
}

// StopPlan removes the user's active plan, reporting whether one existed.
func (s *Store) StopPlan(ctx context.Context, userID string) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM user_plans WHERE user_id = ?", userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// CompleteDay marks the user's current plan day done, logs it, advances the
// day pointer, and updates the streak: consecutive-day completions increment
// it, anything else resets it to one.
func (s *Store) CompleteDay(ctx context.Context, userID string) (*Progress, error) {
	up, err := s.GetUserPlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	if up == nil {
		return nil, brerrors.NewNotFound("active plan", userID)
	}
	def, err := s.GetPlanDef(ctx, up.PlanID)
	if err != nil {
		return nil, err
	}
	if up.Day >= len(def.Days) {
		return nil, brerrors.Wrapf(brerrors.ErrInvalidInput, "plan %s already completed", up.PlanID)
	}

	todayStr := s.today()
	streak := 1
	if up.LastCompleted == s.yesterday() {
		streak = up.Streak + 1
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO plan_log (user_id, plan_id, day, completed_at) VALUES (?, ?, ?, ?)",
		userID, up.PlanID, up.Day, todayStr)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx,
		"UPDATE user_plans SET day = ?, streak = ?, last_completed = ? WHERE user_id = ?",
		up.Day+1, streak, todayStr, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	progress := &Progress{Plan: def, NextDay: up.Day + 1, Streak: streak}
	if progress.NextDay < len(def.Days) {
		progress.NextReading = &def.Days[progress.NextDay]
	}
	return progress, nil
}

// ListUserPlans returns every user's plan progress, for reminder sweeps.
func (s *Store) ListUserPlans(ctx context.Context) ([]UserPlan, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id, plan_id, day, streak, last_completed, last_notified FROM user_plans")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []UserPlan{}
	for rows.Next() {
		var up UserPlan
		var lastCompleted, lastNotified sql.NullString
		if err := rows.Scan(&up.UserID, &up.PlanID, &up.Day, &up.Streak, &lastCompleted, &lastNotified); err != nil {
			return nil, err
		}
		up.LastCompleted = lastCompleted.String
		up.LastNotified = lastNotified.String
		out = append(out, up)
	}
	return out, rows.Err()
}

// UpdateLastNotified records when a reminder was last sent to the user.
func (s *Store) UpdateLastNotified(ctx context.Context, userID, date string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE user_plans SET last_notified = ? WHERE user_id = ?", date, userID)
	return err
}

// ResetStreak zeroes the user's streak, used when a reminder sweep finds a
// missed day.
func (s *Store) ResetStreak(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE user_plans SET streak = 0 WHERE user_id = ?", userID)
	return err
}
