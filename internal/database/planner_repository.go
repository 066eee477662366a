package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/corelord/corelord/internal/models"
)

// DatabasePool defines the interface for database pool operations.
// This interface allows for both real pool and mock pool implementations.
type DatabasePool interface {
	// QueryRow executes a query that is expected to return at most one row.
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	// Exec executes a query without returning any rows.
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	// Query executes a query that returns rows.
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	// Begin starts a transaction.
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PlannerRepository handles database operations for planner preferences,
// availability windows and per-break overrides.
type PlannerRepository struct {
	pool DatabasePool
}

// NewPlannerRepository creates a new planner repository.
func NewPlannerRepository(pool DatabasePool) *PlannerRepository {
	return &PlannerRepository{
		pool: pool,
	}
}

// GetPreferences returns the stored preference profile for a user. A user
// with no stored profile gets the planner defaults.
func (r *PlannerRepository) GetPreferences(ctx context.Context, userID string) (*models.PreferenceProfile, error) {
	query := `
		SELECT user_id, min_wave_m, max_wave_m, min_period_s, max_wind_kt,
		       regions, horizon_days, time_of_day, updated_at
		FROM preference_profiles
		WHERE user_id = $1
	`

	var p models.PreferenceProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.MinWave,
		&p.MaxWave,
		&p.MinPeriod,
		&p.MaxWind,
		&p.Regions,
		&p.HorizonDays,
		&p.TimeOfDay,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			defaults := models.DefaultPreferences()
			defaults.UserID = userID
			return &defaults, nil
		}
		return nil, fmt.Errorf("failed to get preference profile: %w", err)
	}

	return &p, nil
}

// UpsertPreferences stores a user's preference profile, replacing any
// existing one.
func (r *PlannerRepository) UpsertPreferences(ctx context.Context, p *models.PreferenceProfile) error {
	query := `
		INSERT INTO preference_profiles
			(user_id, min_wave_m, max_wave_m, min_period_s, max_wind_kt, regions, horizon_days, time_of_day)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id)
		DO UPDATE SET
			min_wave_m = EXCLUDED.min_wave_m,
			max_wave_m = EXCLUDED.max_wave_m,
			min_period_s = EXCLUDED.min_period_s,
			max_wind_kt = EXCLUDED.max_wind_kt,
			regions = EXCLUDED.regions,
			horizon_days = EXCLUDED.horizon_days,
			time_of_day = EXCLUDED.time_of_day,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.UserID, p.MinWave, p.MaxWave, p.MinPeriod, p.MaxWind,
		p.Regions, p.HorizonDays, p.TimeOfDay,
	).Scan(&p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert preference profile: %w", err)
	}

	return nil
}

// ListAvailability returns a user's availability windows ordered by day
// and start hour.
func (r *PlannerRepository) ListAvailability(ctx context.Context, userID string) ([]models.AvailabilityWindow, error) {
	query := `
		SELECT user_id, day_of_week, start_hour, duration_hours
		FROM availability_windows
		WHERE user_id = $1
		ORDER BY day_of_week, start_hour
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability windows: %w", err)
	}
	defer rows.Close()

	var windows []models.AvailabilityWindow
	for rows.Next() {
		var w models.AvailabilityWindow
		if err := rows.Scan(&w.UserID, &w.DayOfWeek, &w.StartHour, &w.DurationHours); err != nil {
			return nil, fmt.Errorf("failed to scan availability window: %w", err)
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating availability windows: %w", err)
	}

	return windows, nil
}

// ReplaceAvailability replaces the user's entire availability schedule in
// one transaction.
func (r *PlannerRepository) ReplaceAvailability(ctx context.Context, userID string, windows []models.AvailabilityWindow) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM availability_windows WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear availability windows: %w", err)
	}

	insert := `
		INSERT INTO availability_windows (user_id, day_of_week, start_hour, duration_hours)
		VALUES ($1, $2, $3, $4)
	`
	for _, w := range windows {
		if _, err := tx.Exec(ctx, insert, userID, w.DayOfWeek, w.StartHour, w.DurationHours); err != nil {
			return fmt.Errorf("failed to insert availability window: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit availability windows: %w", err)
	}

	return nil
}

// GetBreakPreference returns the per-break override for a user, or nil
// when none is stored.
func (r *PlannerRepository) GetBreakPreference(ctx context.Context, userID string, breakID int) (*models.BreakPreference, error) {
	query := `
		SELECT user_id, break_id, min_height_m, max_height_m, min_period_s, max_period_s,
		       max_wind_kt, min_tide_m, max_tide_m, swell_dirs, wind_dirs, updated_at
		FROM break_preferences
		WHERE user_id = $1 AND break_id = $2
	`

	var bp models.BreakPreference
	err := r.pool.QueryRow(ctx, query, userID, breakID).Scan(
		&bp.UserID,
		&bp.BreakID,
		&bp.MinHeightM,
		&bp.MaxHeightM,
		&bp.MinPeriodS,
		&bp.MaxPeriodS,
		&bp.MaxWindKt,
		&bp.MinTideM,
		&bp.MaxTideM,
		&bp.AllowedSwellDirs,
		&bp.AllowedWindDirs,
		&bp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get break preference: %w", err)
	}

	return &bp, nil
}

// ListBreakPreferences returns all per-break overrides for a user keyed by
// break id.
func (r *PlannerRepository) ListBreakPreferences(ctx context.Context, userID string) (map[int]models.BreakPreference, error) {
	query := `
		SELECT user_id, break_id, min_height_m, max_height_m, min_period_s, max_period_s,
		       max_wind_kt, min_tide_m, max_tide_m, swell_dirs, wind_dirs, updated_at
		FROM break_preferences
		WHERE user_id = $1
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list break preferences: %w", err)
	}
	defer rows.Close()

	prefs := make(map[int]models.BreakPreference)
	for rows.Next() {
		var bp models.BreakPreference
		err := rows.Scan(
			&bp.UserID,
			&bp.BreakID,
			&bp.MinHeightM,
			&bp.MaxHeightM,
			&bp.MinPeriodS,
			&bp.MaxPeriodS,
			&bp.MaxWindKt,
			&bp.MinTideM,
			&bp.MaxTideM,
			&bp.AllowedSwellDirs,
			&bp.AllowedWindDirs,
			&bp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan break preference: %w", err)
		}
		prefs[bp.BreakID] = bp
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating break preferences: %w", err)
	}

	return prefs, nil
}

// UpsertBreakPreference stores a per-break override, replacing any
// existing one for the same user and break.
func (r *PlannerRepository) UpsertBreakPreference(ctx context.Context, bp *models.BreakPreference) error {
	query := `
		INSERT INTO break_preferences
			(user_id, break_id, min_height_m, max_height_m, min_period_s, max_period_s,
			 max_wind_kt, min_tide_m, max_tide_m, swell_dirs, wind_dirs)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id, break_id)
		DO UPDATE SET
			min_height_m = EXCLUDED.min_height_m,
			max_height_m = EXCLUDED.max_height_m,
			min_period_s = EXCLUDED.min_period_s,
			max_period_s = EXCLUDED.max_period_s,
			max_wind_kt = EXCLUDED.max_wind_kt,
			min_tide_m = EXCLUDED.min_tide_m,
			max_tide_m = EXCLUDED.max_tide_m,
			swell_dirs = EXCLUDED.swell_dirs,
			wind_dirs = EXCLUDED.wind_dirs,
			updated_at = CURRENT_TIMESTAMP
		RETURNING updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		bp.UserID, bp.BreakID, bp.MinHeightM, bp.MaxHeightM, bp.MinPeriodS, bp.MaxPeriodS,
		bp.MaxWindKt, bp.MinTideM, bp.MaxTideM, bp.AllowedSwellDirs, bp.AllowedWindDirs,
	).Scan(&bp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert break preference: %w", err)
	}

	return nil
}

// DeleteBreakPreference removes a per-break override.
func (r *PlannerRepository) DeleteBreakPreference(ctx context.Context, userID string, breakID int) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM break_preferences WHERE user_id = $1 AND break_id = $2`,
		userID, breakID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete break preference: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("no break preference stored for break %d", breakID)
	}

	return nil
}

// ListAlertSubscribers returns users who enabled session alerts and have
// a Telegram chat linked.
func (r *PlannerRepository) ListAlertSubscribers(ctx context.Context) ([]models.User, error) {
	query := `
		SELECT id, email, name, telegram_chat_id
		FROM users
		WHERE alerts_enabled = true AND telegram_chat_id IS NOT NULL
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert subscribers: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Name, &u.TelegramChatID); err != nil {
			return nil, fmt.Errorf("failed to scan alert subscriber: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating alert subscribers: %w", err)
	}

	return users, nil
}
