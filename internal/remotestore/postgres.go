package remotestore

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/panostzan/0500/internal"
)

type PostgresStore struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStore(dsn string, logger internal.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	return &PostgresStore{pool: pool, logger: logger}, nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}

// --- GoalStore ---

func (p *PostgresStore) ListGoals(ctx context.Context, userID string) ([]GoalRow, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, category, text, checked, sort_order FROM goals WHERE user_id = $1 ORDER BY category, sort_order`,
		userID)
	if err != nil {
		p.logger.Errorf("failed to query goals: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []GoalRow
	for rows.Next() {
		var g GoalRow
		if err := rows.Scan(&g.ID, &g.UserID, &g.Category, &g.Text, &g.Checked, &g.SortOrder); err != nil {
			p.logger.Errorf("failed to scan goal: %v", err)
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteGoals(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM goals WHERE user_id = $1`, userID)
	if err != nil {
		p.logger.Errorf("failed to delete goals: %v", err)
	}
	return err
}

func (p *PostgresStore) InsertGoals(ctx context.Context, rows []GoalRow) error {
	for _, g := range rows {
		if g.ID == "" {
			g.ID = uuid.NewString()
		}
		_, err := p.pool.Exec(ctx,
			`INSERT INTO goals (id, user_id, category, text, checked, sort_order) VALUES ($1, $2, $3, $4, $5, $6)`,
			g.ID, g.UserID, g.Category, g.Text, g.Checked, g.SortOrder)
		if err != nil {
			p.logger.Errorf("failed to insert goal: %v", err)
			return err
		}
	}
	return nil
}

// --- ScheduleStore ---

func (p *PostgresStore) ListSchedule(ctx context.Context, userID string) ([]ScheduleRow, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, user_id, time, activity, sort_order FROM schedule_entries WHERE user_id = $1 ORDER BY sort_order`,
		userID)
	if err != nil {
		p.logger.Errorf("failed to query schedule: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []ScheduleRow
	for rows.Next() {
		var e ScheduleRow
		if err := rows.Scan(&e.ID, &e.UserID, &e.Time, &e.Activity, &e.SortOrder); err != nil {
			p.logger.Errorf("failed to scan schedule entry: %v", err)
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (p *PostgresStore) DeleteSchedule(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM schedule_entries WHERE user_id = $1`, userID)
	if err != nil {
		p.logger.Errorf("failed to delete schedule: %v", err)
	}
	return err
}

func (p *PostgresStore) InsertSchedule(ctx context.Context, rows []ScheduleRow) error {
	for _, e := range rows {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		_, err := p.pool.Exec(ctx,
			`INSERT INTO schedule_entries (id, user_id, time, activity, sort_order) VALUES ($1, $2, $3, $4, $5)`,
			e.ID, e.UserID, e.Time, e.Activity, e.SortOrder)
		if err != nil {
			p.logger.Errorf("failed to insert schedule entry: %v", err)
			return err
		}
	}
	return nil
}

// --- SleepStore ---

func (p *PostgresStore) ListSleepLog(ctx context.Context, userID string) ([]SleepRow, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT user_id, date, bedtime, wake_time, hours FROM sleep_log WHERE user_id = $1 ORDER BY date`,
		userID)
	if err != nil {
		p.logger.Errorf("failed to query sleep log: %v", err)
		return nil, err
	}
	defer rows.Close()

	var out []SleepRow
	for rows.Next() {
		var r SleepRow
		if err := rows.Scan(&r.UserID, &r.Date, &r.Bedtime, &r.WakeTime, &r.Hours); err != nil {
			p.logger.Errorf("failed to scan sleep row: %v", err)
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (p *PostgresStore) UpsertSleepEntries(ctx context.Context, rows []SleepRow) error {
	for _, r := range rows {
		_, err := p.pool.Exec(ctx,
			`INSERT INTO sleep_log (user_id, date, bedtime, wake_time, hours) VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (user_id, date) DO UPDATE SET bedtime = $3, wake_time = $4, hours = $5`,
			r.UserID, r.Date, r.Bedtime, r.WakeTime, r.Hours)
		if err != nil {
			p.logger.Errorf("failed to upsert sleep row: %v", err)
			return err
		}
	}
	return nil
}

func (p *PostgresStore) DeleteSleepEntry(ctx context.Context, userID, date string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM sleep_log WHERE user_id = $1 AND date = $2`, userID, date)
	if err != nil {
		p.logger.Errorf("failed to delete sleep row: %v", err)
	}
	return err
}

// --- ProfileStore ---

func (p *PostgresStore) GetProfile(ctx context.Context, userID string) (*ProfileRow, error) {
	row := p.pool.QueryRow(ctx,
		`SELECT id, wake_time, target_sleep_hours, updated_at FROM profiles WHERE id = $1`, userID)
	var pr ProfileRow
	if err := row.Scan(&pr.ID, &pr.WakeTime, &pr.TargetSleepHours, &pr.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		p.logger.Errorf("failed to query profile: %v", err)
		return nil, err
	}
	return &pr, nil
}

func (p *PostgresStore) UpdateProfile(ctx context.Context, row *ProfileRow) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO profiles (id, wake_time, target_sleep_hours, updated_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO UPDATE SET wake_time = $2, target_sleep_hours = $3, updated_at = $4`,
		row.ID, row.WakeTime, row.TargetSleepHours, time.Now())
	if err != nil {
		p.logger.Errorf("failed to update profile: %v", err)
	}
	return err
}

// --- NotesStore ---

func (p *PostgresStore) GetNotes(ctx context.Context, userID string) (string, error) {
	row := p.pool.QueryRow(ctx, `SELECT content FROM notes WHERE user_id = $1`, userID)
	var content string
	if err := row.Scan(&content); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		p.logger.Errorf("failed to query notes: %v", err)
		return "", err
	}
	return content, nil
}

func (p *PostgresStore) UpdateNotes(ctx context.Context, userID, content string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO notes (user_id, content, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (user_id) DO UPDATE SET content = $2, updated_at = $3`,
		userID, content, time.Now())
	if err != nil {
		p.logger.Errorf("failed to update notes: %v", err)
	}
	return err
}

var _ Store = (*PostgresStore)(nil)
