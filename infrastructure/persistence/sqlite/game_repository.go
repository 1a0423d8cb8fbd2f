// Package sqlite stores games in a local SQLite file, for development and
// offline authoring.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dailytens/application/ports"
	"dailytens/domain/game"
	pkgerrors "dailytens/pkg/errors"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// GameRepository keeps one row per date; answers are stored as a JSON array
// so their order survives the round trip.
type GameRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewGameRepository opens (or creates) the database at path
func NewGameRepository(path string, logger *zap.Logger) (*GameRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serialises writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)

	repo := &GameRepository{db: db, logger: logger}
	if err := repo.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return repo, nil
}

func (r *GameRepository) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		pk TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		correct_answers TEXT NOT NULL
	);
	`
	_, err := r.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (r *GameRepository) Close() error {
	return r.db.Close()
}

// Get returns the game stored for date
func (r *GameRepository) Get(ctx context.Context, date string) (*game.Record, bool, error) {
	var (
		title   string
		answers string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT title, correct_answers FROM games WHERE pk = ?`, date,
	).Scan(&title, &answers)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, pkgerrors.NewDatabaseError("get_game", err)
	}

	rec := &game.Record{Date: date, Title: title}
	if err := json.Unmarshal([]byte(answers), &rec.CorrectAnswers); err != nil {
		return nil, false, pkgerrors.NewDatabaseError("decode_answers", err)
	}
	return rec, true, nil
}

// CreateIfAbsent inserts rec unless the date already has a row
func (r *GameRepository) CreateIfAbsent(ctx context.Context, rec *game.Record) error {
	answers, err := json.Marshal(rec.CorrectAnswers)
	if err != nil {
		return pkgerrors.NewDatabaseError("encode_answers", err)
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO games (pk, title, correct_answers) VALUES (?, ?, ?) ON CONFLICT(pk) DO NOTHING`,
		rec.Date, rec.Title, string(answers),
	)
	if err != nil {
		return pkgerrors.NewDatabaseError("create_game", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return pkgerrors.NewDatabaseError("create_game", err)
	}
	if n == 0 {
		r.logger.Debug("Game already stored", zap.String("date", rec.Date))
		return ports.ErrGameExists
	}
	return nil
}

// ScanDatesAtOrBefore lists stored dates <= date in ascending order
func (r *GameRepository) ScanDatesAtOrBefore(ctx context.Context, date string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT pk FROM games WHERE pk <= ? ORDER BY pk ASC`, date,
	)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("scan_dates", err)
	}
	defer rows.Close()

	var dates []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, pkgerrors.NewDatabaseError("scan_dates", err)
		}
		dates = append(dates, d)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.NewDatabaseError("scan_dates", err)
	}
	return dates, nil
}

var _ ports.GameRepository = (*GameRepository)(nil)
