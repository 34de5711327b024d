package rowsource

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"autopost/poster-go/internal/utils"
)

// PostgresSource keeps the queue in a single table with one text column per
// canonical field plus an explicit position. It honors the same full-snapshot
// contract as the CSV source: Load reads every row ordered by position and
// Overwrite replaces the whole set in one transaction.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// Column order here mirrors queue.CanonicalHeader; position keeps insertion
// order stable across rewrites.
var pgColumns = []struct {
	column string
	key    string
}{
	{"tanggal", "Tanggal"},
	{"judul", "Judul"},
	{"teks", "Teks"},
	{"hashtag", "Hashtag"},
	{"link_affiliate", "LinkAffiliate"},
	{"bg", "BG"},
	{"music", "Music"},
	{"status", "Status"},
	{"jam_wib", "JamWIB"},
}

func NewPostgresSource(ctx context.Context, connString string) (*PostgresSource, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	return &PostgresSource{pool: pool}, nil
}

func (s *PostgresSource) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresSource) Load(ctx context.Context) ([]Row, error) {
	utils.Debug("pg load queue")
	rows, err := s.pool.Query(ctx, `
		SELECT tanggal, judul, teks, hashtag, link_affiliate, bg, music, status, jam_wib
		FROM queue_rows
		ORDER BY position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Row
	for rows.Next() {
		values := make([]string, len(pgColumns))
		targets := make([]any, len(pgColumns))
		for i := range values {
			targets[i] = &values[i]
		}
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		row := Row{}
		for i, col := range pgColumns {
			row[col.key] = values[i]
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (s *PostgresSource) Overwrite(ctx context.Context, header []string, queueRows []Row) error {
	utils.Debug("pg overwrite queue", "rows", len(queueRows))
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM queue_rows`); err != nil {
		return err
	}

	insert := `
		INSERT INTO queue_rows (position, tanggal, judul, teks, hashtag, link_affiliate, bg, music, status, jam_wib)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for position, row := range queueRows {
		args := make([]any, 0, len(pgColumns)+1)
		args = append(args, position)
		for _, col := range pgColumns {
			args = append(args, row[col.key])
		}
		if _, err := tx.Exec(ctx, insert, args...); err != nil {
			return fmt.Errorf("insert queue row %d: %w", position, err)
		}
	}

	return tx.Commit(ctx)
}
