// Package storage persists the search log. Result sets themselves are
// never persisted; the log only records what was asked and how the
// request degraded, and feeds the cache warmer.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/jobradar/jobfinder/pkg/config"
	"github.com/jobradar/jobfinder/pkg/model"
)

type Storage struct {
	db *sql.DB
}

func New(cfg config.DBConfig) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Storage{db: db}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) initSchema() error {
	query := `CREATE TABLE IF NOT EXISTS search_log (
		id SERIAL PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		position TEXT NOT NULL,
		experience TEXT,
		salary TEXT,
		job_nature TEXT,
		location TEXT,
		skills TEXT,
		result_count INTEGER,
		degraded BOOLEAN,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create search_log: %w", err)
	}
	return nil
}

// LogSearch records one handled search.
func (s *Storage) LogSearch(ctx context.Context, req *model.SearchRequest, resultCount int, degraded bool) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO search_log
			(fingerprint, position, experience, salary, job_nature, location, skills, result_count, degraded)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.Fingerprint(), req.Position, req.Experience, req.Salary,
		req.JobNature, req.Location, req.Skills, resultCount, degraded,
	)
	if err != nil {
		return fmt.Errorf("insert search_log: %w", err)
	}
	return nil
}

// FrequentSearches returns the most-repeated requests of the recent
// window, used by the cache warmer to decide what to refresh.
func (s *Storage) FrequentSearches(ctx context.Context, window time.Duration, limit int) ([]model.SearchRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, experience, salary, job_nature, location, skills
		 FROM search_log
		 WHERE created_at > $1
		 GROUP BY position, experience, salary, job_nature, location, skills
		 ORDER BY COUNT(*) DESC
		 LIMIT $2`,
		time.Now().Add(-window), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query search_log: %w", err)
	}
	defer rows.Close()

	var reqs []model.SearchRequest
	for rows.Next() {
		var r model.SearchRequest
		if err := rows.Scan(&r.Position, &r.Experience, &r.Salary, &r.JobNature, &r.Location, &r.Skills); err != nil {
			return nil, fmt.Errorf("scan search_log: %w", err)
		}
		reqs = append(reqs, r)
	}
	return reqs, rows.Err()
}
