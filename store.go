package main

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/bmohaisen/report-portfolio/internal/pie"
)

const timestampLayout = "2006-01-02 15:04:05"

// Privacy-conscious visitor record
type VisitorMetric struct {
	ID        int       `json:"id"`
	HashedIP  string    `json:"hashed_ip"` // Hashed instead of raw IP for privacy
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

type PathCount struct {
	Path  string `json:"path"`
	Views int64  `json:"views"`
}

type AdminStats struct {
	TotalVisitors    int64           `json:"total_visitors"`
	UniqueVisitors   int64           `json:"unique_visitors"`
	VisitorsToday    int64           `json:"visitors_today"`
	VisitorsThisWeek int64           `json:"visitors_this_week"`
	TopPaths         []PathCount     `json:"top_paths"`
	RecentVisitors   []VisitorMetric `json:"recent_visitors"`
}

// Distribution turns the path breakdown into pie chart input.
func (s *AdminStats) Distribution() pie.Distribution {
	dist := make(pie.Distribution, 0, len(s.TopPaths))
	for _, p := range s.TopPaths {
		dist = append(dist, pie.Slice{Label: p.Path, Value: float64(p.Views)})
	}
	return dist
}

// visitStore keeps page views in SQLite with hashed client addresses.
type visitStore struct {
	db   *sql.DB
	salt string
	log  *zap.Logger
	wg   sync.WaitGroup
	now  func() time.Time
}

func openVisitStore(path string, log *zap.Logger) (*visitStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer; serialize through one connection.
	db.SetMaxOpenConns(1)

	s := &visitStore{db: db, salt: randomToken(), log: log, now: time.Now}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	log.Info("Privacy-conscious visitor tracking initialized", zap.String("db", path))
	return s, nil
}

func (s *visitStore) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
	CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,  -- Store hashed IP instead of raw IP
		user_agent TEXT,
		path TEXT,
		timestamp TEXT NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create visitors table: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `CREATE INDEX IF NOT EXISTS idx_visitors_timestamp ON visitors(timestamp)`)
	if err != nil {
		return fmt.Errorf("create visitors index: %w", err)
	}
	return nil
}

// Close waits for pending inserts and closes the database.
func (s *visitStore) Close() error {
	s.wg.Wait()
	return s.db.Close()
}

// Flush blocks until every asynchronous insert has finished. The server
// never calls it; Close waits the same way on shutdown. Tests use it to read
// back what RecordAsync wrote.
func (s *visitStore) Flush() {
	s.wg.Wait()
}

func randomToken() string {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		panic(fmt.Sprintf("crypto/rand unavailable: %v", err))
	}
	return hex.EncodeToString(bytes)
}

// Hash IP address for privacy compliance (consistent per IP within a process)
func (s *visitStore) hashIP(ip string) string {
	hash := sha256.New()
	hash.Write([]byte(ip + s.salt))
	return hex.EncodeToString(hash.Sum(nil))[:16] // Truncate for storage efficiency
}

func (s *visitStore) Record(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, timestamp)
		VALUES (?, ?, ?, ?)
	`, s.hashIP(ip), userAgent, path, s.now().UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordAsync stores a visit in the background; failures are only logged.
func (s *visitStore) RecordAsync(ip, userAgent, path string) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Record(ctx, ip, userAgent, path); err != nil {
			s.log.Warn("Error recording visitor", zap.Error(err))
		}
	}()
}

// Cleanup deletes visits older than the retention window.
func (s *visitStore) Cleanup(ctx context.Context, months int) (int64, error) {
	cutoff := s.now().UTC().AddDate(0, -months, 0).Format(timestampLayout)
	result, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	n, _ := result.RowsAffected()
	if n > 0 {
		s.log.Info("Privacy cleanup: removed old visitor records", zap.Int64("rows", n), zap.Int("retention_months", months))
	}
	return n, nil
}

func (s *visitStore) Stats(ctx context.Context) (*AdminStats, error) {
	stats := &AdminStats{}
	now := s.now().UTC()
	today := now.Truncate(24 * time.Hour).Format(timestampLayout)
	weekAgo := now.AddDate(0, 0, -7).Format(timestampLayout)

	counts := []struct {
		dest  *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{today}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE timestamp >= ?`, []any{weekAgo}},
	}
	for _, q := range counts {
		if err := s.db.QueryRowContext(ctx, q.query, q.args...).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("query stats: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT path, COUNT(*) AS views
		FROM visitors
		GROUP BY path
		ORDER BY views DESC, path ASC
		LIMIT 8
	`)
	if err != nil {
		return nil, fmt.Errorf("query top paths: %w", err)
	}
	stats.TopPaths, err = scanPathCounts(rows)
	if err != nil {
		return nil, err
	}

	stats.RecentVisitors, err = s.Recent(ctx, 50)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// scanPathCounts drains and closes rows so the single connection is free
// for the next query.
func scanPathCounts(rows *sql.Rows) ([]PathCount, error) {
	defer rows.Close()
	var out []PathCount
	for rows.Next() {
		var p PathCount
		if err := rows.Scan(&p.Path, &p.Views); err != nil {
			return nil, fmt.Errorf("scan top path: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top paths: %w", err)
	}
	return out, nil
}

func (s *visitStore) Recent(ctx context.Context, limit int) ([]VisitorMetric, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, COALESCE(user_agent, ''), COALESCE(path, ''), timestamp
		FROM visitors
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	var visitors []VisitorMetric
	for rows.Next() {
		var v VisitorMetric
		var ts string
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp, _ = time.Parse(timestampLayout, ts)
		visitors = append(visitors, v)
	}
	return visitors, rows.Err()
}
