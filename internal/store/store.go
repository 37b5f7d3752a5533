// Package store persists classified leads in MySQL.
package store

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/Jainprashuk/LeadLens/internal/lead"
	"github.com/Jainprashuk/LeadLens/internal/logger"
	"github.com/Jainprashuk/LeadLens/internal/urlutil"
)

const leadsDDL = `
CREATE TABLE IF NOT EXISTS leads (
  id BIGINT AUTO_INCREMENT PRIMARY KEY,
  search VARCHAR(255) NOT NULL,
  lead_key CHAR(40) NOT NULL,
  name VARCHAR(255) NOT NULL,
  category VARCHAR(255) NULL,
  address VARCHAR(255) NULL,
  rating DECIMAL(4,2) NULL,
  reviews INT NULL,
  photos INT NULL,
  has_website TINYINT(1) NOT NULL DEFAULT 0,
  website VARCHAR(255) NULL,
  telephone VARCHAR(50) NULL,
  maps_url TEXT NULL,
  lead_category VARCHAR(32) NOT NULL,
  lead_type VARCHAR(64) NOT NULL,
  classification_reason TEXT NOT NULL,
  lead_score INT NOT NULL,
  site_score INT NOT NULL DEFAULT 0,
  flags VARCHAR(255) NULL,
  scored_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
  UNIQUE KEY uniq_search_lead (search, lead_key),
  KEY idx_lead_score (lead_score)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

const upsertLead = `
INSERT INTO leads (search, lead_key, name, category, address, rating, reviews, photos, has_website, website,
  telephone, maps_url, lead_category, lead_type, classification_reason, lead_score, site_score, flags, scored_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  name=VALUES(name),
  category=VALUES(category),
  address=VALUES(address),
  rating=VALUES(rating),
  reviews=VALUES(reviews),
  photos=VALUES(photos),
  has_website=VALUES(has_website),
  website=VALUES(website),
  telephone=VALUES(telephone),
  maps_url=VALUES(maps_url),
  lead_category=VALUES(lead_category),
  lead_type=VALUES(lead_type),
  classification_reason=VALUES(classification_reason),
  lead_score=VALUES(lead_score),
  site_score=VALUES(site_score),
  flags=VALUES(flags),
  scored_at=VALUES(scored_at);`

// Saver persists one job's leads.
type Saver interface {
	SaveLeads(ctx context.Context, search string, leads []lead.Lead) (int, error)
}

// MySQL stores leads in a single upserted table.
type MySQL struct {
	db  *sql.DB
	log logger.Logger
	now func() time.Time
}

// Open connects to dsn and pings the server.
func Open(ctx context.Context, dsn string, log logger.Logger) (*MySQL, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return New(db, log), nil
}

// New wraps an open database handle.
func New(db *sql.DB, log logger.Logger) *MySQL {
	if log == nil {
		log = logger.NewNop()
	}
	return &MySQL{db: db, log: log, now: time.Now}
}

// Close closes the underlying handle.
func (s *MySQL) Close() error { return s.db.Close() }

// EnsureSchema creates the leads table when missing.
func (s *MySQL) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, leadsDDL); err != nil {
		return fmt.Errorf("ensure leads table: %w", err)
	}
	return nil
}

// SaveLeads upserts leads for search inside one transaction and returns the
// number of rows written. Unnamed records are skipped. On error the
// transaction is rolled back and the count is 0.
func (s *MySQL) SaveLeads(ctx context.Context, search string, leads []lead.Lead) (int, error) {
	if len(leads) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	prepared, err := tx.PrepareContext(ctx, upsertLead)
	if err != nil {
		return 0, fmt.Errorf("prepare upsert: %w", err)
	}
	defer prepared.Close()

	now := s.now()
	saved := 0
	for _, l := range leads {
		r, c := l.Record, l.Classification
		name := strings.TrimSpace(r.BusinessName)
		if name == "" {
			continue
		}
		if _, err := prepared.ExecContext(ctx,
			search,
			LeadKey(r),
			name,
			nullString(r.Category),
			nullString(r.Address),
			nullFloat64(r.Rating),
			nullInt(r.Reviews),
			nullInt(r.Photos),
			r.HasWebsite,
			nullString(r.Website),
			nullString(r.Phone),
			nullString(r.MapsURL),
			string(c.Category),
			c.LeadType,
			c.Explanation,
			c.Score,
			c.Result.SiteScore,
			nullString(strings.Join(c.Result.Flags, ";")),
			now,
		); err != nil {
			return 0, fmt.Errorf("upsert %q: %w", name, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.log.Debug("stored leads", logger.String("search", search), logger.Int("rows", saved))
	return saved, nil
}

// LeadKey identifies a business within a search: its lowercased name plus
// the registrable domain of its website, or its address when it has none.
// The result is a fixed-width hex digest so it fits a unique index.
func LeadKey(r lead.Record) string {
	name := strings.ToLower(strings.TrimSpace(r.BusinessName))
	where := urlutil.RegistrableDomain(r.Website)
	if where == "" {
		where = strings.ToLower(strings.TrimSpace(r.Address))
	}
	sum := sha1.Sum([]byte(name + "|" + where))
	return hex.EncodeToString(sum[:])
}

func nullString(value string) sql.NullString {
	value = strings.TrimSpace(value)
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func nullFloat64(value float64) sql.NullFloat64 {
	if value == 0 {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: value, Valid: true}
}

func nullInt(value int) sql.NullInt64 {
	if value == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(value), Valid: true}
}

var _ Saver = (*MySQL)(nil)
