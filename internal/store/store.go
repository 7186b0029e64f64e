// Package store answers searches against the read-only records database.
//
// The database file is built elsewhere; this package never creates or
// migrates schema. It expects a records table and a records_fts FTS5 index
// whose rowid equals records.id.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/zephyraoss/offline-finder/internal/metrics"
	"github.com/zephyraoss/offline-finder/internal/search"
)

// Record is one row of the records table. Only ID is guaranteed; the other
// fields are nil when absent or not text.
type Record struct {
	ID          int64   `json:"id"`
	Phone       *string `json:"telefono"`
	ExternalID  *string `json:"idfb"`
	GivenName   *string `json:"nome"`
	FamilyName  *string `json:"cognome"`
	Sex         *string `json:"sesso"`
	BirthPlace  *string `json:"natoa"`
	Residence   *string `json:"residente"`
	CivilStatus *string `json:"statocivile"`
	Employer    *string `json:"azienda"`
	AccrualDate *string `json:"dataAcc"`
	Reserved1   *string `json:"niente"`
	Reserved2   *string `json:"niente2"`
}

// Result is the total match count and one page of rows ordered by id.
type Result struct {
	Total    int64       `json:"total"`
	Rows     []Record    `json:"rows"`
	Strategy search.Kind `json:"-"`
}

type Searcher struct {
	provider *Provider
	metrics  metrics.Recorder
	logger   *slog.Logger
}

func NewSearcher(p *Provider, rec metrics.Recorder, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{provider: p, metrics: metrics.OrNoop(rec), logger: logger}
}

// Search counts every match, then fetches the requested page. Any statement
// error fails the whole request; values that cannot be read as the expected
// type only blank out that field.
func (s *Searcher) Search(ctx context.Context, req search.Request) (res Result, err error) {
	done := metrics.TimeSearch(s.metrics)
	pred, q := search.Compile(req)
	defer func() { done(pred.Strategy.Kind.String(), err == nil) }()

	err = s.provider.Do(ctx, func(db *sql.DB) error {
		total, err := count(ctx, db, q)
		if err != nil {
			return err
		}
		rows, err := page(ctx, db, q)
		if err != nil {
			return err
		}
		res = Result{Total: total, Rows: rows, Strategy: pred.Strategy.Kind}
		return nil
	})
	if err != nil {
		s.logger.Error("search failed", "strategy", pred.Strategy.Kind.String(), "error", err)
		return Result{}, err
	}
	s.logger.Debug("search complete", "strategy", pred.Strategy.Kind.String(), "total", res.Total, "rows", len(res.Rows), "limit", q.Limit, "offset", q.Offset)
	return res, nil
}

func count(ctx context.Context, db *sql.DB, q search.Query) (int64, error) {
	stmt, err := db.PrepareContext(ctx, q.CountSQL)
	if err != nil {
		return 0, fmt.Errorf("prepare count: %w", err)
	}
	defer stmt.Close()

	var total int64
	if err := stmt.QueryRowContext(ctx, q.Args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return total, nil
}

func page(ctx context.Context, db *sql.DB, q search.Query) ([]Record, error) {
	stmt, err := db.PrepareContext(ctx, q.SelectSQL)
	if err != nil {
		return nil, fmt.Errorf("prepare select: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, q.SelectArgs()...)
	if err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	defer rows.Close()

	out := make([]Record, 0, min(q.Limit, 256))
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("select records: %w", err)
	}
	return out, nil
}

// scanRecord reads the 13 projected columns loosely so that a single odd
// value never costs the row.
func scanRecord(rows *sql.Rows) (Record, error) {
	var vals [13]any
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return Record{}, fmt.Errorf("scan record: %w", err)
	}
	return Record{
		ID:          asInt64(vals[0]),
		Phone:       asText(vals[1]),
		ExternalID:  asText(vals[2]),
		GivenName:   asText(vals[3]),
		FamilyName:  asText(vals[4]),
		Sex:         asText(vals[5]),
		BirthPlace:  asText(vals[6]),
		Residence:   asText(vals[7]),
		CivilStatus: asText(vals[8]),
		Employer:    asText(vals[9]),
		AccrualDate: asText(vals[10]),
		Reserved1:   asText(vals[11]),
		Reserved2:   asText(vals[12]),
	}, nil
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case int64:
		return x
	case float64:
		return int64(x)
	case string:
		n, _ := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		return n
	case []byte:
		n, _ := strconv.ParseInt(strings.TrimSpace(string(x)), 10, 64)
		return n
	default:
		return 0
	}
}

func asText(v any) *string {
	switch x := v.(type) {
	case string:
		return &x
	case []byte:
		s := string(x)
		return &s
	default:
		return nil
	}
}
