package search

import (
	"math"
	"strings"
)

// Kind tags which text-matching strategy a request resolved to. The zero
// value means no text matching at all.
type Kind int

const (
	KindUnfiltered Kind = iota
	KindSubstring
	KindFullText
	KindPhone
)

// String is the label used in logs, metrics and CLI output.
func (k Kind) String() string {
	switch k {
	case KindPhone:
		return "phone"
	case KindFullText:
		return "fulltext"
	case KindSubstring:
		return "substring"
	default:
		return "unfiltered"
	}
}

// Strategy is the single text-matching rule chosen for a request. Term is
// already normalised for its kind: spaces stripped for phone, sanitized for
// full-text, trimmed for substring, empty for unfiltered.
type Strategy struct {
	Kind Kind
	Term string
}

// Filter is one AND-ed predicate with its single argument.
type Filter struct {
	Clause string
	Arg    any
}

// Predicate is the planned shape of a request, independent of SQL text.
type Predicate struct {
	Filters  []Filter
	Strategy Strategy
	Limit    int64
	Offset   int64
}

// Plan chooses filters and a strategy for req. Filters always precede the
// strategy, so argument order is [sex?, residence?, strategy args...].
func Plan(req Request) Predicate {
	var p Predicate

	if strings.TrimSpace(req.Sex) != "" {
		p.Filters = append(p.Filters, Filter{Clause: "r.sesso = ?", Arg: req.Sex})
	}
	if res := strings.TrimSpace(req.Residence); res != "" {
		p.Filters = append(p.Filters, Filter{Clause: "r.residente LIKE ?", Arg: "%" + res + "%"})
	}

	q := strings.TrimSpace(req.Query)
	switch {
	case req.IsPhone && q != "":
		p.Strategy = Strategy{Kind: KindPhone, Term: strings.ReplaceAll(q, " ", "")}
	case !req.IsPhone && strings.TrimSpace(req.FTS) != "":
		p.Strategy = Strategy{Kind: KindFullText, Term: Sanitize(req.FTS)}
	case q != "":
		p.Strategy = Strategy{Kind: KindSubstring, Term: q}
	default:
		p.Strategy = Strategy{Kind: KindUnfiltered}
	}

	p.Limit, p.Offset = Paginate(req.Page, req.PageSize)
	return p
}

// Paginate floors page and size at 1. No upper bound is applied; an offset
// past math.MaxInt64 saturates there, which SQLite answers with no rows.
func Paginate(page, size int64) (limit, offset int64) {
	limit = max(size, 1)
	skip := max(page, 1) - 1
	if skip > math.MaxInt64/limit {
		return limit, math.MaxInt64
	}
	return limit, skip * limit
}
