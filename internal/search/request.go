// Package search turns caller input into the SQL that answers it.
//
// Planning is pure: Plan picks exactly one matching strategy and the
// composable filters, Build renders the COUNT and paginated SELECT that share
// one argument prefix. Nothing here touches the database.
package search

import (
	"regexp"
	"strings"
)

// Request is one search call as issued by the UI. Empty strings mean "not set".
type Request struct {
	Query     string `json:"q"`
	FTS       string `json:"fts"`
	IsPhone   bool   `json:"isPhone"`
	Sex       string `json:"sesso"`
	Residence string `json:"residente"`
	Page      int64  `json:"page"`
	PageSize  int64  `json:"pageSize"`
}

var ftsSplit = regexp.MustCompile(`[\s,.;:/\\]+`)

// BuildFTSQuery turns free text into a forgiving FTS5 expression: terms of
// three or more characters become prefix matches and all terms are ANDed.
func BuildFTSQuery(input string) string {
	parts := ftsSplit.Split(strings.TrimSpace(input), -1)
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if len([]rune(p)) >= 3 {
			p += "*"
		}
		terms = append(terms, p)
	}
	return strings.Join(terms, " AND ")
}

// LooksLikePhone reports whether s carries at least seven digits or '+'.
func LooksLikePhone(s string) bool {
	n := 0
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '+' {
			n++
		}
	}
	return n >= 7
}

// Prepare fills FTS and IsPhone from Query, the way the search box does when
// the caller only has a single input.
func (r Request) Prepare() Request {
	r.IsPhone = LooksLikePhone(r.Query)
	if r.IsPhone {
		r.FTS = ""
	} else {
		r.FTS = BuildFTSQuery(r.Query)
	}
	return r
}
