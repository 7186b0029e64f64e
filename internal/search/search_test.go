package search

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"O'Brien *test* 123", "O Brien *test* 123"},
		{`"mario rossi"`, `"mario rossi"`},
		{"ross* AND bian*", "ross* AND bian*"},
		{"a(b)c", "a b c"},
		{"x -- y", "x   y"},
		{"tab\there", "tab\there"},
		{"", ""},
		{"!!!", " "},
		{"città", "citt "},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name               string
		page, size         int64
		wantLimit, wantOff int64
	}{
		{"first page", 1, 20, 20, 0},
		{"third page", 3, 10, 10, 20},
		{"zero page", 0, 10, 10, 0},
		{"negative page", -4, 10, 10, 0},
		{"zero size", 2, 0, 1, 1},
		{"huge size", 1, 1 << 40, 1 << 40, 0},
		{"offset saturates", math.MaxInt64 / 2, 4, 4, math.MaxInt64},
		{"max size second page", 2, math.MaxInt64, math.MaxInt64, math.MaxInt64},
		{"largest exact offset", math.MaxInt64/4 + 1, 4, 4, math.MaxInt64 - 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			limit, off := Paginate(tt.page, tt.size)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOff, off)
		})
	}
}

func TestPlan_StrategySelection(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		kind Kind
		term string
	}{
		{"phone wins over fts", Request{Query: "333 123 4567", FTS: "rossi*", IsPhone: true}, KindPhone, "3331234567"},
		{"phone with blank query falls to unfiltered", Request{Query: "  ", FTS: "rossi*", IsPhone: true}, KindUnfiltered, ""},
		{"fulltext", Request{Query: "rossi", FTS: "ross*"}, KindFullText, "ross*"},
		{"fulltext sanitized", Request{FTS: "d'amico*"}, KindFullText, "d amico*"},
		{"substring", Request{Query: " Rossi "}, KindSubstring, "Rossi"},
		{"unfiltered", Request{}, KindUnfiltered, ""},
		{"blank fts falls to substring", Request{Query: "Bianchi", FTS: "   "}, KindSubstring, "Bianchi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Plan(tt.req)
			assert.Equal(t, tt.kind, p.Strategy.Kind)
			assert.Equal(t, tt.term, p.Strategy.Term)
		})
	}
}

func TestPlan_FilterOrder(t *testing.T) {
	p := Plan(Request{Sex: "male", Residence: "  Roma ", Query: "Rossi"})
	require.Len(t, p.Filters, 2)
	assert.Equal(t, Filter{Clause: "r.sesso = ?", Arg: "male"}, p.Filters[0])
	assert.Equal(t, Filter{Clause: "r.residente LIKE ?", Arg: "%Roma%"}, p.Filters[1])

	p = Plan(Request{Sex: "   ", Residence: ""})
	assert.Empty(t, p.Filters)
}

func TestBuild_PhoneIgnoresFTS(t *testing.T) {
	_, q := Compile(Request{Query: "333 123 4567", FTS: "mario*", IsPhone: true, Page: 1, PageSize: 20})

	assert.NotContains(t, q.CountSQL, "MATCH")
	assert.NotContains(t, q.SelectSQL, "records_fts")
	assert.Contains(t, q.CountSQL, "r.telefono LIKE ?")
	assert.Equal(t, []any{"%3331234567%"}, q.Args)
	assert.Equal(t, []any{"%3331234567%", int64(20), int64(0)}, q.SelectArgs())
}

func TestBuild_FullTextJoin(t *testing.T) {
	_, q := Compile(Request{FTS: "ross* AND mar*", Sex: "female", Page: 2, PageSize: 50})

	assert.True(t, strings.HasPrefix(q.CountSQL, "SELECT COUNT(*) FROM records r JOIN records_fts f ON f.rowid = r.id WHERE"))
	assert.Contains(t, q.SelectSQL, "JOIN records_fts f ON f.rowid = r.id")
	assert.Contains(t, q.SelectSQL, "records_fts MATCH ?")
	assert.Equal(t, []any{"female", "ross* AND mar*"}, q.Args)
	assert.Equal(t, int64(50), q.Limit)
	assert.Equal(t, int64(50), q.Offset)
}

func TestBuild_Substring(t *testing.T) {
	_, q := Compile(Request{Query: "Acme", Residence: "Milano"})

	assert.Contains(t, q.CountSQL, "(r.cognome LIKE ? OR r.nome LIKE ? OR r.azienda LIKE ? OR r.residente LIKE ?)")
	assert.Equal(t, []any{"%Milano%", "%Acme%", "%Acme%", "%Acme%", "%Acme%"}, q.Args)
	// Filters come before the strategy clause in the SQL as well.
	assert.Less(t, strings.Index(q.CountSQL, "r.residente LIKE ?"), strings.Index(q.CountSQL, "r.cognome LIKE ?"))
}

func TestBuild_ResidenceOnly(t *testing.T) {
	_, q := Compile(Request{Residence: "Roma", Page: 1, PageSize: 5})

	assert.Equal(t, "SELECT COUNT(*) FROM records r WHERE 1=1 AND r.residente LIKE ?", q.CountSQL)
	assert.Equal(t, []any{"%Roma%"}, q.Args)
	assert.NotContains(t, q.SelectSQL, "r.cognome LIKE")
	assert.True(t, strings.HasSuffix(q.SelectSQL, "WHERE 1=1 AND r.residente LIKE ? ORDER BY r.id LIMIT ? OFFSET ?"), q.SelectSQL)
	assert.NotContains(t, q.SelectSQL, "r.telefono LIKE")
}

func TestBuild_SharedShape(t *testing.T) {
	reqs := []Request{
		{},
		{Query: "Rossi"},
		{Query: "Rossi", Sex: "male", Residence: "Roma"},
		{FTS: "ross*", Residence: "Roma"},
		{Query: "333", IsPhone: true, Sex: "female", FTS: "x"},
		{Page: -1, PageSize: -1},
	}
	for _, req := range reqs {
		_, q := Compile(req)

		sel := q.SelectArgs()
		require.Len(t, sel, len(q.Args)+2)
		assert.Equal(t, q.Args, sel[:len(q.Args)])
		assert.Equal(t, q.Limit, sel[len(sel)-2])
		assert.Equal(t, q.Offset, sel[len(sel)-1])

		assert.Equal(t, strings.Count(q.CountSQL, "?"), len(q.Args))
		assert.Equal(t, strings.Count(q.SelectSQL, "?"), len(sel))
		assert.True(t, strings.HasSuffix(q.SelectSQL, "ORDER BY r.id LIMIT ? OFFSET ?"))
		assert.NotContains(t, q.CountSQL, "LIMIT")
	}
}

func TestSelectArgs_DoesNotAlias(t *testing.T) {
	q := Query{Args: make([]any, 1, 8), Limit: 5, Offset: 10}
	q.Args[0] = "a"
	first := q.SelectArgs()
	first[0] = "changed"
	assert.Equal(t, "a", q.Args[0])
}

func TestBuildFTSQuery(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"mario rossi", "mario* AND rossi*"},
		{"  de la   rosa ", "de AND la AND rosa*"},
		{"rossi, mario; milano/roma", "rossi* AND mario* AND milano* AND roma*"},
		{"", ""},
		{" ,;. ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildFTSQuery(tt.in))
		})
	}
}

func TestLooksLikePhone(t *testing.T) {
	assert.True(t, LooksLikePhone("333 123 4567"))
	assert.True(t, LooksLikePhone("+39 06 1234"))
	assert.False(t, LooksLikePhone("Rossi 12"))
	assert.False(t, LooksLikePhone("123456"))
}

func TestRequest_Prepare(t *testing.T) {
	r := Request{Query: "333 1234567", FTS: "stale"}.Prepare()
	assert.True(t, r.IsPhone)
	assert.Empty(t, r.FTS)

	r = Request{Query: "mario rossi"}.Prepare()
	assert.False(t, r.IsPhone)
	assert.Equal(t, "mario* AND rossi*", r.FTS)
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "phone", KindPhone.String())
	assert.Equal(t, "fulltext", KindFullText.String())
	assert.Equal(t, "substring", KindSubstring.String())
	assert.Equal(t, "unfiltered", KindUnfiltered.String())
}
