package search

import "strings"

// Columns is the projection shared by every strategy, in scan order.
const Columns = `r.id, r.telefono, r.idfb, r.nome, r.cognome, r.sesso, r.natoa, r.residente,
	r.statocivile, r.azienda, r.dataAcc, r.niente, r.niente2`

const (
	fromRecords  = `records r`
	fromFullText = `records r JOIN records_fts f ON f.rowid = r.id`
)

// Query holds both statements for one request. Args binds CountSQL; the
// SELECT takes Args followed by Limit and Offset.
type Query struct {
	CountSQL  string
	SelectSQL string
	Args      []any
	Limit     int64
	Offset    int64
}

// SelectArgs returns Args with the pagination values appended. Args itself is
// never modified.
func (q Query) SelectArgs() []any {
	out := make([]any, 0, len(q.Args)+2)
	out = append(out, q.Args...)
	return append(out, q.Limit, q.Offset)
}

// Build renders a planned predicate into SQL.
func Build(p Predicate) Query {
	var where strings.Builder
	where.WriteString("1=1")
	args := make([]any, 0, len(p.Filters)+4)

	for _, f := range p.Filters {
		where.WriteString(" AND ")
		where.WriteString(f.Clause)
		args = append(args, f.Arg)
	}

	from := fromRecords
	switch p.Strategy.Kind {
	case KindPhone:
		where.WriteString(" AND r.telefono LIKE ?")
		args = append(args, "%"+p.Strategy.Term+"%")
	case KindFullText:
		from = fromFullText
		where.WriteString(" AND records_fts MATCH ?")
		args = append(args, p.Strategy.Term)
	case KindSubstring:
		where.WriteString(" AND (r.cognome LIKE ? OR r.nome LIKE ? OR r.azienda LIKE ? OR r.residente LIKE ?)")
		like := "%" + p.Strategy.Term + "%"
		args = append(args, like, like, like, like)
	}

	w := where.String()
	return Query{
		CountSQL:  "SELECT COUNT(*) FROM " + from + " WHERE " + w,
		SelectSQL: "SELECT " + Columns + " FROM " + from + " WHERE " + w + " ORDER BY r.id LIMIT ? OFFSET ?",
		Args:      args,
		Limit:     p.Limit,
		Offset:    p.Offset,
	}
}

// Compile is Plan followed by Build.
func Compile(req Request) (Predicate, Query) {
	p := Plan(req)
	return p, Build(p)
}
