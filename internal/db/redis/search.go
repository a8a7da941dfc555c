package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/kailas-cloud/recodex/internal/db"
	"github.com/kailas-cloud/recodex/internal/domain/search/filter"
)

// Search runs a filtered FT.SEARCH and returns the requested page.
func (s *Store) Search(ctx context.Context, q *db.Query) (*db.SearchResult, error) {
	switch {
	case q.IndexName == "":
		return nil, errors.New("index name is required")
	case q.Offset < 0:
		return nil, errors.New("offset must not be negative")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = db.DefaultSearchLimit
	}

	args := []string{q.IndexName, queryString(q.Filters), "LIMIT", strconv.Itoa(q.Offset), strconv.Itoa(limit)}
	if n := len(q.ReturnFields); n > 0 {
		args = append(append(args, "RETURN", strconv.Itoa(n)), q.ReturnFields...)
	}

	res := s.do(ctx, s.b().Arbitrary("FT.SEARCH").Args(append(args, "DIALECT", "2")...).Build())
	total, docs, err := res.AsFtSearch()
	if err != nil {
		return nil, searchError(db.OpSearch, err)
	}

	out := &db.SearchResult{Total: int(total), Entries: make([]db.SearchEntry, 0, len(docs))}
	for _, d := range docs {
		out.Entries = append(out.Entries, db.SearchEntry{Key: d.Key, Fields: d.Doc})
	}
	return out, nil
}

// Count returns the number of documents matching filters.
func (s *Store) Count(ctx context.Context, index string, filters filter.Expression) (int, error) {
	if index == "" {
		return 0, errors.New("index name is required")
	}
	cmd := s.b().Arbitrary("FT.SEARCH").
		Args(index, queryString(filters), "LIMIT", "0", "0", "DIALECT", "2").
		Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return 0, searchError(db.OpCount, err)
	}
	if len(raw) == 0 {
		return 0, nil
	}
	total, err := raw[0].AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpCount, Err: fmt.Errorf("parse total: %w", err)}
	}
	return int(total), nil
}

func searchError(op string, err error) error {
	if isMissingIndex(err) {
		return db.ErrIndexNotFound
	}
	return &db.Error{Op: op, Err: err}
}

// queryString returns the FT.SEARCH query for expr; "*" matches everything.
func queryString(expr filter.Expression) string {
	if q := buildFilter(expr); q != "" {
		return q
	}
	return "*"
}

// buildFilter renders must clauses, then one OR group for should, then negated must-not clauses.
func buildFilter(expr filter.Expression) string {
	if expr.IsEmpty() {
		return ""
	}

	parts := renderAll(expr.Must(), "")
	if or := renderAll(expr.Should(), ""); len(or) > 0 {
		parts = append(parts, "("+strings.Join(or, " | ")+")")
	}
	parts = append(parts, renderAll(expr.MustNot(), "-")...)
	return strings.Join(parts, " ")
}

func renderAll(conds []filter.Condition, prefix string) []string {
	var out []string
	for _, c := range conds {
		if r := buildCondition(c); r != "" {
			out = append(out, prefix+r)
		}
	}
	return out
}

func buildCondition(cond filter.Condition) string {
	switch cond.Kind() {
	case filter.KindMatch:
		return "@" + cond.Key() + ":{" + escapeTag(cond.Match()) + "}"
	case filter.KindContains:
		// DIALECT 2 infix wildcard; tags are indexed lower-cased.
		return "@" + cond.Key() + ":{*" + escapeTag(strings.ToLower(cond.Fragment())) + "*}"
	case filter.KindText:
		return buildTextFilter(cond.Fields(), cond.Words())
	case filter.KindRange:
		return buildNumericFilter(cond.Key(), *cond.Range())
	}
	return ""
}

func buildTextFilter(fields, words []string) string {
	terms := make([]string, 0, len(words))
	for _, w := range words {
		if e := escapeQuery(w); e != "" {
			terms = append(terms, e)
		}
	}
	if len(terms) == 0 {
		return ""
	}
	return "@" + strings.Join(fields, "|") + ":(" + strings.Join(terms, "|") + ")"
}

func buildNumericFilter(key string, r filter.Range) string {
	lo, hi := "-inf", "+inf"
	switch {
	case r.GT() != nil:
		lo = "(" + formatNumber(*r.GT())
	case r.GTE() != nil:
		lo = formatNumber(*r.GTE())
	}
	switch {
	case r.LT() != nil:
		hi = "(" + formatNumber(*r.LT())
	case r.LTE() != nil:
		hi = formatNumber(*r.LTE())
	}
	return "@" + key + ":[" + lo + " " + hi + "]"
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// escapeTag escapes a TAG value. Spaces are escaped too, so multi-word
// categories stay one tag.
func escapeTag(s string) string { return escape(s, true) }

// escapeQuery escapes a free-text term.
func escapeQuery(s string) string { return escape(s, false) }

// escape backslash-escapes every ASCII punctuation or symbol rune, which the
// query parser would otherwise treat as syntax or a token separator.
func escape(s string, spaces bool) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for _, r := range s {
		if needsEscape(r) || (spaces && r == ' ') {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func needsEscape(r rune) bool {
	switch {
	case r >= 0x80, r == '_', r == ' ':
		return false
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	}
	return r > ' ' && r < 0x7f
}
