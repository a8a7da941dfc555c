// Package filter describes store-agnostic boolean filters over indexed product fields.
package filter

import (
	"errors"
	"fmt"
	"strings"
)

// MaxConditionsPerGroup is the maximum number of conditions per filter group.
const MaxConditionsPerGroup = 32

// Expression is a structured filter with must/should/must_not boolean semantics.
type Expression struct {
	must    []Condition
	should  []Condition
	mustNot []Condition
}

// NewExpression validates and creates a filter Expression.
func NewExpression(must, should, mustNot []Condition) (Expression, error) {
	for _, g := range []struct {
		name  string
		conds []Condition
	}{{"must", must}, {"should", should}, {"must_not", mustNot}} {
		if len(g.conds) > MaxConditionsPerGroup {
			return Expression{}, fmt.Errorf("too many %s conditions (max %d)", g.name, MaxConditionsPerGroup)
		}
	}
	return Expression{must: must, should: should, mustNot: mustNot}, nil
}

// Must returns the must conditions.
func (e Expression) Must() []Condition { return e.must }

// Should returns the should conditions.
func (e Expression) Should() []Condition { return e.should }

// MustNot returns the must-not conditions.
func (e Expression) MustNot() []Condition { return e.mustNot }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool {
	return len(e.must) == 0 && len(e.should) == 0 && len(e.mustNot) == 0
}

// Kind discriminates condition variants.
type Kind int

// Condition kinds.
const (
	KindMatch Kind = iota + 1
	KindContains
	KindText
	KindRange
)

func (k Kind) String() string {
	switch k {
	case KindMatch:
		return "match"
	case KindContains:
		return "contains"
	case KindText:
		return "text"
	case KindRange:
		return "range"
	default:
		return "unknown"
	}
}

// Condition is a single filter clause.
type Condition struct {
	kind      Kind
	key       string
	value     string
	fields    []string
	words     []string
	rangeExpr *Range
}

// NewMatch creates an exact tag match condition.
func NewMatch(key, match string) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	if match == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{kind: KindMatch, key: key, value: match}, nil
}

// NewContains creates a case-insensitive substring condition on a tag field.
func NewContains(key, fragment string) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return Condition{}, fmt.Errorf("contains fragment is required for key %q", key)
	}
	return Condition{kind: KindContains, key: key, value: fragment}, nil
}

// NewText creates a full-text condition matching any of words in any of fields.
func NewText(fields, words []string) (Condition, error) {
	if len(fields) == 0 {
		return Condition{}, errors.New("at least one text field is required")
	}
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			kept = append(kept, w)
		}
	}
	if len(kept) == 0 {
		return Condition{}, errors.New("at least one word is required")
	}
	return Condition{kind: KindText, key: strings.Join(fields, "|"), fields: fields, words: kept}, nil
}

// NewRange creates a numeric range condition.
func NewRange(key string, r Range) (Condition, error) {
	if key == "" {
		return Condition{}, errors.New("filter key is required")
	}
	return Condition{kind: KindRange, key: key, rangeExpr: &r}, nil
}

// Kind returns the condition variant.
func (c Condition) Kind() Kind { return c.kind }

// Key returns the field name. Text conditions join their fields with "|".
func (c Condition) Key() string { return c.key }

// Match returns the exact match value.
func (c Condition) Match() string {
	if c.kind != KindMatch {
		return ""
	}
	return c.value
}

// Fragment returns the substring of a contains condition.
func (c Condition) Fragment() string {
	if c.kind != KindContains {
		return ""
	}
	return c.value
}

// Fields returns the fields of a text condition.
func (c Condition) Fields() []string { return c.fields }

// Words returns the words of a text condition.
func (c Condition) Words() []string { return c.words }

// Range returns the numeric range expression.
func (c Condition) Range() *Range { return c.rangeExpr }

// IsMatch reports whether this is a match condition.
func (c Condition) IsMatch() bool { return c.kind == KindMatch }

// IsContains reports whether this is a contains condition.
func (c Condition) IsContains() bool { return c.kind == KindContains }

// IsText reports whether this is a text condition.
func (c Condition) IsText() bool { return c.kind == KindText }

// IsRange reports whether this is a range condition.
func (c Condition) IsRange() bool { return c.kind == KindRange }

// Range is a numeric range with gt/gte/lt/lte boundaries.
type Range struct {
	gt  *float64
	gte *float64
	lt  *float64
	lte *float64
}

// NewRangeFilter validates and creates a Range. At least one bound is
// required, gt/gte and lt/lte are mutually exclusive, and the lower bound must
// not exceed the upper one.
func NewRangeFilter(gt, gte, lt, lte *float64) (Range, error) {
	switch {
	case gt == nil && gte == nil && lt == nil && lte == nil:
		return Range{}, errors.New("at least one range boundary is required")
	case gt != nil && gte != nil:
		return Range{}, errors.New("cannot specify both gt and gte")
	case lt != nil && lte != nil:
		return Range{}, errors.New("cannot specify both lt and lte")
	}
	r := Range{gt: gt, gte: gte, lt: lt, lte: lte}
	if lo, hi := r.lower(), r.upper(); lo != nil && hi != nil && *lo > *hi {
		return Range{}, fmt.Errorf("inverted range: %v > %v", *lo, *hi)
	}
	return r, nil
}

func (r Range) lower() *float64 {
	if r.gt != nil {
		return r.gt
	}
	return r.gte
}

func (r Range) upper() *float64 {
	if r.lt != nil {
		return r.lt
	}
	return r.lte
}

// Between is an inclusive [lo, hi] range. A nil hi leaves the upper side open.
func Between(lo float64, hi *float64) Range {
	return Range{gte: &lo, lte: hi}
}

// AtLeast is an inclusive lower bound.
func AtLeast(lo float64) Range {
	return Range{gte: &lo}
}

// GT returns the lower exclusive bound.
func (r Range) GT() *float64 { return r.gt }

// GTE returns the lower inclusive bound.
func (r Range) GTE() *float64 { return r.gte }

// LT returns the upper exclusive bound.
func (r Range) LT() *float64 { return r.lt }

// LTE returns the upper inclusive bound.
func (r Range) LTE() *float64 { return r.lte }

// Contains reports whether v satisfies every bound.
func (r Range) Contains(v float64) bool {
	switch {
	case r.gt != nil && v <= *r.gt:
		return false
	case r.gte != nil && v < *r.gte:
		return false
	case r.lt != nil && v >= *r.lt:
		return false
	case r.lte != nil && v > *r.lte:
		return false
	}
	return true
}
