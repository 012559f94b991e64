// Package filter renders the engine's filter_by micro-syntax.
//
// The output is bit-exact with what the engine parses:
//
//	field:=value   field:!=value   field:>v   field:<v   field:>=v   field:<=v
//	field:[min..max]   field:[v1,v2,...]   a && b   a || b
package filter

import (
	"strings"
)

// Expression is a rendered filter_by string. The zero value is an empty filter.
type Expression string

// IsEmpty reports whether the expression has no clauses.
func (e Expression) IsEmpty() bool { return strings.TrimSpace(string(e)) == "" }

// String returns the raw filter_by value.
func (e Expression) String() string { return string(e) }

// Eq renders field:=value.
func Eq(field, value string) Expression { return Expression(field + ":=" + value) }

// NotEq renders field:!=value.
func NotEq(field, value string) Expression { return Expression(field + ":!=" + value) }

// Gt renders field:>value.
func Gt(field, value string) Expression { return Expression(field + ":>" + value) }

// Lt renders field:<value.
func Lt(field, value string) Expression { return Expression(field + ":<" + value) }

// Gte renders field:>=value.
func Gte(field, value string) Expression { return Expression(field + ":>=" + value) }

// Lte renders field:<=value.
func Lte(field, value string) Expression { return Expression(field + ":<=" + value) }

// Range renders field:[min..max].
func Range(field, lo, hi string) Expression {
	return Expression(field + ":[" + lo + ".." + hi + "]")
}

// In renders the membership filter field:[v1,v2,...].
// Backticks inside values are escaped so they cannot terminate a quoted token.
func In(field string, values []string) Expression {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = EscapeValue(v)
	}
	return Expression(field + ":[" + strings.Join(escaped, ",") + "]")
}

// EscapeValue escapes backticks: ` becomes \`.
func EscapeValue(v string) string {
	return strings.ReplaceAll(v, "`", "\\`")
}

// And conjoins the non-empty expressions with &&.
func And(exprs ...Expression) Expression { return join(" && ", exprs) }

// Or disjoins the non-empty expressions with ||.
func Or(exprs ...Expression) Expression { return join(" || ", exprs) }

func join(sep string, exprs []Expression) Expression {
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		if e.IsEmpty() {
			continue
		}
		parts = append(parts, string(e))
	}
	return Expression(strings.Join(parts, sep))
}
