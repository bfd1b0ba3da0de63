// Package filter builds query filter expressions in the vendor's
// field:"value" syntax and applies the vendor's percent-encoding rules to
// filter values.
package filter

import (
	"fmt"
	"strings"
)

// The vendor's documented encoding table for filter values. This deviates
// from RFC 3986 (space becomes '+', double quotes become an escaped quote
// sequence), so net/url escaping cannot be used. The '%' characters
// introduced by a replacement are never re-encoded because each input
// character is replaced at most once.
var valueReplacer = strings.NewReplacer(
	" ", "+",
	"(", "%28",
	")", "%29",
	"&", "%26",
	`"`, "%5C%22",
	"|", "%7C",
	"=", "%3D",
	"!", "%21",
	">", "%3E",
	"<", "%3C",
	"\n", "%0A",
)

// Encode applies the vendor's filter-value encoding table. Inputs containing
// none of the table's characters pass through unchanged, which makes Encode
// idempotent on already-plain strings.
func Encode(s string) string {
	return valueReplacer.Replace(s)
}

// Filter is a composed filter expression. The zero value is the empty filter.
type Filter struct {
	expr string
}

// Eq matches records whose field equals value.
func Eq(field, value string) Filter {
	return clause(field, ":", value)
}

// Ne matches records whose field does not equal value.
func Ne(field, value string) Filter {
	return clause(field, "!:", value)
}

// Contains matches records whose field contains value.
func Contains(field, value string) Filter {
	return clause(field, "~", value)
}

// Gt matches records whose field is greater than value.
func Gt(field, value string) Filter {
	return clause(field, ">:", value)
}

// Lt matches records whose field is less than value.
func Lt(field, value string) Filter {
	return clause(field, "<:", value)
}

func clause(field, op, value string) Filter {
	return Filter{expr: fmt.Sprintf("%s%s%q", field, op, Encode(value))}
}

// And combines filters so that all must match.
func (f Filter) And(others ...Filter) Filter {
	return f.join(",", others)
}

// Or combines filters so that any may match.
func (f Filter) Or(others ...Filter) Filter {
	return f.join("||", others)
}

func (f Filter) join(sep string, others []Filter) Filter {
	parts := make([]string, 0, len(others)+1)
	if f.expr != "" {
		parts = append(parts, f.expr)
	}
	for _, o := range others {
		if o.expr != "" {
			parts = append(parts, o.expr)
		}
	}
	return Filter{expr: strings.Join(parts, sep)}
}

// IsZero reports whether the filter is empty.
func (f Filter) IsZero() bool {
	return f.expr == ""
}

// String renders the filter expression for use as the "filter" query
// parameter value.
func (f Filter) String() string {
	return f.expr
}
