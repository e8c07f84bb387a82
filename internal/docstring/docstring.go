// Package docstring parses docstrings extracted from compiled extension
// modules.
//
// Automatic binding generators represent multiple call signatures under one
// symbol by emitting a single synthetic docstring: a signature line, a
// literal "Overloaded function." marker line, then an enumerated list of
// "N. signature" blocks. Parse splits such a docstring into discrete
// per-overload fragments so that each overload can be documented on its own
// page.
//
// Each overload may carry an explicit identifier embedded in its fragment as
//
//	Overload:
//	   xxx
//
// which is used to build stable page names and cross-reference targets.
package docstring

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apierrors "git.home.luguber.info/inful/apigen/internal/errors"
)

// ParsedOverload is one overload extracted from a docstring.
//
// For non-overloaded symbols this represents the symbol itself: Doc is the
// original docstring (with any Overload: field stripped) and OverloadID is
// the explicit id, if present.
type ParsedOverload struct {
	// Doc is the docstring fragment for this overload. The first line is the
	// signature. Nil when the symbol has no docstring at all.
	Doc *string

	// OverloadID identifies the overload among its siblings. Empty when
	// there is exactly one overload and no explicit id was given. When a
	// docstring enumerates multiple overloads and one omits its id, the
	// 1-based position (as a decimal string) is used instead.
	OverloadID string
}

var overloadedFunctionRe = regexp.MustCompile(`^([^(]+)\([^\n]*\nOverloaded function\.\n`)

// ExtractField removes the first occurrence of a block field of the form
//
//	<blank line>
//	Field:
//	   value
//	<blank line>
//
// from doc and returns the remaining text together with the trimmed value.
// If the field is absent, doc is returned unchanged with an empty value.
func ExtractField(doc string, field string) (string, string) {
	pattern := regexp.MustCompile(`\n\s*\n` + regexp.QuoteMeta(field) + `:\s*\n\s+([^\n]+)\n`)
	m := pattern.FindStringSubmatchIndex(doc)
	if m == nil {
		return doc, ""
	}
	start, end := m[0], m[1]
	value := strings.TrimSpace(doc[m[2]:m[3]])
	return doc[:start] + "\n\n" + doc[end:], value
}

// Parse splits a docstring into its overloads.
//
// If doc is nil or does not follow the overloaded-function convention, the
// result is a single entry. Otherwise one entry per enumerated overload is
// returned, in source order, each fragment reassembled as a complete
// single-signature docstring ("name(sig)\nbody").
//
// Parse returns an error when the overload marker is present but the
// enumerated blocks do not follow the expected grammar. There is no
// partial-result fallback.
func Parse(doc *string) ([]ParsedOverload, error) {
	if doc == nil {
		return []ParsedOverload{{Doc: nil, OverloadID: ""}}, nil
	}

	m := overloadedFunctionRe.FindStringSubmatch(*doc)
	if m == nil {
		// Non-overloaded symbol
		remaining, overloadID := ExtractField(*doc, "Overload")
		return []ParsedOverload{{Doc: &remaining, OverloadID: overloadID}}, nil
	}

	displayName := m[1]
	rest := (*doc)[len(m[0]):]

	index := 1
	prefix := overloadPrefix(index, displayName)
	var parts []ParsedOverload
	for rest != "" {
		if !strings.HasPrefix(rest, prefix) {
			return nil, formatError(displayName, prefix, rest)
		}
		rest = rest[len(prefix)-1:] // retain the signature's opening paren
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			return nil, formatError(displayName, "\n", rest)
		}
		partSig := rest[:nl]
		rest = rest[nl+1:]

		index++
		prefix = overloadPrefix(index, displayName)
		var part string
		if end := strings.Index(rest, prefix); end >= 0 {
			part = rest[:end]
			rest = rest[end:]
		} else {
			part = rest
			rest = ""
		}

		part, overloadID := ExtractField(part, "Overload")
		if overloadID == "" {
			// Fallback to the 1-based position. This is indistinguishable from
			// an explicit numeric id chosen by the author; collisions are not
			// detected here.
			overloadID = strconv.Itoa(index - 1)
		}

		partDoc := displayName + partSig + "\n" + part
		parts = append(parts, ParsedOverload{Doc: &partDoc, OverloadID: overloadID})
	}
	return parts, nil
}

func overloadPrefix(index int, displayName string) string {
	return fmt.Sprintf("\n%d. %s(", index, displayName)
}

func formatError(symbol, expected, remaining string) error {
	return apierrors.DocstringFormatError(symbol, "enumerated overload grammar violated").
		WithContext("expected", expected).
		WithContext("remaining", remaining)
}
