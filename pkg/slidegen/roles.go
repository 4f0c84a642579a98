package slidegen

import "strings"

// Role classifies a template slide.
type Role int

const (
	// RoleStatic slides are passed through unchanged. Fallback when no known
	// token is found.
	RoleStatic Role = iota
	// RoleIndividual slides produce one output slide per input record.
	RoleIndividual
	// RoleSummary slides produce one output slide per page of ranked totals.
	RoleSummary
)

func (r Role) String() string {
	switch r {
	case RoleIndividual:
		return "individual"
	case RoleSummary:
		return "summary"
	case RoleStatic:
		return "static"
	default:
		return "unknown"
	}
}

// TokenSet is the set of known placeholder tokens found in a slide's text.
type TokenSet map[string]bool

// RolePolicy decides a slide's role from its extracted token set. It is a
// pure function, independent of document I/O, so classification rules can be
// swapped and tested in isolation.
type RolePolicy func(tokens TokenSet) Role

// ExtractTokens scans concatenated slide text for literal {{token}}
// occurrences of the known tokens: the field-map tokens plus the summary
// tokens (start date, end date and group total).
func ExtractTokens(text string, fields FieldMap) TokenSet {
	tokens := make(TokenSet)
	scan := func(token string) {
		if strings.Contains(text, "{{"+token+"}}") {
			tokens[token] = true
		}
	}
	for token := range fields {
		scan(token)
	}
	scan(TokenStartDate)
	scan(TokenEndDate)
	scan(TokenTotal)
	return tokens
}

// DefaultRolePolicy is the standard classification rule. Per-record tokens
// mark a slide individual, unless the summary date token is also present, in
// which case summary wins. A slide with only summary tokens is summary.
// Anything else is static.
func DefaultRolePolicy(tokens TokenSet) Role {
	individual := false
	for _, token := range individualTokens() {
		if tokens[token] {
			individual = true
			break
		}
	}
	if individual {
		if tokens[TokenStartDate] {
			return RoleSummary
		}
		return RoleIndividual
	}
	if tokens[TokenStartDate] || tokens[TokenTotal] {
		return RoleSummary
	}
	return RoleStatic
}
