// Package currency classifies the currency codes the transfer engine
// accepts and decides how a pair is routed to a rate provider.
package currency

import "strings"

// Code is an upper-case currency or token code such as "USD" or "USDT".
type Code string

func (c Code) String() string { return string(c) }

// Normalize upper-cases raw user input into a Code.
func Normalize(s string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(s)))
}

// Set is a case-insensitive membership set of currency codes.
type Set map[Code]struct{}

// NewSet builds a Set from a list of codes, normalizing each.
func NewSet(codes ...string) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s[Normalize(c)] = struct{}{}
	}
	return s
}

// Has reports membership, case-insensitively.
func (s Set) Has(code string) bool {
	_, ok := s[Normalize(code)]
	return ok
}

// List returns the codes of the set in unspecified order.
func (s Set) List() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c.String())
	}
	return out
}

// PairKind tells the resolver which provider serves a currency pair.
type PairKind int

const (
	// PairIdentity is a same-currency pair; rate is always 1.0.
	PairIdentity PairKind = iota
	// PairFiat is quoted by the fiat provider, triangulating when needed.
	PairFiat
	// PairToken is a token quoted against the settlement fiat.
	PairToken
	// PairTokenInverse is a settlement-fiat-to-token pair; the provider
	// only supports the token as base, so the forward quote is inverted.
	PairTokenInverse
	// PairDirect is any other pair, attempted as a direct query.
	PairDirect
)

// Table routes pairs to providers. Which token pairs invert rather than
// query directly is configuration, not inference; see NewTable.
type Table struct {
	fiat    Set
	tokens  Set
	inverse map[[2]Code]struct{}
}

// NewTable builds a routing table. inversePairs lists "FROM:TO" pairs
// (settlement fiat to token) answered by inverting the forward quote.
func NewTable(fiat, tokens Set, inversePairs []string) *Table {
	t := &Table{
		fiat:    fiat,
		tokens:  tokens,
		inverse: make(map[[2]Code]struct{}, len(inversePairs)),
	}
	for _, p := range inversePairs {
		from, to, ok := strings.Cut(p, ":")
		if !ok {
			continue
		}
		t.inverse[[2]Code{Normalize(from), Normalize(to)}] = struct{}{}
	}
	return t
}

// Fiat returns the fiat currency set.
func (t *Table) Fiat() Set { return t.fiat }

// Tokens returns the crypto token set.
func (t *Table) Tokens() Set { return t.tokens }

// Classify decides how the (from, to) pair is served.
func (t *Table) Classify(from, to Code) PairKind {
	from, to = Normalize(from.String()), Normalize(to.String())
	switch {
	case from == to:
		return PairIdentity
	case t.fiat.Has(from.String()) && t.fiat.Has(to.String()):
		return PairFiat
	case t.tokens.Has(from.String()) && t.fiat.Has(to.String()):
		return PairToken
	default:
		if _, ok := t.inverse[[2]Code{from, to}]; ok {
			return PairTokenInverse
		}
		return PairDirect
	}
}
