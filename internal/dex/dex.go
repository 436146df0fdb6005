package dex

import (
	"context"
	"math/big"
	"sort"
)

// Token is the identity of a tradable asset. Address is the primary
// key; Name/Symbol are display metadata and may be empty when the
// venue API exposes none.
type Token struct {
	Native  bool
	Address string
	Name    string
	Symbol  string
	Venues  []string
}

// AddVenue tags the token with a venue, keeping Venues deduplicated.
func (t *Token) AddVenue(venue string) {
	for _, v := range t.Venues {
		if v == venue {
			return
		}
	}
	t.Venues = append(t.Venues, venue)
}

// Display returns symbol when known, else the raw address.
func (t *Token) Display() string {
	if t.Symbol != "" {
		return t.Symbol
	}
	return t.Address
}

// Pool is a liquidity pair on one venue. Reserves are on-chain amounts
// in the asset's smallest unit; big.Int because profitability math
// multiplies three of them together.
type Pool struct {
	Address  string
	Token0   *Token
	Token1   *Token
	Reserve0 *big.Int
	Reserve1 *big.Int
	Venue    string
}

// Source supplies pool snapshots for one venue.
type Source interface {
	Name() string
	FetchPools(ctx context.Context) ([]Pool, error)
}

// Registry owns the canonical token records accumulated across
// sources. Merging rewrites pool token pointers to the owned records
// and grows each record's venue set monotonically, so the same
// address observed on two venues stays a single node.
type Registry struct {
	tokens map[string]*Token
}

func NewRegistry() *Registry {
	return &Registry{tokens: make(map[string]*Token)}
}

// Merge canonicalizes the tokens referenced by pools and returns the
// pools with their token pointers rewritten to registry-owned records.
func (r *Registry) Merge(pools []Pool) []Pool {
	for i := range pools {
		pools[i].Token0 = r.merge(pools[i].Token0, pools[i].Venue)
		pools[i].Token1 = r.merge(pools[i].Token1, pools[i].Venue)
	}
	return pools
}

func (r *Registry) merge(t *Token, venue string) *Token {
	existing, ok := r.tokens[t.Address]
	if !ok {
		owned := &Token{Native: t.Native, Address: t.Address, Name: t.Name, Symbol: t.Symbol}
		for _, v := range t.Venues {
			owned.AddVenue(v)
		}
		owned.AddVenue(venue)
		r.tokens[t.Address] = owned
		return owned
	}
	// later sources may carry metadata the first one lacked
	if existing.Name == "" {
		existing.Name = t.Name
	}
	if existing.Symbol == "" {
		existing.Symbol = t.Symbol
	}
	for _, v := range t.Venues {
		existing.AddVenue(v)
	}
	existing.AddVenue(venue)
	return existing
}

// Tokens returns the owned address -> token mapping.
func (r *Registry) Tokens() map[string]*Token { return r.tokens }

func (r *Registry) Len() int { return len(r.tokens) }

// Addresses returns all token addresses in sorted order.
func (r *Registry) Addresses() []string {
	out := make([]string, 0, len(r.tokens))
	for a := range r.tokens {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}
