package report

import (
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"tonarb/internal/dex"
	"tonarb/internal/eval"
)

// Row is one candidate flattened for export. Addresses are replaced
// with display symbols where the token registry knows them.
type Row struct {
	Path        string
	Venues      string
	RateProduct decimal.Decimal
	AmountIn    string
	AmountOut   string
	Profit      string
	MaxImpact   float64
}

const ratePrecision = 12

// Rows converts candidates into export rows using the registry for
// display names.
func Rows(cands []*eval.Candidate, tokens map[string]*dex.Token) []Row {
	return lo.Map(cands, func(c *eval.Candidate, _ int) Row {
		names := lo.Map(c.Path, func(addr string, _ int) string {
			if t, ok := tokens[addr]; ok {
				return t.Display()
			}
			return addr
		})
		profit := "0"
		if c.AmountIn != nil && c.AmountOut != nil {
			profit = decimal.NewFromBigInt(c.AmountOut, 0).Sub(decimal.NewFromBigInt(c.AmountIn, 0)).String()
		}
		return Row{
			Path:        strings.Join(names, " -> "),
			Venues:      strings.Join(c.Venues, ","),
			RateProduct: decimal.NewFromBigRat(c.RateProduct, ratePrecision),
			AmountIn:    c.AmountIn.String(),
			AmountOut:   c.AmountOut.String(),
			Profit:      profit,
			MaxImpact:   lo.Max(c.HopImpacts),
		}
	})
}

// SortByRate orders candidates best-first by exact rate product.
func SortByRate(cands []*eval.Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].RateProduct.Cmp(cands[j].RateProduct) > 0
	})
}
