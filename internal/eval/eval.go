package eval

import (
	"fmt"
	"math/big"

	"tonarb/internal/cycle"
)

// Strategy names a profitability test.
type Strategy string

const (
	// StrategyRateProduct accepts a cycle when the fee-adjusted product
	// of marginal exchange rates exceeds 1. Fee is folded into every
	// hop once, so the threshold is uniform.
	StrategyRateProduct Strategy = "rate-product"
	// StrategySimulate chains the constant-product swap formula for a
	// concrete trade size and accepts when the round trip returns more
	// than it consumed with every hop's price impact within bound.
	StrategySimulate Strategy = "simulate"
)

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyRateProduct, StrategySimulate:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Candidate is an accepted arbitrage opportunity.
type Candidate struct {
	Path        []string       // hops+1 addresses, first == last == base
	Venues      []string       // venue per hop
	RateProduct *big.Rat       // fee-adjusted, exact
	HopReserves [][2]*big.Int  // (reserve_from, reserve_to) per hop
	HopImpacts  []float64      // price impact per hop for AmountIn
	AmountIn    *big.Int
	AmountOut   *big.Int
}

// RateFloat converts the exact rate product for reporting.
func (c *Candidate) RateFloat() float64 {
	f, _ := c.RateProduct.Float64()
	return f
}

type Evaluator struct {
	Strategy    Strategy
	TradeAmount *big.Int
	MaxImpact   float64
}

// Evaluate prices one cycle. Returns the candidate when the strategy
// accepts it, (nil, nil) when it rejects, and *DegenerateEdgeError
// when any hop has a zero reserve.
func (ev *Evaluator) Evaluate(c cycle.Cycle) (*Candidate, error) {
	rate, err := RateProduct(c)
	if err != nil {
		return nil, err
	}
	trade, err := Simulate(c, ev.TradeAmount)
	if err != nil {
		return nil, err
	}

	switch ev.Strategy {
	case StrategySimulate:
		if trade.AmountOut.Cmp(ev.TradeAmount) <= 0 {
			return nil, nil
		}
		for _, im := range trade.Impacts {
			if im >= ev.MaxImpact {
				return nil, nil
			}
		}
	default: // rate-product
		if rate.Cmp(ratOne) <= 0 {
			return nil, nil
		}
	}

	reserves := make([][2]*big.Int, len(c.Hops))
	venues := make([]string, len(c.Hops))
	for i, h := range c.Hops {
		reserves[i] = [2]*big.Int{h.ReserveFrom, h.ReserveTo}
		venues[i] = h.Venue
	}
	return &Candidate{
		Path:        c.Path(),
		Venues:      venues,
		RateProduct: rate,
		HopReserves: reserves,
		HopImpacts:  trade.Impacts,
		AmountIn:    new(big.Int).Set(ev.TradeAmount),
		AmountOut:   trade.AmountOut,
	}, nil
}

var ratOne = big.NewRat(1, 1)

// RateProduct computes the exact fee-adjusted product of marginal
// rates over the cycle: Π(reserve_to_i / reserve_from_i) · Π(fee_i).
// Numerator and denominator stay big-integer products throughout;
// nothing is rounded until the caller asks for a float.
func RateProduct(c cycle.Cycle) (*big.Rat, error) {
	prod := new(big.Rat).Set(ratOne)
	hop := new(big.Rat)
	for i, h := range c.Hops {
		if h.ReserveFrom.Sign() == 0 || h.ReserveTo.Sign() == 0 {
			return nil, &DegenerateEdgeError{Pool: h.Pool, Hop: i}
		}
		hop.SetFrac(h.ReserveTo, h.ReserveFrom)
		prod.Mul(prod, hop)
		prod.Mul(prod, h.FeeMultiplier())
	}
	return prod, nil
}

// Trade is the result of simulating a concrete amount through a cycle.
type Trade struct {
	AmountOut *big.Int
	Impacts   []float64
}

// Simulate chains the constant-product swap formula hop by hop,
// carrying each hop's output forward as the next hop's input. The
// venue fee is taken from the input amount before the swap. Per-hop
// price impact compares the realized rate amount_out/effective_in
// against the marginal rate reserve_to/reserve_from; both are
// same-unit quantities, so the impact is dimensionless.
func Simulate(c cycle.Cycle, amountIn *big.Int) (*Trade, error) {
	impacts := make([]float64, 0, len(c.Hops))
	amount := new(big.Int).Set(amountIn)

	for i, h := range c.Hops {
		if h.ReserveFrom.Sign() == 0 || h.ReserveTo.Sign() == 0 {
			return nil, &DegenerateEdgeError{Pool: h.Pool, Hop: i}
		}

		// effective input after the venue keeps its fee
		effIn := new(big.Int).Mul(amount, big.NewInt(10000-h.FeeBps))
		effIn.Quo(effIn, big.NewInt(10000))

		if effIn.Sign() == 0 {
			// too small to trade; everything from here on is lost
			impacts = append(impacts, 1)
			amount.SetInt64(0)
			continue
		}

		// amount_out = reserve_to - (reserve_from * reserve_to) / (reserve_from + eff_in)
		denom := new(big.Int).Add(h.ReserveFrom, effIn)
		k := new(big.Int).Mul(h.ReserveFrom, h.ReserveTo)
		out := new(big.Int).Sub(h.ReserveTo, k.Quo(k, denom))
		if out.Sign() < 0 {
			out.SetInt64(0)
		}

		impacts = append(impacts, impact(h.ReserveFrom, h.ReserveTo, effIn, out))
		amount = out
	}
	return &Trade{AmountOut: amount, Impacts: impacts}, nil
}

// impact = max(0, (ideal - realized) / ideal) with ideal = rTo/rFrom
// and realized = out/effIn, computed exactly before the final float
// conversion.
func impact(rFrom, rTo, effIn, out *big.Int) float64 {
	if out.Sign() == 0 {
		return 1
	}
	ideal := new(big.Rat).SetFrac(rTo, rFrom)
	realized := new(big.Rat).SetFrac(out, effIn)
	d := new(big.Rat).Sub(ideal, realized)
	d.Quo(d, ideal)
	f, _ := d.Float64()
	if f < 0 {
		return 0
	}
	return f
}

// ProfitPoint is one sample of the profit curve.
type ProfitPoint struct {
	AmountIn  *big.Int
	AmountOut *big.Int
	Profit    *big.Int // AmountOut - AmountIn, may be negative
}

// ProfitCurve evaluates a cycle over a ladder of trade sizes for
// sensitivity analysis.
func ProfitCurve(c cycle.Cycle, amounts []*big.Int) ([]ProfitPoint, error) {
	points := make([]ProfitPoint, 0, len(amounts))
	for _, a := range amounts {
		tr, err := Simulate(c, a)
		if err != nil {
			return nil, err
		}
		points = append(points, ProfitPoint{
			AmountIn:  new(big.Int).Set(a),
			AmountOut: tr.AmountOut,
			Profit:    new(big.Int).Sub(tr.AmountOut, a),
		})
	}
	return points, nil
}
