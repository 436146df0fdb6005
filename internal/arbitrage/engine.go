package arbitrage

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"tonarb/internal/config"
	"tonarb/internal/cycle"
	"tonarb/internal/dex"
	"tonarb/internal/eval"
	"tonarb/internal/graph"
	"tonarb/internal/infra/log"
	"tonarb/internal/infra/metrics"
	"tonarb/internal/report"
)

type Engine struct {
	cfg     config.Config
	sources []dex.Source
	logger  log.Logger
}

// ScanResult is one full pass over all venues.
type ScanResult struct {
	Candidates  []*eval.Candidate
	Tokens      map[string]*dex.Token
	NodesBefore int // pre-reduction node count
	NodesAfter  int // post-reduction node count
	Cycles      int // cycles enumerated
}

func New(cfg config.Config, sources []dex.Source, logger log.Logger) *Engine {
	return &Engine{cfg: cfg, sources: sources, logger: logger}
}

// Run scans immediately, then on every interval tick until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.scanAndReport(ctx); err != nil {
		return err
	}
	t := time.NewTicker(time.Duration(e.cfg.Scan.IntervalSeconds) * time.Second)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if err := e.scanAndReport(ctx); err != nil {
				return err
			}
		}
	}
}

func (e *Engine) scanAndReport(ctx context.Context) error {
	start := time.Now()
	res, err := e.ScanOnce(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	metrics.ScansTotal.Inc()
	metrics.ScanDurationMs.Observe(float64(time.Since(start).Milliseconds()))

	e.logger.Info().
		Int("nodes_before", res.NodesBefore).
		Int("nodes_after", res.NodesAfter).
		Int("cycles", res.Cycles).
		Int("candidates", len(res.Candidates)).
		Dur("took", time.Since(start)).
		Msg("scan complete")

	top := e.cfg.Scan.TopCandidates
	if top > len(res.Candidates) {
		top = len(res.Candidates)
	}
	for _, row := range report.Rows(res.Candidates[:top], res.Tokens) {
		e.logger.Info().
			Str("path", row.Path).
			Str("venues", row.Venues).
			Str("rate_product", row.RateProduct.String()).
			Str("profit", row.Profit).
			Float64("max_impact", row.MaxImpact).
			Msg("arbitrage candidate")
	}

	if path := e.cfg.Scan.ReportCSV; path != "" && len(res.Candidates) > 0 {
		csv := report.RenderCSV(report.Rows(res.Candidates, res.Tokens))
		if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
			e.logger.Error().Err(err).Str("path", path).Msg("failed to write CSV report")
		}
	}
	return nil
}

// ScanOnce fetches pool snapshots from every source and runs the full
// build -> reduce -> enumerate -> evaluate pipeline. Zero candidates
// is a normal outcome; errors mean the scan itself could not run.
func (e *Engine) ScanOnce(ctx context.Context) (*ScanResult, error) {
	hops := e.cfg.Scan.Hops
	if hops < 2 || hops > e.cfg.Scan.MaxHops {
		return nil, fmt.Errorf("hop count %d out of range [2, %d]", hops, e.cfg.Scan.MaxHops)
	}
	strategy, err := eval.ParseStrategy(e.cfg.Scan.Strategy)
	if err != nil {
		return nil, err
	}
	tradeAmount, ok := new(big.Int).SetString(e.cfg.Scan.TradeAmount, 10)
	if !ok || tradeAmount.Sign() < 0 {
		return nil, fmt.Errorf("invalid trade amount %q", e.cfg.Scan.TradeAmount)
	}

	registry := dex.NewRegistry()
	var pools []dex.Pool
	for _, src := range e.sources {
		ctxTO, cancel := context.WithTimeout(ctx, 30*time.Second)
		fetched, err := src.FetchPools(ctxTO)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			metrics.PoolFetchErrorsTotal.WithLabelValues(src.Name()).Inc()
			e.logger.Warn().Err(err).Str("venue", src.Name()).Msg("pool fetch failed; venue skipped this scan")
			continue
		}
		metrics.PoolsFetchedTotal.WithLabelValues(src.Name()).Add(float64(len(fetched)))
		e.logger.Debug().Str("venue", src.Name()).Int("pools", len(fetched)).Msg("pools fetched")
		pools = append(pools, registry.Merge(fetched)...)
	}
	metrics.TokensTracked.Set(float64(registry.Len()))

	g, malformed := graph.Build(registry.Tokens(), pools, e.cfg.FeeBps)
	for _, err := range malformed {
		metrics.MalformedPoolsTotal.Inc()
		e.logger.Warn().Err(err).Msg("malformed pool skipped")
	}
	metrics.GraphNodes.Set(float64(g.NodeCount()))
	metrics.GraphEdges.Set(float64(g.EdgeCount()))

	reduced, before, after := g.Reduce()
	metrics.GraphNodesReduced.Set(float64(after))
	e.logger.Info().Int("before", before).Int("after", after).Msg("search space reduced")

	res := &ScanResult{Tokens: registry.Tokens(), NodesBefore: before, NodesAfter: after}
	if after > e.cfg.Scan.MaxNodes {
		return nil, fmt.Errorf("reduced graph has %d nodes, cap is %d; raise max_nodes or narrow the venues", after, e.cfg.Scan.MaxNodes)
	}
	if !reduced.HasNode(e.cfg.Scan.BaseAsset) {
		e.logger.Info().Str("base", e.cfg.Scan.BaseAsset).Msg("base asset absent from reduced graph; nothing to scan")
		return res, nil
	}

	evaluator := &eval.Evaluator{Strategy: strategy, TradeAmount: tradeAmount, MaxImpact: e.cfg.Scan.MaxImpact}
	for c := range cycle.Enumerate(ctx, reduced, e.cfg.Scan.BaseAsset, hops, e.cfg.Scan.Workers) {
		res.Cycles++
		metrics.CyclesEnumeratedTotal.Inc()
		cand, err := evaluator.Evaluate(c)
		if err != nil {
			var dee *eval.DegenerateEdgeError
			if errors.As(err, &dee) {
				metrics.CyclesDegenerateTotal.Inc()
				continue
			}
			return nil, err
		}
		if cand != nil {
			metrics.CandidatesFoundTotal.Inc()
			res.Candidates = append(res.Candidates, cand)
		}
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	report.SortByRate(res.Candidates)
	if len(res.Candidates) > 0 {
		metrics.RateProductBest.Set(res.Candidates[0].RateFloat())
	}
	return res, nil
}
