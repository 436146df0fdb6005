package dedust

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"

	"tonarb/internal/config"
	"tonarb/internal/dex"
	"tonarb/internal/infra/network"
)

type Source struct {
	cfg    config.Config
	http   *http.Client
	bucket *network.TokenBucket
}

func New(cfg config.Config) *Source {
	return &Source{cfg: cfg, http: network.NewHTTPClient(), bucket: network.NewTokenBucket(5, 1.0)}
}

func (s *Source) Name() string { return "dedust" }

type asset struct {
	Type     string `json:"type"`
	Address  string `json:"address"`
	Metadata *struct {
		Name   string `json:"name"`
		Symbol string `json:"symbol"`
	} `json:"metadata"`
}

type poolDTO struct {
	Address  string   `json:"address"`
	Assets   []asset  `json:"assets"`
	Reserves []string `json:"reserves"`
}

func (s *Source) FetchPools(ctx context.Context) ([]dex.Pool, error) {
	if err := s.bucket.Wait(ctx); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v2/pools", s.cfg.Venues.Dedust.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dedust pools: unexpected status %d", resp.StatusCode)
	}
	var dtos []poolDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("dedust pools: decode: %w", err)
	}

	pools := make([]dex.Pool, 0, len(dtos))
	for _, d := range dtos {
		if len(d.Assets) != 2 || len(d.Reserves) != 2 {
			continue
		}
		r0, ok0 := new(big.Int).SetString(d.Reserves[0], 10)
		r1, ok1 := new(big.Int).SetString(d.Reserves[1], 10)
		if !ok0 || !ok1 || r0.Sign() < 0 || r1.Sign() < 0 {
			continue
		}
		pools = append(pools, dex.Pool{
			Address:  d.Address,
			Token0:   s.token(d.Assets[0]),
			Token1:   s.token(d.Assets[1]),
			Reserve0: r0,
			Reserve1: r1,
			Venue:    s.Name(),
		})
	}
	return pools, nil
}

func (s *Source) token(a asset) *dex.Token {
	t := &dex.Token{
		Native:  a.Type == "native",
		Address: a.Address,
		Venues:  []string{s.Name()},
	}
	if t.Native {
		// native legs carry no address; unify on the base sentinel
		t.Address = s.cfg.Scan.BaseAsset
		t.Symbol = s.cfg.Scan.BaseSymbol
	}
	if a.Metadata != nil {
		t.Name = a.Metadata.Name
		if t.Symbol == "" {
			t.Symbol = a.Metadata.Symbol
		}
	}
	return t
}
