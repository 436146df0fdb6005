package stonfi

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

func (s *Source) Name() string { return "stonfi" }

type poolDTO struct {
	Address       string `json:"address"`
	Token0Address string `json:"token0_address"`
	Token1Address string `json:"token1_address"`
	Reserve0      string `json:"reserve0"`
	Reserve1      string `json:"reserve1"`
}

func (s *Source) FetchPools(ctx context.Context) ([]dex.Pool, error) {
	if err := s.bucket.Wait(ctx); err != nil {
		return nil, err
	}
	url := fmt.Sprintf("%s/v1/pools", s.cfg.Venues.Stonfi.BaseURL)
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
		return nil, fmt.Errorf("stonfi pools: unexpected status %d", resp.StatusCode)
	}
	var body struct {
		PoolList []poolDTO `json:"pool_list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("stonfi pools: decode: %w", err)
	}

	pools := make([]dex.Pool, 0, len(body.PoolList))
	for _, d := range body.PoolList {
		r0, ok0 := new(big.Int).SetString(d.Reserve0, 10)
		r1, ok1 := new(big.Int).SetString(d.Reserve1, 10)
		if !ok0 || !ok1 || r0.Sign() < 0 || r1.Sign() < 0 {
			continue
		}
		// STON.fi exposes no token metadata here; the registry merge
		// fills names in when another venue knows the address.
		pools = append(pools, dex.Pool{
			Address:  d.Address,
			Token0:   &dex.Token{Address: d.Token0Address, Venues: []string{s.Name()}},
			Token1:   &dex.Token{Address: d.Token1Address, Venues: []string{s.Name()}},
			Reserve0: r0,
			Reserve1: r1,
			Venue:    s.Name(),
		})
	}
	return pools, nil
}
