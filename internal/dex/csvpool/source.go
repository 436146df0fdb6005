package csvpool

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math/big"
	"os"

	"tonarb/internal/dex"
)

// Offline pool source for replaying saved snapshots through the same
// pipeline as live venues.
// CSV format: address,venue,token0,token1,symbol0,symbol1,reserve0,reserve1

type Source struct {
	path string
}

func New(path string) *Source { return &Source{path: path} }

func (s *Source) Name() string { return "csv" }

func (s *Source) FetchPools(ctx context.Context) ([]dex.Pool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	var pools []dex.Pool
	line := 0
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if line == 1 && rec[0] == "address" {
			continue // header
		}
		if len(rec) < 8 {
			continue
		}
		r0, ok0 := new(big.Int).SetString(rec[6], 10)
		r1, ok1 := new(big.Int).SetString(rec[7], 10)
		if !ok0 || !ok1 {
			return nil, fmt.Errorf("csv pools: bad reserves on line %d", line)
		}
		venue := rec[1]
		pools = append(pools, dex.Pool{
			Address:  rec[0],
			Token0:   &dex.Token{Address: rec[2], Symbol: rec[4], Venues: []string{venue}},
			Token1:   &dex.Token{Address: rec[3], Symbol: rec[5], Venues: []string{venue}},
			Reserve0: r0,
			Reserve1: r1,
			Venue:    venue,
		})
	}
	return pools, nil
}
