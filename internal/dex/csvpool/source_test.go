package csvpool

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pools.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFetchPoolsFromSnapshot(t *testing.T) {
	path := writeSnapshot(t, `address,venue,token0,token1,symbol0,symbol1,reserve0,reserve1
pool-1,dedust,EQTon,EQScale,TON,SCALE,1000000,2000000
pool-2,stonfi,EQTon,EQUsdt,TON,USDT,5000000,9000000
`)
	src := New(path)
	pools, err := src.FetchPools(context.Background())
	require.NoError(t, err)
	require.Len(t, pools, 2)

	assert.Equal(t, "pool-1", pools[0].Address)
	assert.Equal(t, "dedust", pools[0].Venue)
	assert.Equal(t, "SCALE", pools[0].Token1.Symbol)
	assert.Equal(t, "1000000", pools[0].Reserve0.String())
	assert.Equal(t, "stonfi", pools[1].Venue)
}

func TestFetchPoolsBadReserves(t *testing.T) {
	path := writeSnapshot(t, "pool-1,dedust,EQTon,EQScale,TON,SCALE,oops,2000000\n")
	src := New(path)
	_, err := src.FetchPools(context.Background())
	assert.ErrorContains(t, err, "bad reserves on line 1")
}

func TestFetchPoolsMissingFile(t *testing.T) {
	src := New(filepath.Join(t.TempDir(), "nope.csv"))
	_, err := src.FetchPools(context.Background())
	assert.Error(t, err)
}

func TestFetchPoolsCancelled(t *testing.T) {
	path := writeSnapshot(t, "address,venue,token0,token1,symbol0,symbol1,reserve0,reserve1\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(path).FetchPools(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
