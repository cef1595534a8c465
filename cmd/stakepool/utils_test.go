// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"flag"
	"math"
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/ledger"
)

func TestReadIntFromUInt64Flag(t *testing.T) {
	tests := []struct {
		input   uint64
		want    int
		wantErr bool
	}{
		{0, 0, false},
		{3, 3, false},
		{math.MaxInt, math.MaxInt, false},
		{math.MaxInt + 1, 0, true},
		{math.MaxUint64, 0, true},
	}
	for _, tt := range tests {
		got, err := readIntFromUInt64Flag(tt.input)
		if tt.wantErr {
			assert.Error(t, err, tt.input)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestNormalizeCacheSize(t *testing.T) {
	assert.Equal(t, 128, normalizeCacheSize(1), "raised to the floor")
	assert.LessOrEqual(t, normalizeCacheSize(math.MaxInt32), math.MaxInt32)
}

func TestSuggestFDCache(t *testing.T) {
	n := suggestFDCache()
	assert.Positive(t, n)
	assert.LessOrEqual(t, n, 5120)
}

func TestDefaultDataDir(t *testing.T) {
	t.Setenv("HOME", "/home/someone")
	assert.Equal(t, filepath.Join("/home/someone", ".org.vechain.stakepool"), defaultDataDir())
}

func newContext(t *testing.T, args ...string) *cli.Context {
	set := flag.NewFlagSet("test", flag.ContinueOnError)
	dataDirFlag.Apply(set)
	require.NoError(t, set.Parse(args))
	return cli.NewContext(nil, set, nil)
}

func TestMakeDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	got, err := makeDataDir(newContext(t, "--data-dir", dir))
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, dir)

	_, err = makeDataDir(newContext(t, "--data-dir", ""))
	assert.ErrorContains(t, err, "unable to infer default data dir")
}

func TestPrintStartupMessage(t *testing.T) {
	var buf bytes.Buffer
	printStartupMessage(&buf, "/data",
		ledger.Head{Tick: 7, Revision: 3},
		ledger.Globals{EmissionPerTick: big.NewInt(100), StartTick: 1, PoolCount: 2},
		"http://localhost:8679/", "", "http://localhost:2113/admin")

	out := buf.String()
	assert.Contains(t, out, "revision #3 @tick 7, 2 pools")
	assert.Contains(t, out, "100 per tick from tick 1")
	assert.Contains(t, out, "Metrics      [ Disabled ]")
	assert.Contains(t, out, "Admin        [ http://localhost:2113/admin ]")
}
