// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLRU(t *testing.T) {
	_, err := NewLRU("bad", 0)
	assert.Error(t, err)

	c, err := NewLRU("ok", 2)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestGetOrLoad(t *testing.T) {
	c, err := NewLRU("test", 2)
	require.NoError(t, err)

	loads := 0
	loader := func(key any) (any, error) {
		loads++
		return key.(int) * 10, nil
	}

	for range 3 {
		v, err := c.GetOrLoad(1, loader)
		require.NoError(t, err)
		assert.Equal(t, 10, v)
	}
	assert.Equal(t, 1, loads)

	hit, miss := c.Stats()
	assert.Equal(t, int64(2), hit)
	assert.Equal(t, int64(1), miss)

	// evicts key 1
	c.GetOrLoad(2, loader)
	c.GetOrLoad(3, loader)
	assert.False(t, c.Contains(1))
	assert.Equal(t, 3, loads)
}

func TestLogStats(t *testing.T) {
	c, err := NewLRU("test", 4)
	require.NoError(t, err)
	load := func(key any) (any, error) { return key, nil }

	assert.False(t, c.LogStats())
	c.GetOrLoad(1, load)
	c.GetOrLoad(1, load)
	assert.True(t, c.LogStats())
	assert.False(t, c.LogStats())

	c.GetOrLoad(1, load)
	assert.True(t, c.LogStats())
}

func TestGetOrLoadError(t *testing.T) {
	c, err := NewLRU("test", 2)
	require.NoError(t, err)

	boom := errors.New("boom")
	_, err = c.GetOrLoad("k", func(any) (any, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, c.Contains("k"))
}
