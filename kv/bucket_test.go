// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/kv"
	"github.com/vechain/stakepool/lvldb"
)

func TestBucket(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	pools := kv.Bucket("p").NewStore(db)
	positions := kv.Bucket("u").NewStore(db)

	require.NoError(t, pools.Put([]byte("1"), []byte("one")))
	require.NoError(t, positions.Put([]byte("1"), []byte("uno")))

	v, err := pools.Get([]byte("1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), v)

	raw, err := db.Get([]byte("u1"))
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), raw)

	_, err = pools.Get([]byte("2"))
	assert.True(t, pools.IsNotFound(err))

	has, err := positions.Has([]byte("1"))
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, positions.Delete([]byte("1")))
	has, err = positions.Has([]byte("1"))
	require.NoError(t, err)
	assert.False(t, has)
}

func TestBucketSharedBatch(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	batch := db.NewBatch()
	a := kv.Bucket("a").NewBatch(batch)
	b := kv.Bucket("b").NewBatch(batch)
	require.NoError(t, a.Put([]byte("k"), []byte("1")))
	require.NoError(t, b.Put([]byte("k"), []byte("2")))
	assert.Equal(t, 2, a.Len())

	has, err := db.Has([]byte("ak"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, b.Write())
	v, err := db.Get([]byte("bk"))
	require.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestBucketIterate(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.Put([]byte("a0"), []byte("x")))
	require.NoError(t, db.Put([]byte("c0"), []byte("x")))
	bucket := kv.Bucket("b").NewStore(db)
	for _, k := range []string{"3", "1", "2", "4"} {
		require.NoError(t, bucket.Put([]byte(k), []byte("v"+k)))
	}

	collect := func(r kv.Range) (keys []string) {
		it := bucket.Iterate(r)
		defer it.Release()
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Error())
		return
	}
	assert.Equal(t, []string{"1", "2", "3", "4"}, collect(kv.Range{}))
	assert.Equal(t, []string{"2", "3"}, collect(kv.Range{Start: []byte("2"), Limit: []byte("4")}))
	assert.Equal(t, []string{"3", "4"}, collect(kv.Range{Start: []byte("3")}))
}
