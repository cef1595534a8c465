// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fixedpoint

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/stakepool/reverts"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

func TestFromBig(t *testing.T) {
	_, err := FromBig(nil)
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	_, err = FromBig(big.NewInt(-1))
	assert.ErrorIs(t, err, reverts.ErrInvalidAmount)

	_, err = FromBig(new(big.Int).Add(maxUint256, big.NewInt(1)))
	assert.ErrorIs(t, err, reverts.ErrOverflow)

	v, err := FromBig(maxUint256)
	require.NoError(t, err)
	assert.Equal(t, maxUint256, v.ToBig())

	assert.True(t, Valid(big.NewInt(0)))
	assert.False(t, Valid(big.NewInt(-5)))
}

func TestAddSub(t *testing.T) {
	sum, err := Add(big.NewInt(40), big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(42), sum)

	_, err = Add(maxUint256, big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrOverflow)

	diff, err := Sub(big.NewInt(42), big.NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(40), diff)

	_, err = Sub(big.NewInt(1), big.NewInt(2))
	assert.Error(t, err)
}

func TestMulDiv(t *testing.T) {
	tests := []struct {
		name     string
		x, y, d  *big.Int
		expected *big.Int
	}{
		{"exact", big.NewInt(10), big.NewInt(10), big.NewInt(4), big.NewInt(25)},
		{"truncates", big.NewInt(10), big.NewInt(1), big.NewInt(3), big.NewInt(3)},
		{"zero operand", big.NewInt(0), big.NewInt(7), big.NewInt(3), big.NewInt(0)},
		// the product overflows 256 bits, the quotient does not
		{"wide intermediate", maxUint256, big.NewInt(6), big.NewInt(12), new(big.Int).Rsh(maxUint256, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MulDiv(tt.x, tt.y, tt.d)
			require.NoError(t, err)
			assert.Equal(t, tt.expected.String(), got.String())
		})
	}

	_, err := MulDiv(big.NewInt(1), big.NewInt(1), big.NewInt(0))
	assert.Error(t, err)

	_, err = MulDiv(maxUint256, big.NewInt(2), big.NewInt(1))
	assert.ErrorIs(t, err, reverts.ErrOverflow)
}

func TestEmission(t *testing.T) {
	// 10 ticks at 1000 per tick, pool holds the entire weight
	got, err := Emission(10, big.NewInt(1000), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10000), got)

	// weight 100 of 150 and weight 50 of 150
	heavy, err := Emission(3, big.NewInt(1000), 100, 150)
	require.NoError(t, err)
	light, err := Emission(3, big.NewInt(1000), 50, 150)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(2000), heavy)
	assert.Equal(t, big.NewInt(1000), light)

	zero, err := Emission(10, big.NewInt(1000), 100, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Sign())

	zero, err = Emission(0, big.NewInt(1000), 100, 100)
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Sign())

	_, err = Emission(2, maxUint256, 1, 1)
	assert.ErrorIs(t, err, reverts.ErrOverflow)
}

func TestValidEmission(t *testing.T) {
	assert.ErrorIs(t, ValidEmission(nil), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, ValidEmission(big.NewInt(-1)), reverts.ErrInvalidAmount)
	assert.ErrorIs(t, ValidEmission(new(big.Int).Add(MaxEmissionPerTick, big.NewInt(1))), reverts.ErrEmissionTooHigh)
	assert.ErrorIs(t, ValidEmission(maxUint256), reverts.ErrOverflow)
	require.NoError(t, ValidEmission(big.NewInt(0)))
	require.NoError(t, ValidEmission(MaxEmissionPerTick))

	// the largest rate over the whole tick range, spread over a single unit of
	// stake, and accumulated twice, still fits
	reward, err := Emission(math.MaxUint64, MaxEmissionPerTick, 1, 1)
	require.NoError(t, err)
	acc, err := RewardPerShare(reward, big.NewInt(1))
	require.NoError(t, err)
	acc, err = Add(acc, acc)
	require.NoError(t, err)
	accrued, err := Accrued(big.NewInt(1), acc, new(big.Int))
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(reward, big.NewInt(2)), accrued)
}

func TestRewardPerShareAndAccrued(t *testing.T) {
	acc, err := RewardPerShare(big.NewInt(10000), big.NewInt(1000))
	require.NoError(t, err)
	assert.Equal(t, new(big.Int).Mul(big.NewInt(10), Precision), acc)

	earned, err := Accrued(big.NewInt(1000), acc, big.NewInt(0))
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(10000), earned)

	earned, err = Accrued(big.NewInt(1000), acc, acc)
	require.NoError(t, err)
	assert.Equal(t, 0, earned.Sign())

	_, err = Accrued(big.NewInt(1000), big.NewInt(1), big.NewInt(2))
	assert.Error(t, err)
}

func TestSubUnitRewardIsCarriedByAccumulator(t *testing.T) {
	// 1 unit spread over 3 staked units is below one unit per share but the
	// accumulator keeps the fraction at Precision granularity.
	acc, err := RewardPerShare(big.NewInt(1), big.NewInt(3))
	require.NoError(t, err)
	assert.Equal(t, 1, acc.Sign())

	acc3 := new(big.Int).Mul(acc, big.NewInt(3))
	earned, err := Accrued(big.NewInt(3), acc3, big.NewInt(0))
	require.NoError(t, err)
	// three such ticks on three units earn 2 units: 3 * floor(1e18/3) * 3 / 1e18
	assert.Equal(t, big.NewInt(2), earned)
}
