// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package fixedpoint implements the checked 256-bit arithmetic behind reward
// accumulation. Every value is a non-negative integer, products are computed
// with a 512-bit intermediate and all divisions truncate toward zero.
package fixedpoint

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/reverts"
)

// Precision is the scale of reward-per-share values.
var Precision = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

var precision = uint256.MustFromBig(Precision)

var errDivisionByZero = errors.New("division by zero")

// FromBig converts an amount into its 256-bit form.
func FromBig(x *big.Int) (*uint256.Int, error) {
	if x == nil || x.Sign() < 0 {
		return nil, reverts.ErrInvalidAmount
	}
	v, overflow := uint256.FromBig(x)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return v, nil
}

// Valid reports whether x can be used as an amount.
func Valid(x *big.Int) bool {
	_, err := FromBig(x)
	return err == nil
}

// Add returns x + y.
func Add(x, y *big.Int) (*big.Int, error) {
	a, b, err := pair(x, y)
	if err != nil {
		return nil, err
	}
	z, overflow := new(uint256.Int).AddOverflow(a, b)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return z.ToBig(), nil
}

// Sub returns x - y and fails when y > x.
func Sub(x, y *big.Int) (*big.Int, error) {
	a, b, err := pair(x, y)
	if err != nil {
		return nil, err
	}
	z, underflow := new(uint256.Int).SubOverflow(a, b)
	if underflow {
		return nil, errors.Errorf("subtraction underflow: %v - %v", x, y)
	}
	return z.ToBig(), nil
}

// MulDiv returns floor(x * y / d) without losing precision in the product.
func MulDiv(x, y, d *big.Int) (*big.Int, error) {
	a, b, err := pair(x, y)
	if err != nil {
		return nil, err
	}
	c, err := FromBig(d)
	if err != nil {
		return nil, err
	}
	if c.IsZero() {
		return nil, errDivisionByZero
	}
	z, overflow := new(uint256.Int).MulDivOverflow(a, b, c)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return z.ToBig(), nil
}

// MaxEmissionPerTick bounds the emission rate. At or below it, a whole uint64
// tick span of emission scaled by Precision stays under 2^252, so neither an
// accumulator nor an accrued amount can overflow.
var MaxEmissionPerTick = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))

// ValidEmission checks a per-tick emission rate.
func ValidEmission(rate *big.Int) error {
	if _, err := FromBig(rate); err != nil {
		return err
	}
	if rate.Cmp(MaxEmissionPerTick) > 0 {
		return reverts.ErrEmissionTooHigh
	}
	return nil
}

// Emission returns the reward a pool of the given weight earns over elapsed ticks:
// elapsed * rate * weight / totalWeight. A zero total weight emits nothing.
func Emission(elapsed uint64, rate *big.Int, weight, totalWeight uint64) (*big.Int, error) {
	if totalWeight == 0 || weight == 0 || elapsed == 0 {
		return new(big.Int), nil
	}
	r, err := FromBig(rate)
	if err != nil {
		return nil, err
	}
	total, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(elapsed), r)
	if overflow {
		return nil, reverts.ErrOverflow
	}
	z, overflow := new(uint256.Int).MulDivOverflow(total, uint256.NewInt(weight), uint256.NewInt(totalWeight))
	if overflow {
		return nil, reverts.ErrOverflow
	}
	return z.ToBig(), nil
}

// RewardPerShare scales reward by Precision and spreads it over totalStaked.
func RewardPerShare(reward, totalStaked *big.Int) (*big.Int, error) {
	return MulDiv(reward, Precision, totalStaked)
}

// Accrued returns amount * (acc - debt) / Precision, the reward earned by amount
// since the accumulator stood at debt.
func Accrued(amount, acc, debt *big.Int) (*big.Int, error) {
	delta, err := Sub(acc, debt)
	if err != nil {
		return nil, errors.Wrap(err, "accumulator below reward debt")
	}
	if delta.Sign() == 0 {
		return new(big.Int), nil
	}
	return MulDiv(amount, delta, Precision)
}

func pair(x, y *big.Int) (*uint256.Int, *uint256.Int, error) {
	a, err := FromBig(x)
	if err != nil {
		return nil, nil, err
	}
	b, err := FromBig(y)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}
