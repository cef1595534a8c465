// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package datagen

import (
	"math/big"
	mathrand "math/rand/v2"
)

func RandUint64N(n uint64) uint64 {
	return mathrand.Uint64N(n) //#nosec G404
}

// RandAmount returns an amount in [1, limit].
func RandAmount(limit int64) *big.Int {
	return big.NewInt(mathrand.Int64N(limit) + 1) //#nosec G404
}
