// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package utils

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
)

// PathUint parses the named path variable as an unsigned integer.
func PathUint(req *http.Request, name string) (uint64, error) {
	n, err := strconv.ParseUint(mux.Vars(req)[name], 0, 64)
	if err != nil {
		return 0, BadRequest(errors.WithMessage(err, name))
	}
	return n, nil
}

// PathAddress parses the named path variable as a hex address.
func PathAddress(req *http.Request, name string) (common.Address, error) {
	s := mux.Vars(req)[name]
	if !common.IsHexAddress(s) {
		return common.Address{}, BadRequest(errors.Errorf("%s: invalid address %q", name, s))
	}
	return common.HexToAddress(s), nil
}
