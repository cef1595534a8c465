// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package status

import (
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/ledger"
)

type Status struct {
	EmissionPerTick *math.HexOrDecimal256 `json:"emissionPerTick"`
	TotalWeight     uint64                `json:"totalWeight"`
	StartTick       uint64                `json:"startTick"`
	PoolCount       uint64                `json:"poolCount"`
	Paused          bool                  `json:"paused"`
	PausedOps       []ledger.Operation    `json:"pausedOps"`
	Tick            uint64                `json:"tick"`
	Revision        uint64                `json:"revision"`
}

type Handler struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Handler {
	return &Handler{l}
}

func (h *Handler) handleGetStatus(w http.ResponseWriter, _ *http.Request) error {
	g := h.ledger.Globals()
	head := h.ledger.Head()
	paused := make([]ledger.Operation, 0, len(ledger.Operations))
	for _, op := range ledger.Operations {
		if h.ledger.Paused(op) {
			paused = append(paused, op)
		}
	}
	return utils.WriteJSON(w, &Status{
		EmissionPerTick: (*math.HexOrDecimal256)(g.EmissionPerTick),
		TotalWeight:     g.TotalWeight,
		StartTick:       g.StartTick,
		PoolCount:       g.PoolCount,
		Paused:          g.Paused,
		PausedOps:       paused,
		Tick:            head.Tick,
		Revision:        head.Revision,
	})
}

func (h *Handler) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("status_get").
		HandlerFunc(utils.WrapHandlerFunc(h.handleGetStatus))
}
