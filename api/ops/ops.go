// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ops exposes the ledger mutations over http.
package ops

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/ledger"
	"github.com/vechain/stakepool/pool"
)

type Ops struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Ops {
	return &Ops{l}
}

func parse(req *http.Request, v any) error {
	if err := utils.ParseJSON(req.Body, v); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	return nil
}

// respond writes the result, stamped with the revision seen after the call.
func (o *Ops) respond(w http.ResponseWriter, res *Result) error {
	res.Revision = o.ledger.Head().Revision
	return utils.WriteJSON(w, res)
}

func (o *Ops) handleStake(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	if err := o.ledger.Stake(body.Caller, body.Pool, (*big.Int)(body.Amount)); err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{})
}

func (o *Ops) handleRequestWithdrawal(w http.ResponseWriter, req *http.Request) error {
	var body StakeRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	unlock, err := o.ledger.RequestWithdrawal(body.Caller, body.Pool, (*big.Int)(body.Amount))
	if err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{UnlockTick: &unlock})
}

func (o *Ops) handleExecuteWithdrawal(w http.ResponseWriter, req *http.Request) error {
	var body ExecuteRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	amount, err := o.ledger.ExecuteWithdrawal(body.Caller, body.Pool, body.Index)
	if err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{Amount: (*math.HexOrDecimal256)(amount)})
}

func (o *Ops) handleClaim(w http.ResponseWriter, req *http.Request) error {
	var body ClaimRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	amount, err := o.ledger.ClaimReward(body.Caller, body.Pool)
	if err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{Amount: (*math.HexOrDecimal256)(amount)})
}

func (o *Ops) handleAddPool(w http.ResponseWriter, req *http.Request) error {
	var body PoolRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	id, err := o.ledger.AddPool(body.Caller, pool.Params{
		Asset:       body.Asset,
		Weight:      body.Weight,
		MinDeposit:  (*big.Int)(body.MinDeposit),
		UnlockDelay: body.UnlockDelay,
	})
	if err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{ID: &id})
}

func (o *Ops) handleUpdatePool(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.PathUint(req, "id")
	if err != nil {
		return err
	}
	var body PoolRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	if err := o.ledger.UpdatePool(body.Caller, id, body.Weight, (*big.Int)(body.MinDeposit), body.UnlockDelay); err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{ID: &id})
}

func (o *Ops) handleSetEmission(w http.ResponseWriter, req *http.Request) error {
	var body EmissionRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	if err := o.ledger.SetEmissionPerTick(body.Caller, (*big.Int)(body.EmissionPerTick)); err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{})
}

func (o *Ops) handlePause(w http.ResponseWriter, req *http.Request) error {
	var body PauseRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	var err error
	switch {
	case body.Operation == "" && body.Paused:
		err = o.ledger.Pause(body.Caller)
	case body.Operation == "":
		err = o.ledger.Unpause(body.Caller)
	case !body.Operation.Valid():
		return utils.BadRequest(errors.Errorf("unknown operation %q", body.Operation))
	default:
		err = o.ledger.SetPaused(body.Caller, body.Operation, body.Paused)
	}
	if err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{})
}

func (o *Ops) handleEmergencyWithdraw(w http.ResponseWriter, req *http.Request) error {
	var body EmergencyRequest
	if err := parse(req, &body); err != nil {
		return err
	}
	if err := o.ledger.EmergencyWithdraw(body.Caller, body.Asset, (*big.Int)(body.Amount)); err != nil {
		return utils.Reverted(err)
	}
	return o.respond(w, &Result{Amount: body.Amount})
}

func (o *Ops) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	routes := []struct {
		path, method, name string
		handler            utils.HandlerFunc
	}{
		{"/stake", http.MethodPost, "ops_stake", o.handleStake},
		{"/withdrawals", http.MethodPost, "ops_request_withdrawal", o.handleRequestWithdrawal},
		{"/withdrawals/execute", http.MethodPost, "ops_execute_withdrawal", o.handleExecuteWithdrawal},
		{"/claim", http.MethodPost, "ops_claim", o.handleClaim},
		{"/pools", http.MethodPost, "ops_add_pool", o.handleAddPool},
		{"/pools/{id}", http.MethodPut, "ops_update_pool", o.handleUpdatePool},
		{"/emission", http.MethodPost, "ops_set_emission", o.handleSetEmission},
		{"/pause", http.MethodPost, "ops_pause", o.handlePause},
		{"/emergency-withdraw", http.MethodPost, "ops_emergency_withdraw", o.handleEmergencyWithdraw},
	}
	for _, r := range routes {
		sub.Path(r.path).
			Methods(r.method).
			Name(r.name).
			HandlerFunc(utils.WrapHandlerFunc(r.handler))
	}
}
