// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"math/big"
	"net/http"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gorilla/mux"

	"github.com/vechain/stakepool/api/utils"
	"github.com/vechain/stakepool/cache"
	"github.com/vechain/stakepool/ledger"
)

type Pools struct {
	ledger  *ledger.Ledger
	pending *cache.LRU
}

type pendingKey struct {
	pool     uint64
	account  common.Address
	tick     uint64
	revision uint64
}

type pendingValue struct {
	amount *big.Int
	head   ledger.Head
}

// New creates the pool query handlers. Pending rewards are memoized per
// head in a cache of cacheSize entries.
func New(l *ledger.Ledger, cacheSize int) (*Pools, error) {
	pending, err := cache.NewLRU("pending", cacheSize)
	if err != nil {
		return nil, err
	}
	return &Pools{ledger: l, pending: pending}, nil
}

func (p *Pools) handleGetPools(w http.ResponseWriter, _ *http.Request) error {
	pools := p.ledger.Pools()
	out := make([]*Pool, 0, len(pools))
	for _, pl := range pools {
		out = append(out, convertPool(pl))
	}
	return utils.WriteJSON(w, out)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := utils.PathUint(req, "id")
	if err != nil {
		return err
	}
	pl, err := p.ledger.Pool(id)
	if err != nil {
		return utils.Reverted(err)
	}
	return utils.WriteJSON(w, convertPool(pl))
}

func positionParams(req *http.Request) (uint64, common.Address, error) {
	id, err := utils.PathUint(req, "id")
	if err != nil {
		return 0, common.Address{}, err
	}
	account, err := utils.PathAddress(req, "account")
	if err != nil {
		return 0, common.Address{}, err
	}
	return id, account, nil
}

func (p *Pools) handleGetPosition(w http.ResponseWriter, req *http.Request) error {
	id, account, err := positionParams(req)
	if err != nil {
		return err
	}
	pos, err := p.ledger.Position(id, account)
	if err != nil {
		return utils.Reverted(err)
	}
	return utils.WriteJSON(w, convertPosition(id, account, pos, p.ledger.Head().Tick))
}

func (p *Pools) handleGetPending(w http.ResponseWriter, req *http.Request) error {
	id, account, err := positionParams(req)
	if err != nil {
		return err
	}
	// entries are keyed by the head seen before loading; the value carries the
	// head it was actually computed at
	head := p.ledger.Head()
	v, err := p.pending.GetOrLoad(pendingKey{id, account, head.Tick, head.Revision}, func(any) (any, error) {
		amount, at, err := p.ledger.PendingRewardWithHead(id, account)
		if err != nil {
			return nil, err
		}
		return &pendingValue{amount, at}, nil
	})
	if err != nil {
		return utils.Reverted(err)
	}
	pv := v.(*pendingValue)
	return utils.WriteJSON(w, &Pending{
		Pending:  hexOrDecimal(pv.amount),
		Tick:     pv.head.Tick,
		Revision: pv.head.Revision,
	})
}

func (p *Pools) handleGetRequest(w http.ResponseWriter, req *http.Request) error {
	id, account, err := positionParams(req)
	if err != nil {
		return err
	}
	index, err := utils.PathUint(req, "index")
	if err != nil {
		return err
	}
	r, err := p.ledger.Request(id, account, index)
	if err != nil {
		return utils.Reverted(err)
	}
	return utils.WriteJSON(w, &Request{
		Index:      index,
		Amount:     hexOrDecimal(r.Amount),
		UnlockTick: r.UnlockTick,
		Unlocked:   r.Unlocked(p.ledger.Head().Tick),
	})
}

func (p *Pools) handleGetRequestCount(w http.ResponseWriter, req *http.Request) error {
	id, account, err := positionParams(req)
	if err != nil {
		return err
	}
	n, err := p.ledger.RequestCount(id, account)
	if err != nil {
		return utils.Reverted(err)
	}
	return utils.WriteJSON(w, utils.M{"count": n})
}

// LogCacheStats reports the pending reward cache hit rate.
func (p *Pools) LogCacheStats() {
	p.pending.LogStats()
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("pools_get_pools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPools))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("pools_get_pool").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{id}/positions/{account}").
		Methods(http.MethodGet).
		Name("pools_get_position").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPosition))
	sub.Path("/{id}/positions/{account}/pending").
		Methods(http.MethodGet).
		Name("pools_get_pending").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPending))
	sub.Path("/{id}/positions/{account}/requests").
		Methods(http.MethodGet).
		Name("pools_get_request_count").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetRequestCount))
	sub.Path("/{id}/positions/{account}/requests/{index}").
		Methods(http.MethodGet).
		Name("pools_get_request").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetRequest))
}
