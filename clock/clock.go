// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package clock provides tick sources for the ledger.
package clock

import (
	"sync/atomic"
	"time"

	"github.com/beevik/ntp"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/log"
)

var logger = log.WithContext("pkg", "clock")

// Manual is a clock moved by hand.
type Manual struct {
	tick atomic.Uint64
}

func NewManual(start uint64) *Manual {
	m := &Manual{}
	m.tick.Store(start)
	return m
}

func (m *Manual) Now() uint64 {
	return m.tick.Load()
}

// Set moves the clock to tick. Moving backwards is rejected.
func (m *Manual) Set(tick uint64) error {
	for {
		cur := m.tick.Load()
		if tick < cur {
			return errors.Errorf("clock cannot go back from %d to %d", cur, tick)
		}
		if m.tick.CompareAndSwap(cur, tick) {
			return nil
		}
	}
}

// Advance moves the clock forward by n ticks and returns the new tick.
func (m *Manual) Advance(n uint64) uint64 {
	return m.tick.Add(n)
}

// Interval derives ticks from wall time: tick n starts at genesis + n*interval.
type Interval struct {
	genesis  time.Time
	interval time.Duration
	last     atomic.Uint64
	now      func() time.Time
}

func NewInterval(genesis time.Time, interval time.Duration) (*Interval, error) {
	if interval <= 0 {
		return nil, errors.Errorf("invalid tick interval %v", interval)
	}
	return &Interval{genesis: genesis, interval: interval, now: time.Now}, nil
}

// Now returns the current tick, 0 before genesis. A host clock stepping back
// does not make it decrease.
func (c *Interval) Now() uint64 {
	var tick uint64
	if elapsed := c.now().Sub(c.genesis); elapsed > 0 {
		tick = uint64(elapsed / c.interval)
	}
	for {
		last := c.last.Load()
		if tick <= last {
			return last
		}
		if c.last.CompareAndSwap(last, tick) {
			return tick
		}
	}
}

// Start returns the wall time at which tick begins.
func (c *Interval) Start(tick uint64) time.Time {
	return c.genesis.Add(time.Duration(tick) * c.interval)
}

func (c *Interval) Interval() time.Duration {
	return c.interval
}

var queryNTP = ntp.Query

// CheckOffset measures the host clock against an NTP server and warns when it
// is off by more than half a tick.
func CheckOffset(server string, interval time.Duration) (time.Duration, error) {
	resp, err := queryNTP(server)
	if err != nil {
		logger.Debug("failed to access NTP", "server", server, "err", err)
		return 0, errors.Wrap(err, "query ntp")
	}
	offset := resp.ClockOffset
	if offset < 0 {
		offset = -offset
	}
	if offset > interval/2 {
		logger.Warn("clock offset detected", "offset", common.PrettyDuration(resp.ClockOffset), "interval", interval)
	}
	return resp.ClockOffset, nil
}
