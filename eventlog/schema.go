// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventlog

// uint64 columns hold the two's complement int64 of the value.
const eventTableSchema = `CREATE TABLE IF NOT EXISTS event (
	revision INTEGER NOT NULL,
	eventIndex INTEGER NOT NULL,
	tick INTEGER NOT NULL,
	kind TEXT NOT NULL,
	caller BLOB(20) NOT NULL,
	pool INTEGER NOT NULL,
	asset BLOB(20) NOT NULL,
	amount BLOB,
	unlockTick INTEGER NOT NULL,
	requestIndex INTEGER NOT NULL,
	weight INTEGER NOT NULL,
	minDeposit BLOB,
	unlockDelay INTEGER NOT NULL,
	operation TEXT NOT NULL,
	paused INTEGER NOT NULL,
	PRIMARY KEY (revision, eventIndex)
);

CREATE INDEX IF NOT EXISTS event_i_tick ON event(tick);
CREATE INDEX IF NOT EXISTS event_i_pool ON event(pool, revision);
CREATE INDEX IF NOT EXISTS event_i_caller ON event(caller, revision);
CREATE INDEX IF NOT EXISTS event_i_kind ON event(kind, revision);
`

const eventColumns = `revision, eventIndex, tick, kind, caller, pool, asset, amount,
	unlockTick, requestIndex, weight, minDeposit, unlockDelay, operation, paused`
