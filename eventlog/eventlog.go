// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventlog journals ledger events in SQLite and answers filtered queries over them.
package eventlog

import (
	"context"
	"database/sql"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakepool/ledger"
)

var _ ledger.Sink = (*EventLog)(nil)

type EventLog struct {
	path          string
	db            *sql.DB
	driverVersion string
}

// New creates or opens the event log at path.
func New(path string) (log *EventLog, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if log == nil {
			db.Close()
		}
	}()
	// an in-memory database lives as long as its connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventLog{path: path, db: db, driverVersion: driverVer}, nil
}

// NewMem creates an event log in memory.
func NewMem() (*EventLog, error) {
	return New(":memory:")
}

func (l *EventLog) Close() error {
	return l.db.Close()
}

func (l *EventLog) Path() string {
	return l.path
}

func (l *EventLog) DriverVersion() string {
	return l.driverVersion
}

func bigBytes(x *big.Int) []byte {
	if x == nil {
		return nil
	}
	return x.Bytes()
}

func (l *EventLog) execInTx(proc func(*sql.Tx) error) error {
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Consume writes events in one transaction. Rewriting a revision replaces its events.
func (l *EventLog) Consume(events []*ledger.Event) error {
	if len(events) == 0 {
		return nil
	}
	return l.execInTx(func(tx *sql.Tx) error {
		stmt, err := tx.Prepare("INSERT OR REPLACE INTO event(" + eventColumns + ") VALUES(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, ev := range events {
			if _, err := stmt.Exec(
				int64(ev.Revision),
				ev.Index,
				int64(ev.Tick),
				string(ev.Kind),
				ev.Caller.Bytes(),
				int64(ev.Pool),
				ev.Asset.Bytes(),
				bigBytes(ev.Amount),
				int64(ev.UnlockTick),
				int64(ev.RequestIndex),
				int64(ev.Weight),
				bigBytes(ev.MinDeposit),
				int64(ev.UnlockDelay),
				string(ev.Operation),
				ev.Paused,
			); err != nil {
				return errors.Wrapf(err, "insert event %d/%d", ev.Revision, ev.Index)
			}
		}
		return nil
	})
}

// Truncate drops the events of every revision after the given one.
func (l *EventLog) Truncate(revision uint64) error {
	_, err := l.db.Exec("DELETE FROM event WHERE revision > ?", int64(revision))
	return err
}

// LastRevision returns the highest stored revision, 0 when empty.
func (l *EventLog) LastRevision() (uint64, error) {
	var rev sql.NullInt64
	if err := l.db.QueryRow("SELECT MAX(revision) FROM event").Scan(&rev); err != nil {
		return 0, err
	}
	return uint64(rev.Int64), nil
}

// Count returns the number of stored events.
func (l *EventLog) Count(ctx context.Context) (uint64, error) {
	var n int64
	if err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM event").Scan(&n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func (l *EventLog) Filter(ctx context.Context, filter *Filter) ([]*ledger.Event, error) {
	stmt := "SELECT " + eventColumns + " FROM event WHERE 1"
	if filter == nil {
		return l.query(ctx, stmt+" ORDER BY revision ASC, eventIndex ASC")
	}

	var args []any
	if filter.Range != nil {
		stmt += " AND tick >= ?"
		args = append(args, int64(filter.Range.From))
		if filter.Range.To >= filter.Range.From {
			stmt += " AND tick <= ?"
			args = append(args, int64(filter.Range.To))
		}
	}
	if filter.Pool != nil {
		stmt += " AND pool = ?"
		args = append(args, int64(*filter.Pool))
	}
	if filter.Caller != nil {
		stmt += " AND caller = ?"
		args = append(args, filter.Caller.Bytes())
	}
	if len(filter.Kinds) > 0 {
		stmt += " AND kind IN (?" + strings.Repeat(",?", len(filter.Kinds)-1) + ")"
		for _, k := range filter.Kinds {
			args = append(args, string(k))
		}
	}

	if filter.Order == DESC {
		stmt += " ORDER BY revision DESC, eventIndex DESC"
	} else {
		stmt += " ORDER BY revision ASC, eventIndex ASC"
	}
	if filter.Options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, int64(filter.Options.Offset), int64(filter.Options.Limit))
	}
	return l.query(ctx, stmt, args...)
}

func (l *EventLog) query(ctx context.Context, stmt string, args ...any) ([]*ledger.Event, error) {
	rows, err := l.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*ledger.Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			revision, tick, pool, unlockTick, requestIndex, weight, unlockDelay int64
			index                                                                uint32
			kind, operation                                                      string
			caller, asset, amount, minDeposit                                    []byte
			paused                                                               bool
		)
		if err := rows.Scan(
			&revision,
			&index,
			&tick,
			&kind,
			&caller,
			&pool,
			&asset,
			&amount,
			&unlockTick,
			&requestIndex,
			&weight,
			&minDeposit,
			&unlockDelay,
			&operation,
			&paused,
		); err != nil {
			return nil, err
		}
		ev := &ledger.Event{
			Kind:         ledger.EventKind(kind),
			Revision:     uint64(revision),
			Index:        index,
			Tick:         uint64(tick),
			Caller:       common.BytesToAddress(caller),
			Pool:         uint64(pool),
			Asset:        common.BytesToAddress(asset),
			UnlockTick:   uint64(unlockTick),
			RequestIndex: uint64(requestIndex),
			Weight:       uint64(weight),
			UnlockDelay:  uint64(unlockDelay),
			Operation:    ledger.Operation(operation),
			Paused:       paused,
		}
		if amount != nil {
			ev.Amount = new(big.Int).SetBytes(amount)
		}
		if minDeposit != nil {
			ev.MinDeposit = new(big.Int).SetBytes(minDeposit)
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
