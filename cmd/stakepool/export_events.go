// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/vechain/stakepool/api/events"
	"github.com/vechain/stakepool/eventlog"
)

var exportPageSize = 1000

func exportEventsAction(ctx *cli.Context) error {
	defer func() { log.Info("exited") }()

	if _, err := initLogger(ctx); err != nil {
		return err
	}
	dataDir, err := makeDataDir(ctx)
	if err != nil {
		return err
	}
	eventLog, err := openEventLog(dataDir)
	if err != nil {
		return err
	}
	defer eventLog.Close()

	out := io.Writer(os.Stdout)
	if path := ctx.String(outFlag.Name); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return errors.Wrap(err, "create output file")
		}
		defer f.Close()
		out = f
	}
	n, err := exportEvents(handleExitSignal(), eventLog, out, os.Stderr)
	if err != nil {
		return err
	}
	log.Info("events exported", "count", n)
	return nil
}

// exportEvents writes every journaled event to w as json lines, oldest first,
// reporting progress to progress when not nil.
func exportEvents(ctx context.Context, eventLog *eventlog.EventLog, w io.Writer, progress io.Writer) (uint64, error) {
	total, err := eventLog.Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "count events")
	}

	bar := pb.New64(int64(total)).SetMaxWidth(90)
	if progress != nil {
		bar.Output = progress
	} else {
		bar.NotPrint = true
	}
	bar.Start()
	defer func() { bar.NotPrint = true }()

	buf := bufio.NewWriter(w)
	enc := json.NewEncoder(buf)
	var written uint64
	for {
		page, err := eventLog.Filter(ctx, &eventlog.Filter{
			Order:   eventlog.ASC,
			Options: &eventlog.Options{Offset: written, Limit: uint64(exportPageSize)},
		})
		if err != nil {
			return written, errors.Wrap(err, "read events")
		}
		for _, ev := range page {
			if err := enc.Encode(events.ConvertEvent(ev)); err != nil {
				return written, errors.Wrap(err, "write event")
			}
		}
		written += uint64(len(page))
		bar.Add(len(page))
		if len(page) < exportPageSize {
			break
		}
	}
	bar.Finish()
	return written, buf.Flush()
}
