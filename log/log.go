// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package log hands out package level loggers. They write through the root
// logger installed when a record is emitted, not the one present at init, so
// they can be declared as package variables before the handler is configured.
package log

import (
	"context"
	"log/slog"
	"slices"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// WithContext returns a logger carrying ctx on every record.
func WithContext(ctx ...any) ethlog.Logger {
	return ethlog.NewLogger(rootHandler{}).With(ctx...)
}

// rootHandler forwards to the current root handler, replaying the attrs and
// groups added on the way.
type rootHandler struct {
	apply []func(slog.Handler) slog.Handler
}

func (h rootHandler) resolve() slog.Handler {
	handler := ethlog.Root().Handler()
	for _, f := range h.apply {
		handler = f(handler)
	}
	return handler
}

func (h rootHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return ethlog.Root().Handler().Enabled(ctx, level)
}

func (h rootHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.resolve().Handle(ctx, r)
}

func (h rootHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h rootHandler) WithGroup(name string) slog.Handler {
	return h.with(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h rootHandler) with(f func(slog.Handler) slog.Handler) rootHandler {
	return rootHandler{apply: append(slices.Clip(h.apply), f)}
}
