// Copyright 2025
// SPDX-License-Identifier: Apache-2.0

package hfcache

import (
	"context"
	"log/slog"
)

// sliceHandler is a minimal slog.Handler that appends each record's message
// to a caller-owned slice, so tests can assert on exact warning wording
// without parsing text/JSON log output.
type sliceHandler struct {
	out *[]string
}

func newTestLogger(out *[]string) *slog.Logger {
	return slog.New(sliceHandler{out: out})
}

func (h sliceHandler) Enabled(context.Context, slog.Level) bool { return true }

func (h sliceHandler) Handle(_ context.Context, r slog.Record) error {
	*h.out = append(*h.out, r.Message)
	return nil
}

func (h sliceHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h sliceHandler) WithGroup(string) slog.Handler      { return h }
