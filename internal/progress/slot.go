package progress

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

const kvTimeout = 5 * time.Second

// slot binds a store to one named KV entry. Read and write failures are
// logged and swallowed: a broken slot behaves like an empty one.
type slot struct {
	kv     KV
	name   string
	logger *slog.Logger
}

func loadSlot[T any](s slot) (T, bool) {
	var v T

	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()

	data, err := s.kv.Get(ctx, s.name)
	if err != nil {
		if !errors.Is(err, ErrSlotNotFound) {
			s.logger.Warn("failed to read progress slot", "slot", s.name, "error", err)
		}
		return v, false
	}

	if err := json.Unmarshal(data, &v); err != nil {
		s.logger.Warn("discarding malformed progress slot", "slot", s.name, "error", err)
		var zero T
		return zero, false
	}
	return v, true
}

func (s slot) save(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("failed to encode progress slot", "slot", s.name, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), kvTimeout)
	defer cancel()

	if err := s.kv.Set(ctx, s.name, data); err != nil {
		s.logger.Warn("failed to write progress slot", "slot", s.name, "error", err)
	}
}

func newSlot(kv KV, name string, logger *slog.Logger) slot {
	if kv == nil {
		kv = NewMemoryKV()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return slot{kv: kv, name: name, logger: logger}
}
