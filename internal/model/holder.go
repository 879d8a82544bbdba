/*
 * This file is part of Voxlate (https://github.com/voxlate/voxlate-hub).
 * Copyright (C) 2026 Voxlate Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package model

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/voxlate/voxlate-hub/internal/logging"
)

// Holder owns the process-wide engine singleton. The engine is
// initialized at most once per process lifetime; concurrent requests
// arriving during initialization block until it completes rather than
// triggering duplicate loads. A failed initialization is not cached: the
// next request retries.
//
// When serialize is set, Generate calls are funneled through a lock so at
// most one inference runs at a time; waiting requests queue behind the
// lock instead of failing.
type Holder struct {
	newTranslator func() (Translator, error)
	serialize     bool

	initMu     sync.Mutex
	translator Translator
	ready      atomic.Bool

	inferMu sync.Mutex
}

// NewHolder creates a holder that builds its engine lazily via newTranslator
func NewHolder(newTranslator func() (Translator, error), serialize bool) *Holder {
	return &Holder{
		newTranslator: newTranslator,
		serialize:     serialize,
	}
}

// Ready reports whether the engine singleton has completed
// initialization. This is the health-check boundary's readiness signal;
// it never triggers a load.
func (h *Holder) Ready() bool {
	return h.ready.Load()
}

// Load initializes the engine if it is not initialized yet. Safe for
// concurrent use; all callers observe the same outcome of a single
// initialization attempt.
func (h *Holder) Load() error {
	h.initMu.Lock()
	defer h.initMu.Unlock()

	if h.translator != nil {
		return nil
	}

	logging.Sugar.Infow("⏳ Initializing speech translation engine")

	translator, err := h.newTranslator()
	if err != nil {
		logging.LogError(err, "Engine initialization failed")
		return err
	}

	h.translator = translator
	h.ready.Store(true)

	logging.Sugar.Infow("✅ Speech translation engine ready")
	return nil
}

// Generate runs one inference pass, loading the engine first if needed.
// With serialization enabled, calls queue behind the inference lock and
// never overlap. Once inference starts it runs to completion; there is no
// mid-inference cancellation.
func (h *Holder) Generate(ctx context.Context, samples []float32, srcLang, tgtLang string) ([]float32, error) {
	if err := h.Load(); err != nil {
		return nil, err
	}

	if h.serialize {
		h.inferMu.Lock()
		defer h.inferMu.Unlock()
	}

	return h.translator.Generate(ctx, samples, srcLang, tgtLang)
}

// Close releases the engine if it was initialized
func (h *Holder) Close() error {
	h.initMu.Lock()
	defer h.initMu.Unlock()

	if h.translator == nil {
		return nil
	}

	err := h.translator.Close()
	h.translator = nil
	h.ready.Store(false)
	return err
}
