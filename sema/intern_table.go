/*
 * Cadence - The resource-oriented smart contract programming language
 *
 * Copyright Flow Foundation
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sema

import "sync"

// internTable deduplicates values by key.
// Lookups and insertions are safe for concurrent use,
// and at most one value is ever published for a key.
type internTable[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
}

// getOrInsert returns the value for the given key,
// creating and publishing it if it does not exist yet.
// The create function is called with no lock held,
// so it may be called concurrently for the same key,
// but only one of the results is kept.
// The boolean result is true if the returned value was newly inserted.
func (t *internTable[K, V]) getOrInsert(key K, create func() V) (V, bool) {
	t.mu.RLock()
	existing, ok := t.entries[key]
	t.mu.RUnlock()
	if ok {
		return existing, false
	}

	value := create()

	t.mu.Lock()
	defer t.mu.Unlock()

	existing, ok = t.entries[key]
	if ok {
		return existing, false
	}
	if t.entries == nil {
		t.entries = map[K]V{}
	}
	t.entries[key] = value
	return value, true
}

func (t *internTable[K, V]) len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}
