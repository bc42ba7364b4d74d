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

import (
	"sync"
)

type tableBuildStatus uint8

const (
	tableBuildComputed tableBuildStatus = iota
	tableBuildOwner
	tableBuildWait
	tableBuildCycle
)

// tableBuild is an associated conformance table under construction.
// done is closed once the owner has published the table.
type tableBuild struct {
	owner int64
	done  chan struct{}
}

// tableBuilds coordinates the construction of associated conformance tables
// across goroutines.
//
// A goroutine which requests a table under construction by another goroutine
// waits for it, unless waiting would close a cycle of goroutines waiting on each other.
// A goroutine which requests a table it is constructing itself is in a cycle, too.
type tableBuilds struct {
	mu       sync.Mutex
	builders map[*NormalConformance]*tableBuild
	// waiting maps goroutines to the conformance whose table they wait for
	waiting map[int64]*NormalConformance
}

var associatedConformanceBuilds = newTableBuilds()

func newTableBuilds() *tableBuilds {
	return &tableBuilds{
		builders: map[*NormalConformance]*tableBuild{},
		waiting:  map[int64]*NormalConformance{},
	}
}

// acquire determines how the goroutine proceeds with the table of the conformance.
// Lock order: tableBuilds.mu before NormalConformance.mu.
func (b *tableBuilds) acquire(c *NormalConformance, goroutine int64) (*tableBuild, tableBuildStatus) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.hasComputedAssociatedConformances() {
		return nil, tableBuildComputed
	}

	build, ok := b.builders[c]
	if !ok {
		build = &tableBuild{
			owner: goroutine,
			done:  make(chan struct{}),
		}
		b.builders[c] = build
		return build, tableBuildOwner
	}

	// Follow the owners' waits. The wait graph is acyclic,
	// as edges closing a cycle are never added.
	owner := build.owner
	for {
		if owner == goroutine {
			return nil, tableBuildCycle
		}
		next, ok := b.waiting[owner]
		if !ok {
			break
		}
		nextBuild, ok := b.builders[next]
		if !ok {
			break
		}
		owner = nextBuild.owner
	}

	b.waiting[goroutine] = c
	return build, tableBuildWait
}

func (b *tableBuilds) stopWaiting(goroutine int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.waiting, goroutine)
}

func (b *tableBuilds) release(c *NormalConformance, build *tableBuild) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.builders, c)
	close(build.done)
}

func (b *tableBuilds) isBuilding(c *NormalConformance) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, ok := b.builders[c]
	return ok
}
