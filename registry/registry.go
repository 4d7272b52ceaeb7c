/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package registry tracks the process-wide set of live connections, giving
// operator-facing enumeration safe concurrent access against teardown.
package registry

import "sync"

// Node is anything the registry can hold: a connection or any other
// object that needs the enumerator-safe membership protocol.
type Node interface {
	// RegistryKey returns a value stable across the node's registered
	// lifetime, used only for removal lookups.
	RegistryKey() interface{}
}

// Registry is a process-wide set of live Nodes guarded by one mutex plus
// one condition variable, with the enumerator-count pattern from §4.3:
// remove() waits until no enumerate() visitor still holds a reference to
// the node being removed, so destruction cannot race ahead of a visitor.
type Registry struct {
	mu    sync.Mutex
	cond  *sync.Cond
	nodes []*entry
}

type entry struct {
	node   Node
	inUse  int
}

// New returns an empty Registry ready to use.
func New() *Registry {
	r := &Registry{}
	r.cond = sync.NewCond(&r.mu)
	return r
}

// Insert adds n to the registry. Constant-time.
func (r *Registry) Insert(n Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodes = append(r.nodes, &entry{node: n})
}

// Remove unlinks n, blocking until no enumerator holds a reference to it.
func (r *Registry) Remove(n Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := n.RegistryKey()
	var e *entry
	idx := -1
	for i, it := range r.nodes {
		if it.node.RegistryKey() == key {
			e, idx = it, i
			break
		}
	}
	if e == nil {
		return
	}

	for e.inUse > 0 {
		r.cond.Wait()
	}

	r.nodes = append(r.nodes[:idx], r.nodes[idx+1:]...)
}

// Enumerate walks the registry calling fn(node) for each live node; it
// stops early (and returns false) as soon as fn returns false. Visitors
// must not call Insert/Remove on the registry being walked.
//
// Protocol: while holding the mutex, increment the current node's
// enumerator counter; drop the mutex; invoke fn; reacquire the mutex;
// decrement the counter and broadcast the condition variable. This gives
// fn safe access to each node without holding the global lock during
// callback execution, while guaranteeing Remove cannot race ahead.
func (r *Registry) Enumerate(fn func(Node) bool) bool {
	r.mu.Lock()
	snapshot := make([]*entry, len(r.nodes))
	copy(snapshot, r.nodes)
	r.mu.Unlock()

	for _, e := range snapshot {
		r.mu.Lock()
		e.inUse++
		r.mu.Unlock()

		cont := fn(e.node)

		r.mu.Lock()
		e.inUse--
		r.cond.Broadcast()
		r.mu.Unlock()

		if !cont {
			return false
		}
	}

	return true
}

// Len reports the current registry size.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.nodes)
}
