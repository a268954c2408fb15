/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package completion

import (
	"sync"
	"sync/atomic"
)

type (
	entry[T any] struct {
		key   Key
		fd    int
		value T

		// op is the handoff point between the submitting and the completing
		// goroutine: fields below are written before op is stored and read
		// only after op is swapped out.
		op  atomic.Int32
		buf []byte
		off int

		// added is set once fd is in the epoll set
		added atomic.Bool
	}

	registry[T any] struct {
		seq  atomic.Uint64
		list map[Key]*entry[T]
		mux  sync.RWMutex
	}
)

func newRegistry[T any](size int) *registry[T] {
	return &registry[T]{
		list: make(map[Key]*entry[T], size),
	}
}

func (v *registry[T]) add(fd int, value T) *entry[T] {
	e := &entry[T]{
		key:   Key(v.seq.Add(1)),
		fd:    fd,
		value: value,
	}

	v.mux.Lock()
	v.list[e.key] = e
	v.mux.Unlock()

	return e
}

func (v *registry[T]) get(key Key) (*entry[T], bool) {
	v.mux.RLock()
	defer v.mux.RUnlock()

	e, ok := v.list[key]
	return e, ok
}

func (v *registry[T]) remove(key Key) (*entry[T], bool) {
	v.mux.Lock()
	defer v.mux.Unlock()

	e, ok := v.list[key]
	delete(v.list, key)
	return e, ok
}

func (v *registry[T]) drain() []*entry[T] {
	v.mux.Lock()
	defer v.mux.Unlock()

	result := make([]*entry[T], 0, len(v.list))
	for key, e := range v.list {
		result = append(result, e)
		delete(v.list, key)
	}
	return result
}

func (v *registry[T]) len() int {
	v.mux.RLock()
	defer v.mux.RUnlock()

	return len(v.list)
}
