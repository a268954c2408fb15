/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package completion

import (
	"sync"

	"github.com/eapache/queue"
)

// notes keeps posted completions in FIFO order until a waiter picks them up.
type notes[T any] struct {
	q   *queue.Queue
	mux sync.Mutex
}

func newNotes[T any]() *notes[T] {
	return &notes[T]{q: queue.New()}
}

func (v *notes[T]) push(c Completion[T]) {
	v.mux.Lock()
	v.q.Add(c)
	v.mux.Unlock()
}

func (v *notes[T]) pop() (c Completion[T], ok bool) {
	v.mux.Lock()
	defer v.mux.Unlock()

	if v.q.Length() == 0 {
		return
	}
	c, ok = v.q.Remove().(Completion[T])
	return
}
