/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"go.osspkg.com/ioutils/pool"

	"go.osspkg.com/echoport/completion"
)

var connPool = pool.New[*Conn](func() *Conn {
	return &Conn{fd: -1}
})

type State int32

const (
	StateNew State = iota
	StateReading
	StateWriting
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateWriting:
		return "writing"
	case StateClosed:
		return "closed"
	default:
		return "new"
	}
}

// Conn is the state of one accepted connection. It is touched only by the
// goroutine holding its in-flight completion.
type Conn struct {
	key     completion.Key
	fd      int
	buf     []byte
	pending int
	state   State
	seq     uint64
	addr    string
}

func acquireConn(size int) *Conn {
	c := connPool.Get()
	if cap(c.buf) < size {
		c.buf = make([]byte, size)
	}
	c.buf = c.buf[:size]
	return c
}

func releaseConn(c *Conn) {
	connPool.Put(c)
}

func (v *Conn) Reset() {
	v.key = 0
	v.fd = -1
	v.pending = 0
	v.state = StateNew
	v.seq = 0
	v.addr = ""
}
