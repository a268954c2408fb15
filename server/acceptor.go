/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"net"
	"time"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"

	"go.osspkg.com/echoport/fd"
)

const (
	acceptPauseMin = 5 * time.Millisecond
	acceptPauseMax = time.Second
)

func (v *_server) acceptLoop(l net.Listener) {
	var (
		seq   uint64
		pause time.Duration
	)

	for v.sync.IsOn() {
		conn, err := l.Accept()
		if err != nil {
			if !v.sync.IsOn() || errors.Is(err, net.ErrClosed) {
				return
			}
			logx.Error("Conn: accept", "err", err)

			pause = min(max(pause*2, acceptPauseMin), acceptPauseMax)
			time.Sleep(pause)
			continue
		}
		pause = 0

		seq++
		v.admit(conn, seq)
	}
}

// admit hands an accepted connection over to the port and issues its first read.
func (v *_server) admit(conn net.Conn, seq uint64) {
	addr := conn.RemoteAddr().String()

	nfd, err := fd.Detach(conn)
	if err != nil {
		logx.Error("Conn: detach", "seq", seq, "addr", addr, "err", err)
		return
	}

	c := acquireConn(v.conf.BufferSize)
	c.fd = nfd
	c.seq = seq
	c.addr = addr

	key, err := v.port.Register(nfd, c)
	if err != nil {
		logx.Error("Conn: register", "seq", seq, "addr", addr, "err", errors.Wrap(err, fd.Close(nfd)))
		releaseConn(c)
		return
	}

	c.key = key
	c.state = StateReading

	logx.Info("Conn: connected", "seq", seq, "addr", addr, "fd", c.fd)

	if err = v.port.SubmitRead(key, c.buf); err != nil {
		v.release(c, err)
	}
}
