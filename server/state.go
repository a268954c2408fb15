/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"fmt"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"

	"go.osspkg.com/echoport/completion"
	"go.osspkg.com/echoport/errs"
)

var ErrUnexpectedOp = errors.New("unexpected completion operation")

// advance moves the connection one step through the echo cycle:
// read -> write back exactly what was read -> read. After a successful
// submit the connection belongs to the port again and must not be touched.
func (v *_server) advance(cc completion.Completion[*Conn]) {
	c := cc.Value
	if c == nil {
		return
	}

	switch c.state {
	case StateReading:
		switch {
		case cc.Err != nil:
			v.release(c, cc.Err)
		case cc.Op != completion.OpRead:
			v.release(c, fmt.Errorf("%w: %s while reading", ErrUnexpectedOp, cc.Op))
		case cc.Bytes == 0:
			v.release(c, nil)
		default:
			c.pending = cc.Bytes
			c.state = StateWriting
			logx.Debug("Conn: received", "seq", c.seq, "bytes", c.pending)
			if err := v.port.SubmitWrite(c.key, c.buf[:c.pending]); err != nil {
				v.release(c, err)
			}
		}

	case StateWriting:
		switch {
		case cc.Err != nil:
			v.release(c, cc.Err)
		case cc.Op != completion.OpWrite:
			v.release(c, fmt.Errorf("%w: %s while writing", ErrUnexpectedOp, cc.Op))
		default:
			logx.Debug("Conn: sent", "seq", c.seq, "bytes", cc.Bytes)
			c.pending = 0
			c.state = StateReading
			if err := v.port.SubmitRead(c.key, c.buf); err != nil {
				v.release(c, err)
			}
		}

	default:
		logx.Warn("Conn: completion for inactive context", "seq", c.seq, "state", c.state.String())
	}
}

// release is the only way out of the cycle: a nil err is an orderly
// disconnect by the peer.
func (v *_server) release(c *Conn, err error) {
	c.state = StateClosed

	switch {
	case err == nil:
		logx.Info("Conn: disconnected", "seq", c.seq, "addr", c.addr)
	case errs.IsClosed(err):
		logx.Info("Conn: closed by peer", "seq", c.seq, "addr", c.addr, "err", err)
	default:
		logx.Warn("Conn: io failure", "seq", c.seq, "addr", c.addr, "err", err)
	}

	if e := v.port.Release(c.key); e != nil && !errors.Is(e, completion.ErrUnknownKey) {
		logx.Warn("Conn: release", "seq", c.seq, "err", e)
	}

	releaseConn(c)
}
