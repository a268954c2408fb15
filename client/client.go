/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"context"
	"fmt"
	"io"
	"net"

	"go.osspkg.com/algorithms/control"
	"go.osspkg.com/errors"

	"go.osspkg.com/echoport/internal"
)

type (
	Client interface {
		Call(ctx context.Context, handler func(ctx context.Context, conn io.ReadWriter) error) error
	}

	_client struct {
		conf Config
		sem  control.Semaphore
	}
)

func New(c Config) (Client, error) {
	if len(c.Network) == 0 {
		c.Network = internal.NetTCP
	}

	addr, err := c.Resolve()
	if err != nil {
		return nil, fmt.Errorf("resolve address: %w", err)
	}
	c.Address = addr.String()

	if c.MaxConns <= 0 {
		c.MaxConns = 1
	}

	return &_client{
		conf: c,
		sem:  control.NewSemaphore(c.MaxConns),
	}, nil
}

// Call opens a new connection for handler and closes it afterwards. At most
// MaxConns calls hold a connection at the same time.
func (v *_client) Call(ctx context.Context, handler func(ctx context.Context, conn io.ReadWriter) error) (e error) {
	v.sem.Acquire()
	defer func() { v.sem.Release() }()

	var dial net.Dialer
	conn, err := dial.DialContext(ctx, v.conf.Network, v.conf.Address)
	if err != nil {
		writeLog(err, "Client: dial", v.conf.Network, v.conf.Address)
		return fmt.Errorf("dial %s: %w", v.conf.Network, err)
	}

	stop := internal.DeadlineUpdate(conn, v.conf.Timeout)

	defer func() {
		stop()
		err0 := internal.NormalCloseError(conn.Close())
		writeLog(err0, "Client: close", v.conf.Network, v.conf.Address)
		e = errors.Wrap(e, err0)
	}()

	e = handler(ctx, conn)

	return
}
