/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"
	"go.osspkg.com/syncing"

	"go.osspkg.com/echoport/completion"
	"go.osspkg.com/echoport/internal"
	"go.osspkg.com/echoport/listen"
)

type (
	Server interface {
		ListenAndServe(ctx context.Context) error
		// Active returns the number of connections currently owned by the server.
		Active() int
	}

	port interface {
		Register(fd int, c *Conn) (completion.Key, error)
		SubmitRead(key completion.Key, buf []byte) error
		SubmitWrite(key completion.Key, buf []byte) error
		Wait() (completion.Completion[*Conn], error)
		PostSentinel() error
		Release(key completion.Key) error
		Len() int
		Close() error
	}

	_server struct {
		conf Config
		port port
		live atomic.Pointer[completion.Port[*Conn]]
		sync syncing.Switch
		wg   syncing.Group
	}
)

func New(conf Config) Server {
	return &_server{
		conf: conf.withDefaults(),
		sync: syncing.NewSwitch(),
		wg:   syncing.NewGroup(),
	}
}

func (v *_server) Active() int {
	if p := v.live.Load(); p != nil {
		return p.Len()
	}
	return 0
}

// ListenAndServe runs the server until ctx is done and then shuts it down:
// the acceptor is stopped first, then every worker gets its sentinel and is
// joined, and finally the port closes connections that are still open.
func (v *_server) ListenAndServe(ctx context.Context) error {
	if err := v.conf.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}
	if !v.sync.On() {
		return internal.ErrServAlreadyRunning
	}
	defer v.sync.Off()

	p, err := completion.New[*Conn](completion.Config{Capacity: 1024})
	if err != nil {
		return fmt.Errorf("create completion port: %w", err)
	}

	l, err := listen.New(ctx, v.conf.Network, v.conf.Address(), v.conf.KeepAlive)
	if err != nil {
		return errors.Wrap(err, p.Close())
	}

	v.port = p
	v.live.Store(p)

	workers := newWorkerPool(v.conf.Workers, p, v.sync, v.advance)
	workers.Start()

	v.wg.Background(func() {
		v.acceptLoop(l)
	})

	logx.Info("Server: started",
		"address", l.Addr().String(), "workers", v.conf.Workers, "buffer", v.conf.BufferSize)

	<-ctx.Done()

	return v.shutdown(l, workers)
}

func (v *_server) shutdown(l net.Listener, workers *workerPool) (err error) {
	v.sync.Off()

	err = internal.NormalCloseError(l.Close())
	v.wg.Wait()

	err = errors.Wrap(err, workers.Stop())

	active := v.port.Len()
	err = errors.Wrap(err, v.port.Close())
	v.live.Store(nil)

	logx.Info("Server: stopped", "address", l.Addr().String(), "dropped", active)

	return
}
