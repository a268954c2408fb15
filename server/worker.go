/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"fmt"
	"runtime"
	"time"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"
	"go.osspkg.com/syncing"

	"go.osspkg.com/echoport/completion"
)

const (
	waitPauseMin = 5 * time.Millisecond
	waitPauseMax = time.Second
)

// workerPool drains the port with a fixed number of goroutines, each locked
// to its own OS thread for its whole life.
type workerPool struct {
	size    int
	port    port
	running syncing.Switch
	handle  func(completion.Completion[*Conn])
	wg      syncing.Group
}

func newWorkerPool(size int, p port, running syncing.Switch, handle func(completion.Completion[*Conn])) *workerPool {
	return &workerPool{
		size:    size,
		port:    p,
		running: running,
		handle:  handle,
		wg:      syncing.NewGroup(),
	}
}

func (v *workerPool) Start() {
	for i := 0; i < v.size; i++ {
		id := i
		v.wg.Background(func() {
			v.run(id)
		})
	}
}

// Stop must be called after the running switch is off. One sentinel per
// worker is posted, then all workers are joined.
func (v *workerPool) Stop() (err error) {
	for i := 0; i < v.size; i++ {
		err = errors.Wrap(err, v.port.PostSentinel())
	}
	v.wg.Wait()
	return
}

func (v *workerPool) run(id int) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	logx.Debug("Worker: started", "id", id)
	defer logx.Debug("Worker: stopped", "id", id)

	var pause time.Duration

	for {
		cc, err := v.port.Wait()
		if err != nil {
			if errors.Is(err, completion.ErrClosed) || !v.running.IsOn() {
				return
			}
			logx.Error("Worker: wait completion", "id", id, "err", err)

			pause = min(max(pause*2, waitPauseMin), waitPauseMax)
			time.Sleep(pause)
			continue
		}
		pause = 0

		if cc.Poison {
			if !v.running.IsOn() {
				return
			}
			continue
		}

		v.dispatch(id, cc)
	}
}

func (v *workerPool) dispatch(id int, cc completion.Completion[*Conn]) {
	defer func() {
		if e := recover(); e != nil {
			logx.Error("Worker: panic", "id", id, "err", fmt.Errorf("%+v", e))
		}
	}()

	v.handle(cc)
}
