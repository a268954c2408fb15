/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"fmt"
	"testing"
	"time"

	"go.osspkg.com/casecheck"
	"go.osspkg.com/errors"
	"go.osspkg.com/syncing"

	"go.osspkg.com/echoport/completion"
)

type fakePort struct {
	reads    [][]byte
	writes   [][]byte
	released []completion.Key
	fail     error
	sentinel int
}

func (v *fakePort) Register(int, *Conn) (completion.Key, error) { return 1, v.fail }
func (v *fakePort) Wait() (completion.Completion[*Conn], error) {
	return completion.Completion[*Conn]{}, completion.ErrClosed
}
func (v *fakePort) Len() int     { return 0 }
func (v *fakePort) Close() error { return nil }

func (v *fakePort) SubmitRead(_ completion.Key, buf []byte) error {
	if v.fail != nil {
		return v.fail
	}
	v.reads = append(v.reads, buf)
	return nil
}

func (v *fakePort) SubmitWrite(_ completion.Key, buf []byte) error {
	if v.fail != nil {
		return v.fail
	}
	v.writes = append(v.writes, buf)
	return nil
}

func (v *fakePort) PostSentinel() error {
	v.sentinel++
	return nil
}

func (v *fakePort) Release(key completion.Key) error {
	v.released = append(v.released, key)
	return nil
}

func newTestConn(state State) *Conn {
	c := acquireConn(DefaultBufferSize)
	c.key = 7
	c.seq = 1
	c.state = state
	return c
}

func TestUnit_AdvanceReadToWrite(t *testing.T) {
	p := &fakePort{}
	srv := &_server{port: p}

	c := newTestConn(StateReading)
	copy(c.buf, "hello")

	srv.advance(completion.Completion[*Conn]{Key: 7, Value: c, Op: completion.OpRead, Bytes: 5})

	casecheck.Equal(t, StateWriting, c.state)
	casecheck.Equal(t, 5, c.pending)
	casecheck.Equal(t, 1, len(p.writes))
	casecheck.Equal(t, "hello", string(p.writes[0]))
	casecheck.Equal(t, 0, len(p.released))
}

func TestUnit_AdvanceFullBufferIsWrittenAsIs(t *testing.T) {
	p := &fakePort{}
	srv := &_server{port: p}

	c := newTestConn(StateReading)
	for i := range c.buf {
		c.buf[i] = byte(i)
	}

	srv.advance(completion.Completion[*Conn]{Value: c, Op: completion.OpRead, Bytes: DefaultBufferSize})

	casecheck.Equal(t, 1, len(p.writes))
	casecheck.Equal(t, DefaultBufferSize, len(p.writes[0]))
	casecheck.Equal(t, byte((DefaultBufferSize-1)%256), p.writes[0][DefaultBufferSize-1])
}

func TestUnit_AdvanceWriteToRead(t *testing.T) {
	p := &fakePort{}
	srv := &_server{port: p}

	c := newTestConn(StateWriting)
	c.pending = 3

	srv.advance(completion.Completion[*Conn]{Value: c, Op: completion.OpWrite, Bytes: 3})

	casecheck.Equal(t, StateReading, c.state)
	casecheck.Equal(t, 0, c.pending)
	casecheck.Equal(t, 1, len(p.reads))
	casecheck.Equal(t, DefaultBufferSize, len(p.reads[0]))
}

func TestUnit_AdvanceReleases(t *testing.T) {
	ioErr := fmt.Errorf("read: %w", errors.New("boom"))

	tests := []struct {
		name  string
		state State
		cc    completion.Completion[*Conn]
		fail  error
	}{
		{name: "zero read", state: StateReading, cc: completion.Completion[*Conn]{Op: completion.OpRead}},
		{name: "read error", state: StateReading, cc: completion.Completion[*Conn]{Op: completion.OpRead, Err: ioErr}},
		{name: "write error", state: StateWriting, cc: completion.Completion[*Conn]{Op: completion.OpWrite, Err: ioErr}},
		{name: "op mismatch", state: StateReading, cc: completion.Completion[*Conn]{Op: completion.OpWrite, Bytes: 1}},
		{name: "submit write fails", state: StateReading, fail: ioErr,
			cc: completion.Completion[*Conn]{Op: completion.OpRead, Bytes: 1}},
		{name: "submit read fails", state: StateWriting, fail: ioErr,
			cc: completion.Completion[*Conn]{Op: completion.OpWrite, Bytes: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &fakePort{fail: tt.fail}
			srv := &_server{port: p}

			tt.cc.Value = newTestConn(tt.state)
			srv.advance(tt.cc)

			casecheck.Equal(t, 1, len(p.released))
			casecheck.Equal(t, completion.Key(7), p.released[0])
			casecheck.Equal(t, 0, len(p.reads))
			casecheck.Equal(t, 0, len(p.writes))
		})
	}
}

func TestUnit_AdvanceIgnoresEmptyCompletion(t *testing.T) {
	p := &fakePort{}
	srv := &_server{port: p}

	srv.advance(completion.Completion[*Conn]{Op: completion.OpRead, Bytes: 1})

	casecheck.Equal(t, 0, len(p.released))
	casecheck.Equal(t, 0, len(p.writes))
}

func TestUnit_WorkerPoolStopPostsSentinelPerWorker(t *testing.T) {
	p := &fakePort{}
	wp := newWorkerPool(3, p, syncing.NewSwitch(), nil)

	casecheck.NoError(t, wp.Stop())
	casecheck.Equal(t, 3, p.sentinel)
}

type waitResult struct {
	cc  completion.Completion[*Conn]
	err error
}

type scriptPort struct {
	fakePort
	script chan waitResult
}

func (v *scriptPort) Wait() (completion.Completion[*Conn], error) {
	r, ok := <-v.script
	if !ok {
		return completion.Completion[*Conn]{}, completion.ErrClosed
	}
	return r.cc, r.err
}

func TestUnit_WorkerRunPoisonFollowsRunningSwitch(t *testing.T) {
	p := &scriptPort{script: make(chan waitResult)}
	running := syncing.NewSwitch()
	casecheck.True(t, running.On())

	handled := make(chan completion.Completion[*Conn], 1)
	wp := newWorkerPool(1, p, running, func(cc completion.Completion[*Conn]) {
		handled <- cc
	})

	done := make(chan struct{})
	go func() {
		wp.run(0)
		close(done)
	}()

	expectHandled := func(key completion.Key) {
		select {
		case cc := <-handled:
			casecheck.Equal(t, key, cc.Key)
		case <-time.After(3 * time.Second):
			t.Fatalf("completion %d was not dispatched", key)
		}
	}

	p.script <- waitResult{cc: completion.Completion[*Conn]{Poison: true}}
	p.script <- waitResult{cc: completion.Completion[*Conn]{Key: 1, Op: completion.OpRead}}
	expectHandled(1)

	p.script <- waitResult{err: fmt.Errorf("epoll wait: %w", errors.New("transient"))}
	p.script <- waitResult{cc: completion.Completion[*Conn]{Key: 2, Op: completion.OpRead}}
	expectHandled(2)

	select {
	case <-done:
		t.Fatalf("worker exited while running")
	default:
	}

	running.Off()
	p.script <- waitResult{cc: completion.Completion[*Conn]{Poison: true}}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatalf("worker did not exit on poison after stop")
	}
}

func TestUnit_ConfigDefaults(t *testing.T) {
	c := Config{}.withDefaults()

	casecheck.Equal(t, DefaultPort, c.Port)
	casecheck.Equal(t, DefaultBufferSize, c.BufferSize)
	casecheck.Equal(t, DefaultWorkers, c.Workers)
	casecheck.Equal(t, "tcp", c.Network)
	casecheck.Equal(t, "0.0.0.0:9000", c.Address())
	casecheck.NoError(t, c.Validate())

	c.Network = "udp"
	casecheck.Error(t, c.Validate())
}
