/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

//go:build linux

package completion

import (
	"encoding/binary"
	"fmt"
	"sync/atomic"

	"go.osspkg.com/errors"
	"go.osspkg.com/logx"
	"golang.org/x/sys/unix"
)

const (
	readEvents  = unix.EPOLLIN | unix.EPOLLRDHUP | unix.EPOLLONESHOT
	writeEvents = unix.EPOLLOUT | unix.EPOLLONESHOT

	// registry keys start at 1
	wakeKey Key = 0
)

// Port is an epoll instance driven as a completion queue: descriptors are
// armed one-shot for a single operation, and the waiter that receives the
// readiness performs the syscall and reports its outcome.
type Port[T any] struct {
	epfd   int
	wfd    int
	reg    *registry[T]
	notes  *notes[T]
	closed atomic.Bool
}

func New[T any](c Config) (*Port[T], error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("epoll create: %w", err)
	}

	wfd, err := unix.Eventfd(0, unix.EFD_SEMAPHORE|unix.EFD_NONBLOCK|unix.EFD_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("eventfd create: %w", err), unix.Close(epfd))
	}

	ev := unix.EpollEvent{Events: unix.EPOLLIN}
	setKey(&ev, wakeKey)
	if err = unix.EpollCtl(epfd, unix.EPOLL_CTL_ADD, wfd, &ev); err != nil {
		return nil, errors.Wrap(fmt.Errorf("epoll add wake fd: %w", err), unix.Close(wfd), unix.Close(epfd))
	}

	return &Port[T]{
		epfd:  epfd,
		wfd:   wfd,
		reg:   newRegistry[T](c.Capacity),
		notes: newNotes[T](),
	}, nil
}

// Register binds fd to the port. The port owns fd from now on and closes it
// in Release or Close. The descriptor joins the epoll set on its first
// submit, so no event can be reported for it before an operation is armed.
func (v *Port[T]) Register(fd int, value T) (Key, error) {
	if v.closed.Load() {
		return 0, ErrClosed
	}
	if fd < 0 {
		return 0, ErrInvalidHandle
	}

	e := v.reg.add(fd, value)

	return e.key, nil
}

func (v *Port[T]) SubmitRead(key Key, buf []byte) error {
	return v.submit(key, OpRead, buf)
}

func (v *Port[T]) SubmitWrite(key Key, buf []byte) error {
	return v.submit(key, OpWrite, buf)
}

func (v *Port[T]) submit(key Key, op Op, buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyBuffer
	}
	e, ok := v.reg.get(key)
	if !ok {
		return ErrUnknownKey
	}
	if Op(e.op.Load()) != OpNone {
		return ErrPending
	}

	e.buf, e.off = buf, 0

	return v.arm(e, op)
}

// arm publishes op and then hands the descriptor to epoll. If the kernel
// call fails but op was already claimed by a waiter, the completion belongs
// to that waiter and the submitter must not see an error.
func (v *Port[T]) arm(e *entry[T], op Op) error {
	ctl := unix.EPOLL_CTL_MOD
	if e.added.CompareAndSwap(false, true) {
		ctl = unix.EPOLL_CTL_ADD
	}

	e.op.Store(int32(op))

	ev := unix.EpollEvent{Events: readEvents}
	if op == OpWrite {
		ev.Events = writeEvents
	}
	setKey(&ev, e.key)

	if err := unix.EpollCtl(v.epfd, ctl, e.fd, &ev); err != nil {
		if !e.op.CompareAndSwap(int32(op), int32(OpNone)) {
			return nil
		}
		if ctl == unix.EPOLL_CTL_ADD {
			e.added.Store(false)
		}
		return fmt.Errorf("epoll ctl: %w", err)
	}
	return nil
}

// Wait blocks until a completion is available. It is safe to call from any
// number of goroutines; each completion is returned to one of them.
func (v *Port[T]) Wait() (Completion[T], error) {
	var events [1]unix.EpollEvent

	for {
		if v.closed.Load() {
			return Completion[T]{}, ErrClosed
		}

		n, err := unix.EpollWait(v.epfd, events[:], -1)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			if v.closed.Load() || errors.Is(err, unix.EBADF) {
				return Completion[T]{}, ErrClosed
			}
			return Completion[T]{}, fmt.Errorf("epoll wait: %w", err)
		}
		if n <= 0 {
			continue
		}

		key := getKey(&events[0])
		if key == wakeKey {
			if c, ok := v.takeNote(); ok {
				return c, nil
			}
			continue
		}

		e, ok := v.reg.get(key)
		if !ok {
			continue
		}
		if c, ok := v.perform(e); ok {
			return c, nil
		}
	}
}

// perform runs the operation armed on e. Readiness that arrives while no
// operation is armed is dropped: the next submit re-arms the descriptor.
func (v *Port[T]) perform(e *entry[T]) (Completion[T], bool) {
	op := Op(e.op.Swap(int32(OpNone)))
	c := Completion[T]{Key: e.key, Value: e.value, Op: op}

	switch op {
	case OpRead:
		n, err := unix.Read(e.fd, e.buf)
		switch {
		case isAgain(err):
			return v.again(e, op)
		case err != nil:
			c.Err = fmt.Errorf("read: %w", err)
		default:
			c.Bytes = n
		}

	case OpWrite:
		n, err := unix.Write(e.fd, e.buf[e.off:])
		switch {
		case isAgain(err):
			return v.again(e, op)
		case err != nil:
			c.Err = fmt.Errorf("write: %w", err)
		default:
			e.off += n
			if e.off < len(e.buf) {
				logx.Debug("Completion: short write", "key", uint64(e.key), "written", e.off, "want", len(e.buf))
				return v.again(e, op)
			}
			c.Bytes = e.off
		}

	default:
		return c, false
	}

	return c, true
}

func (v *Port[T]) again(e *entry[T], op Op) (Completion[T], bool) {
	if err := v.arm(e, op); err != nil {
		return Completion[T]{Key: e.key, Value: e.value, Op: op, Err: err}, true
	}
	return Completion[T]{}, false
}

// Post enqueues a synthetic completion for one waiter.
func (v *Port[T]) Post(c Completion[T]) error {
	if v.closed.Load() {
		return ErrClosed
	}

	v.notes.push(c)

	var b [8]byte
	binary.NativeEndian.PutUint64(b[:], 1)
	if _, err := unix.Write(v.wfd, b[:]); err != nil {
		return fmt.Errorf("eventfd write: %w", err)
	}
	return nil
}

// PostSentinel wakes exactly one blocked Wait with a poison completion.
func (v *Port[T]) PostSentinel() error {
	return v.Post(Completion[T]{Poison: true})
}

func (v *Port[T]) takeNote() (Completion[T], bool) {
	var b [8]byte
	if _, err := unix.Read(v.wfd, b[:]); err != nil {
		return Completion[T]{}, false
	}
	return v.notes.pop()
}

// Release deregisters the handle and closes it.
func (v *Port[T]) Release(key Key) error {
	e, ok := v.reg.remove(key)
	if !ok {
		return ErrUnknownKey
	}
	if !e.added.Load() {
		return unix.Close(e.fd)
	}
	return errors.Wrap(
		unix.EpollCtl(v.epfd, unix.EPOLL_CTL_DEL, e.fd, nil),
		unix.Close(e.fd),
	)
}

func (v *Port[T]) Len() int {
	return v.reg.len()
}

// Close closes every handle still registered and the port itself. Waiters
// must have returned before Close is called.
func (v *Port[T]) Close() (err error) {
	if !v.closed.CompareAndSwap(false, true) {
		return nil
	}
	for _, e := range v.reg.drain() {
		err = errors.Wrap(err, unix.Close(e.fd))
	}
	return errors.Wrap(err, unix.Close(v.wfd), unix.Close(v.epfd))
}

func isAgain(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EINTR)
}

func setKey(ev *unix.EpollEvent, key Key) {
	ev.Fd = int32(uint32(key))
	ev.Pad = int32(uint32(key >> 32))
}

func getKey(ev *unix.EpollEvent) Key {
	return Key(uint32(ev.Fd)) | Key(uint32(ev.Pad))<<32
}
