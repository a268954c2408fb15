/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

//go:build linux

package fd

import (
	"fmt"
	"net"
	"syscall"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"
)

var ErrNoDescriptor = errors.New("connect has no descriptor")

// Detach takes the socket out of the Go runtime poller: the descriptor is
// duplicated in non-blocking close-on-exec mode and c is closed. The caller
// owns the returned descriptor.
func Detach(c net.Conn) (int, error) {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return -1, errors.Wrap(ErrNoDescriptor, c.Close())
	}

	raw, err := sc.SyscallConn()
	if err != nil {
		return -1, errors.Wrap(fmt.Errorf("syscall conn: %w", err), c.Close())
	}

	nfd := -1
	var dupErr error
	err = raw.Control(func(sysfd uintptr) {
		nfd, dupErr = unix.FcntlInt(sysfd, unix.F_DUPFD_CLOEXEC, 0)
	})
	if err = errors.Wrap(err, dupErr); err != nil {
		return -1, errors.Wrap(fmt.Errorf("dup: %w", err), c.Close())
	}

	if err = unix.SetNonblock(nfd, true); err != nil {
		return -1, errors.Wrap(fmt.Errorf("set nonblock: %w", err), unix.Close(nfd), c.Close())
	}

	if err = c.Close(); err != nil {
		return -1, errors.Wrap(fmt.Errorf("close origin: %w", err), unix.Close(nfd))
	}

	return nfd, nil
}

// Close closes a descriptor returned by Detach that was never handed over.
func Close(nfd int) error {
	return unix.Close(nfd)
}
