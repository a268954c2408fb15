/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

//go:build !linux

package fd

import (
	"net"

	"go.osspkg.com/errors"
)

var (
	ErrNoDescriptor = errors.New("connect has no descriptor")
	ErrNotSupported = errors.New("descriptor detach is not supported on this platform")
)

func Detach(c net.Conn) (int, error) {
	return -1, errors.Wrap(ErrNotSupported, c.Close())
}

func Close(int) error {
	return ErrNotSupported
}
