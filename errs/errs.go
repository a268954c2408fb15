/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package errs

import (
	"io"
	"net"
	"strings"

	"go.osspkg.com/errors"
	"golang.org/x/sys/unix"
)

// IsClosed reports errors caused by the peer or by our own close, which are
// part of a normal connection teardown rather than a failure.
func IsClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, unix.ECONNRESET) ||
		errors.Is(err, unix.EPIPE) ||
		errors.Is(err, unix.ECONNABORTED) ||
		strings.Contains(err.Error(), "use of closed network connection") ||
		strings.Contains(err.Error(), "connection reset by peer") ||
		strings.Contains(err.Error(), "broken pipe") {
		return true
	}
	return false
}
