/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package errs_test

import (
	"fmt"
	"io"
	"net"
	"testing"

	"go.osspkg.com/casecheck"
	"golang.org/x/sys/unix"

	"go.osspkg.com/echoport/errs"
)

func TestUnit_IsClosed(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{err: nil, want: false},
		{err: io.EOF, want: true},
		{err: fmt.Errorf("read: %w", unix.ECONNRESET), want: true},
		{err: fmt.Errorf("write: %w", unix.EPIPE), want: true},
		{err: net.ErrClosed, want: true},
		{err: fmt.Errorf("read: %w", unix.EBADF), want: false},
		{err: fmt.Errorf("boom"), want: false},
	}
	for i, tt := range tests {
		t.Run(fmt.Sprintf("Case%d", i), func(t *testing.T) {
			casecheck.Equal(t, tt.want, errs.IsClosed(tt.err))
		})
	}
}
