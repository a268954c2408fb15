/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal_test

import (
	"sync/atomic"
	"testing"
	"time"

	"go.osspkg.com/casecheck"

	"go.osspkg.com/echoport/internal"
)

type mockDeadline struct {
	calls atomic.Int64
}

func (m *mockDeadline) SetDeadline(time.Time) error {
	m.calls.Add(1)
	return nil
}

func TestUnit_DeadlineUpdate(t *testing.T) {
	m := &mockDeadline{}

	stop := internal.DeadlineUpdate(m, 20*time.Millisecond)
	time.Sleep(55 * time.Millisecond)
	stop()

	n := m.calls.Load()
	casecheck.True(t, n >= 2, n)

	time.Sleep(30 * time.Millisecond)
	casecheck.Equal(t, n, m.calls.Load())
}

func TestUnit_DeadlineUpdateDisabled(t *testing.T) {
	m := &mockDeadline{}

	internal.DeadlineUpdate(m, 0)()
	casecheck.Equal(t, int64(0), m.calls.Load())
}
