/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

// Package completion delivers finished socket reads and writes to a set of
// waiting goroutines. Every registered descriptor has at most one operation in
// flight, and every completion is handed to exactly one caller of Wait.
package completion

import (
	"go.osspkg.com/errors"
)

var (
	ErrClosed        = errors.New("completion port closed")
	ErrUnknownKey    = errors.New("unknown association key")
	ErrPending       = errors.New("operation already pending")
	ErrEmptyBuffer   = errors.New("empty operation buffer")
	ErrNotSupported  = errors.New("completion port is not supported on this platform")
	ErrInvalidHandle = errors.New("invalid handle")
)

// Key is the opaque association key bound to a handle at registration.
type Key uint64

type Op int32

const (
	OpNone Op = iota
	OpRead
	OpWrite
)

func (o Op) String() string {
	switch o {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	default:
		return "none"
	}
}

// Completion is one finished operation, or a synthetic message posted with
// Post. Poison marks the shutdown pellet; it carries no key and no value.
type Completion[T any] struct {
	Key    Key
	Value  T
	Op     Op
	Bytes  int
	Err    error
	Poison bool
}

type Config struct {
	// Capacity is a sizing hint for the registry.
	Capacity int
}
