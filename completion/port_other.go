/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

//go:build !linux

package completion

type Port[T any] struct{}

func New[T any](_ Config) (*Port[T], error) {
	return nil, ErrNotSupported
}

func (*Port[T]) Register(int, T) (Key, error) { return 0, ErrNotSupported }
func (*Port[T]) SubmitRead(Key, []byte) error { return ErrNotSupported }
func (*Port[T]) SubmitWrite(Key, []byte) error { return ErrNotSupported }
func (*Port[T]) Wait() (Completion[T], error) { return Completion[T]{}, ErrNotSupported }
func (*Port[T]) Post(Completion[T]) error { return ErrNotSupported }
func (*Port[T]) PostSentinel() error { return ErrNotSupported }
func (*Port[T]) Release(Key) error { return ErrNotSupported }
func (*Port[T]) Len() int { return 0 }
func (*Port[T]) Close() error { return nil }
