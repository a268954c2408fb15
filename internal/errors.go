/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package internal

import (
	"go.osspkg.com/errors"

	"go.osspkg.com/echoport/errs"
)

var (
	ErrServAlreadyRunning = errors.New("server already running")
)

func NormalCloseError(err error) error {
	if errs.IsClosed(err) {
		return nil
	}
	return err
}
