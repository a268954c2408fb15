/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

//go:build !unix

package listen

import "syscall"

func reuseAddr(_, _ string, _ syscall.RawConn) error {
	return nil
}
