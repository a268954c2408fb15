/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package listen

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.osspkg.com/echoport/internal"
)

// New opens a stream listener. Accepted connections are handed over to the
// completion port, so keep-alive probing is left to the kernel defaults
// unless keepAlive is positive.
func New(ctx context.Context, network, address string, keepAlive time.Duration) (net.Listener, error) {
	if err := internal.IsStreamNetwork(network); err != nil {
		return nil, err
	}

	lc := net.ListenConfig{KeepAlive: -1, Control: reuseAddr}
	if keepAlive > 0 {
		lc.KeepAlive = keepAlive
	}

	l, err := lc.Listen(ctx, network, address)
	if err != nil {
		return nil, fmt.Errorf("listen %s %s: %w", network, address, err)
	}
	return l, nil
}
