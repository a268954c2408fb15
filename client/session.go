/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"go.osspkg.com/echoport/errs"
)

const (
	QuitCommand       = "quit"
	DefaultBufferSize = 512
)

// Session is the interactive line client: every line typed on In is sent
// as is, and a single response chunk is printed to Out. Typing quit ends
// the session without sending anything.
type Session struct {
	In         io.Reader
	Out        io.Writer
	BufferSize int
}

func (v *Session) Run(ctx context.Context, conn io.ReadWriter) error {
	size := v.BufferSize
	if size <= 0 {
		size = DefaultBufferSize
	}
	buf := make([]byte, size)

	scanner := bufio.NewScanner(v.In)

	v.printf("Connected to server\n")

	for {
		if ctx.Err() != nil {
			return nil
		}

		v.printf("Enter message to send (or '%s' to exit): ", QuitCommand)
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		if line == QuitCommand {
			return nil
		}
		if len(line) == 0 {
			continue
		}

		n, err := conn.Write([]byte(line))
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		v.printf("Sent %d bytes to server\n", n)

		m, err := conn.Read(buf)
		if m == 0 && (err == nil || errs.IsClosed(err)) {
			v.printf("Server closed connection\n")
			return nil
		}
		if err != nil && m == 0 {
			return fmt.Errorf("receive: %w", err)
		}

		v.printf("Received from server: %s\n", buf[:m])
	}
}

func (v *Session) printf(format string, args ...any) {
	fmt.Fprintf(v.Out, format, args...) //nolint: errcheck
}
