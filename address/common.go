/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package address

import (
	"net"
	"strconv"
	"strings"

	"go.osspkg.com/errors"
)

var (
	ErrResolveTCPAddress = errors.New("resolve tcp address")
)

// RandomPort returns host joined with a port that was free at the moment of the call.
func RandomPort(host string) (string, error) {
	network := "tcp4"
	if strings.Contains(host, ":") {
		network = "tcp6"
	}

	addr, err := net.ResolveTCPAddr(network, net.JoinHostPort(host, "0"))
	if err != nil {
		return host, errors.Wrap(err, ErrResolveTCPAddress)
	}

	l, err := net.ListenTCP(network, addr)
	if err != nil {
		return host, errors.Wrap(err, ErrResolveTCPAddress)
	}

	v := l.Addr().String()

	if err = l.Close(); err != nil {
		return host, errors.Wrap(err, ErrResolveTCPAddress)
	}

	return v, nil
}

// Join builds a listen or dial address. An empty host means all interfaces.
func Join(host string, port int) string {
	host = strings.Trim(host, "[]")
	if len(host) == 0 {
		host = "0.0.0.0"
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Port extracts the numeric port from host:port, or returns 0.
func Port(address string) int {
	_, port, err := net.SplitHostPort(address)
	if err != nil {
		return 0
	}
	v, err := strconv.Atoi(port)
	if err != nil || v < 0 || v > 65535 {
		return 0
	}
	return v
}
