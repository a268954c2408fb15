/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package server

import (
	"fmt"
	"time"

	"go.osspkg.com/echoport/address"
	"go.osspkg.com/echoport/internal"
)

const (
	DefaultPort       = 9000
	DefaultBufferSize = 512
	DefaultWorkers    = 4
)

type Config struct {
	// Host to listen on, empty means all interfaces.
	Host       string        `yaml:"host"`
	Port       int           `yaml:"port"`
	Network    string        `yaml:"network,omitempty"`
	BufferSize int           `yaml:"buffer_size,omitempty"`
	Workers    int           `yaml:"workers,omitempty"`
	KeepAlive  time.Duration `yaml:"keep_alive,omitempty"`
}

func (c Config) withDefaults() Config {
	c.Port = internal.NotZero(c.Port, DefaultPort)
	c.BufferSize = internal.NotZero(c.BufferSize, DefaultBufferSize)
	c.Workers = internal.NotZero(c.Workers, DefaultWorkers)
	if len(c.Network) == 0 {
		c.Network = internal.NetTCP
	}
	return c
}

func (c Config) Validate() error {
	if err := internal.IsStreamNetwork(c.Network); err != nil {
		return err
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("invalid buffer size %d", c.BufferSize)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("invalid workers count %d", c.Workers)
	}
	return nil
}

func (c Config) Address() string {
	return address.Join(c.Host, c.Port)
}
