/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package config binds the nabud server's viper-loaded configuration:
// listener ports, serial devices, the image catalogue, and the ambient
// logger options, the same mapstructure-tagged shape the teacher's own
// logger/config package uses.
package config

import (
	"fmt"

	libval "github.com/go-playground/validator/v10"
	libdur "github.com/nabbar/golib/duration"
	logcfg "github.com/nabbar/golib/logger/config"
)

// ChannelConfig describes one catalogue channel entry.
type ChannelConfig struct {
	Number          int16  `mapstructure:"number" validate:"required"`
	Type            string `mapstructure:"type" validate:"omitempty,oneof=nabu pak"`
	DefaultFile     string `mapstructure:"defaultFile"`
	RetroNetEnabled bool   `mapstructure:"retronetEnabled"`
}

// CatalogueConfig selects and parameterizes the image providers.
type CatalogueConfig struct {
	// FileRoot, when non-empty, enables the local file provider rooted here.
	FileRoot string `mapstructure:"fileRoot"`

	// PAKRoot, when non-empty, enables the PAK archive provider rooted here.
	PAKRoot string `mapstructure:"pakRoot"`
	// PAKKeyHex/PAKNonceHex are the hex-encoded decryption key/nonce for the
	// PAK provider's crypt.New.
	PAKKeyHex   string `mapstructure:"pakKeyHex"`
	PAKNonceHex string `mapstructure:"pakNonceHex"`

	Channels []ChannelConfig `mapstructure:"channels"`
}

// ListenConfig is one TCP listener.
type ListenConfig struct {
	Network string `mapstructure:"network" validate:"omitempty,oneof=tcp tcp4 tcp6"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
}

// SerialConfig is one serial port to open at startup.
type SerialConfig struct {
	Device   string `mapstructure:"device" validate:"required"`
	Baud     int    `mapstructure:"baud"`
	StopBits int    `mapstructure:"stopBits" validate:"omitempty,oneof=1 2"`
	RTSCTS   bool   `mapstructure:"rtscts"`
}

// Config is the top-level nabud configuration.
type Config struct {
	Listen []ListenConfig `mapstructure:"listen"`
	Serial []SerialConfig `mapstructure:"serial"`

	Catalogue CatalogueConfig `mapstructure:"catalogue"`

	// RegistrySweepInterval is the registry housekeeping period; 30s if
	// zero (§9 Open Question resolution). Accepts the same "1h30m"/day-
	// extended duration strings as the teacher's own duration.Duration
	// config fields (e.g. logger/config's rotation periods).
	RegistrySweepInterval libdur.Duration `mapstructure:"registrySweepInterval"`

	// RequestWatchdog bounds how long the adaptor loop waits for a
	// request's follow-up bytes before aborting the connection (§4.2);
	// transport.DefaultWatchdog if zero.
	RequestWatchdog libdur.Duration `mapstructure:"requestWatchdog"`

	Logger logcfg.Options `mapstructure:"logger"`
}

// Validate runs struct-tag validation over c, the same go-playground/
// validator the teacher's logcfg.Options.Validate uses.
func (c *Config) Validate() error {
	if err := libval.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Default returns a minimal Config: one TCP listener on 5816 (the port the
// existing NABU emulator ecosystem defaults to) and no configured catalogue
// — the operator must supply at least one provider root before starting.
func Default() *Config {
	return &Config{
		Listen: []ListenConfig{{Network: "tcp", Port: 5816}},
	}
}
