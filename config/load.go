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

package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Loader wraps a *viper.Viper bound to Config, watching the config file for
// changes. Reload is purely additive/non-load-bearing per §9: the core
// protocol state machine never consults a live Loader, only whatever
// Config snapshot it was constructed with at startup.
type Loader struct {
	v *viper.Viper
}

// NewLoader reads path (any viper-supported format: yaml/json/toml) into a
// fresh Loader.
func NewLoader(path string) (*Loader, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	return &Loader{v: v}, nil
}

// Get unmarshals the current snapshot into a Config.
func (l *Loader) Get() (*Config, error) {
	cfg := Default()
	if err := l.v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

// OnChange registers fn to run whenever the underlying file changes on
// disk, and starts watching it.
func (l *Loader) OnChange(fn func(cfg *Config)) {
	l.v.OnConfigChange(func(_ fsnotify.Event) {
		if cfg, err := l.Get(); err == nil {
			fn(cfg)
		}
	})
	l.v.WatchConfig()
}
