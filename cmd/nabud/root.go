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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sabouaram/nabud/config"
	"github.com/sabouaram/nabud/server"

	liblog "github.com/nabbar/golib/logger"
)

func newRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "nabud",
		Short: "NABU Network Adaptor server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfgPath)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "nabud.yaml", "path to the configuration file")

	return cmd
}

func run(cfgPath string) error {
	loader, e := config.NewLoader(cfgPath)
	if e != nil {
		return e
	}

	cfg, e := loader.Get()
	if e != nil {
		return e
	}

	if e = cfg.Validate(); e != nil {
		return e
	}

	log := liblog.New(context.Background())
	if e = log.SetOptions(&cfg.Logger); e != nil {
		return fmt.Errorf("nabud: configure logger: %w", e)
	}

	srv, e := server.New(cfg, log)
	if e != nil {
		return e
	}

	loader.OnChange(func(next *config.Config) {
		// Additive only: new listeners/serial ports picked up on restart,
		// never swapped under a running adaptor loop (§9).
		if e := log.SetOptions(&next.Logger); e != nil {
			log.Error("reload logger options", e)
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return srv.Run(ctx)
}
