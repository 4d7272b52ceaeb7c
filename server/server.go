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

// Package server wires the protocol, transport, catalogue, registry, and
// adaptor packages into a running NABU Network Adaptor: TCP listeners and
// serial ports each own a runner/startStop lifecycle, accepted connections
// spawn their own adaptor.Run goroutine, and a runner/ticker drives the
// registry housekeeping sweep.
package server

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/sabouaram/nabud/adaptor"
	"github.com/sabouaram/nabud/catalogue"
	"github.com/sabouaram/nabud/catalogue/providerfile"
	"github.com/sabouaram/nabud/catalogue/providerpak"
	"github.com/sabouaram/nabud/config"
	"github.com/sabouaram/nabud/nhacp"
	"github.com/sabouaram/nabud/registry"
	"github.com/sabouaram/nabud/retronet"
	"github.com/sabouaram/nabud/transport"

	liblog "github.com/nabbar/golib/logger"
	libsst "github.com/nabbar/golib/runner/startStop"
	libtck "github.com/nabbar/golib/runner/ticker"
)

const defaultSweepInterval = 30 * time.Second

// Server owns the registry, the configured providers, and one
// runner/startStop per listener/serial-port plus one runner/ticker for the
// housekeeping sweep.
type Server struct {
	cfg *config.Config
	log liblog.Logger

	reg      *registry.Registry
	provider catalogue.Provider
	nhacp    *nhacp.Dispatcher
	retronet *retronet.Dispatcher

	listeners []libsst.StartStop
	sweep     libtck.Ticker
}

// New builds a Server from cfg, resolving whichever catalogue providers it
// configures. At least one of FileRoot/PAKRoot must be set.
func New(cfg *config.Config, log liblog.Logger) (*Server, error) {
	provider, e := buildProvider(cfg)
	if e != nil {
		return nil, e
	}

	return &Server{
		cfg:      cfg,
		log:      log,
		reg:      registry.New(),
		provider: provider,
		nhacp:    nhacp.New(),
		retronet: retronet.New(),
	}, nil
}

func buildProvider(cfg *config.Config) (catalogue.Provider, error) {
	cat := cfg.Catalogue

	channels := make([]catalogue.Channel, 0, len(cat.Channels))
	pakChannels := make([]catalogue.Channel, 0)
	fileChannels := make([]catalogue.Channel, 0)

	for _, c := range cat.Channels {
		ch := catalogue.Channel{
			Number:          c.Number,
			DefaultFile:     c.DefaultFile,
			RetroNetEnabled: c.RetroNetEnabled,
		}
		if c.Type == "pak" {
			ch.Type = catalogue.TypePAK
			pakChannels = append(pakChannels, ch)
		} else {
			ch.Type = catalogue.TypeNABU
			fileChannels = append(fileChannels, ch)
		}
		channels = append(channels, ch)
	}

	switch {
	case cat.FileRoot != "" && cat.PAKRoot != "":
		return nil, fmt.Errorf("server: combining a file and a PAK provider needs a multiplexing provider, not yet built; configure one root")
	case cat.FileRoot != "":
		return providerfile.New(cat.FileRoot, fileChannels), nil
	case cat.PAKRoot != "":
		key, e := decodeKey(cat.PAKKeyHex)
		if e != nil {
			return nil, e
		}
		nonce, e := decodeNonce(cat.PAKNonceHex)
		if e != nil {
			return nil, e
		}
		return providerpak.New(cat.PAKRoot, key, nonce, pakChannels), nil
	default:
		return nil, fmt.Errorf("server: catalogue.fileRoot or catalogue.pakRoot must be set")
	}
}

func decodeKey(s string) (k [32]byte, err error) {
	b, e := hex.DecodeString(s)
	if e != nil || len(b) != 32 {
		return k, fmt.Errorf("server: pakKeyHex must decode to 32 bytes")
	}
	copy(k[:], b)
	return k, nil
}

func decodeNonce(s string) (n [12]byte, err error) {
	b, e := hex.DecodeString(s)
	if e != nil || len(b) != 12 {
		return n, fmt.Errorf("server: pakNonceHex must decode to 12 bytes")
	}
	copy(n[:], b)
	return n, nil
}

// Run starts every configured listener/serial port and the housekeeping
// sweep, blocking until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	for _, lc := range s.cfg.Listen {
		s.startListener(ctx, lc.Network, lc.Port)
	}

	for _, sc := range s.cfg.Serial {
		s.startSerial(ctx, sc)
	}

	interval := defaultSweepInterval
	if s.cfg.RegistrySweepInterval > 0 {
		interval = s.cfg.RegistrySweepInterval.Time()
	}
	s.sweep = libtck.New(interval, s.sweepFunc)
	if e := s.sweep.Start(ctx); e != nil {
		return e
	}

	<-ctx.Done()
	return s.Stop(context.Background())
}

// Stop tears down every listener, the sweep ticker, and aborts every
// registered connection.
func (s *Server) Stop(ctx context.Context) error {
	for _, l := range s.listeners {
		_ = l.Stop(ctx)
	}
	if s.sweep != nil {
		_ = s.sweep.Stop(ctx)
	}
	s.reg.Enumerate(func(n registry.Node) bool {
		if c, ok := n.(*transport.Connection); ok {
			c.Abort()
		}
		return true
	})
	return nil
}

func (s *Server) sweepFunc(_ context.Context, _ *time.Ticker) error {
	s.reg.Enumerate(func(n registry.Node) bool {
		return true
	})
	return nil
}

func (s *Server) startListener(ctx context.Context, network string, port int) {
	var ln *transport.Listener

	start := func(ctx context.Context) error {
		var e error
		ln, e = transport.ListenTCP(network, port)
		if e != nil {
			return e
		}

		go s.acceptLoop(ctx, ln)
		<-ctx.Done()
		return nil
	}

	stop := func(ctx context.Context) error {
		if ln != nil {
			return ln.Close()
		}
		return nil
	}

	r := libsst.New(start, stop)
	s.listeners = append(s.listeners, r)
	_ = r.Start(ctx)
}

func (s *Server) acceptLoop(ctx context.Context, ln *transport.Listener) {
	for {
		conn, e := ln.Accept()
		if e != nil {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		s.spawn(ctx, conn)
	}
}

func (s *Server) startSerial(ctx context.Context, sc config.SerialConfig) {
	start := func(ctx context.Context) error {
		conn, e := transport.OpenSerial(transport.SerialProfile{
			Device:   sc.Device,
			Baud:     sc.Baud,
			StopBits: sc.StopBits,
			RTSCTS:   sc.RTSCTS,
		})
		if e != nil {
			return e
		}

		s.spawn(ctx, conn)
		<-ctx.Done()
		return nil
	}

	r := libsst.New(start, nil)
	s.listeners = append(s.listeners, r)
	_ = r.Start(ctx)
}

func (s *Server) spawn(ctx context.Context, conn *transport.Connection) {
	conn.SetRegistered(true)
	s.reg.Insert(conn)

	a := &adaptor.Adaptor{
		Conn:     conn,
		Provider: s.provider,
		NHACP:    s.nhacp,
		RetroNet: s.retronet,
		Log:      s.log,
		Watchdog: s.cfg.RequestWatchdog.Time(),
	}

	go func() {
		defer func() {
			s.reg.Remove(conn)
			conn.SetRegistered(false)
		}()
		a.Run()
	}()
}
