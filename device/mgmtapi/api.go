// Copyright 2021 Anapaya Systems
// Copyright 2026 The fwnet Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package mgmtapi implements the http management API of the device daemon.
package mgmtapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/pelletier/go-toml/v2"

	"github.com/sdrfw/fwnet/pkg/arpcache"
	"github.com/sdrfw/fwnet/pkg/log"
	"github.com/sdrfw/fwnet/pkg/netstack"
	api "github.com/sdrfw/fwnet/private/mgmtapi"
)

// DefaultTimeout bounds how long a request waits for the polling loop.
const DefaultTimeout = 2 * time.Second

// Device is the view of the network stack used by the API.
type Device interface {
	Do(ctx context.Context, fn func(*netstack.Stack)) error
	TriggerGARP()
}

// Info is the response of GET /info.
type Info struct {
	ID        string   `json:"id"`
	MAC       string   `json:"mac"`
	IP        string   `json:"ip"`
	Profile   string   `json:"profile"`
	Listeners []uint16 `json:"listeners"`
}

// ARPEntry is one entry of the ARP table.
type ARPEntry struct {
	IP  string `json:"ip"`
	MAC string `json:"mac"`
}

// Server implements the http management API of the device.
type Server struct {
	ID     string
	Device Device
	// Config is rendered as TOML by GET /config.
	Config any
	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration
}

// Handler returns the router serving the API under /api/v1.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
	}))
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/info", s.GetInfo)
		r.Get("/config", s.GetConfig)
		r.Get("/log/level", s.GetLogLevel)
		r.Put("/log/level", s.SetLogLevel)
		r.Get("/arp", s.GetARPTable)
		r.Post("/arp/{ip}", s.ResolveIP)
		r.Post("/garp", s.TriggerGARP)
	})
	return r
}

// GetInfo reports the identity of the device.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	info := Info{ID: s.ID}
	if !s.do(w, r, func(st *netstack.Stack) {
		info.MAC = st.MAC().String()
		info.IP = st.IP().String()
		info.Profile = st.Profile().Name
		info.Listeners = st.ListenerPorts()
	}) {
		return
	}
	api.JSONResponse(w, info)
}

// GetConfig renders the configuration.
func (s *Server) GetConfig(w http.ResponseWriter, r *http.Request) {
	raw, err := toml.Marshal(s.Config)
	if err != nil {
		api.ErrorResponse(w, api.Problem{
			Detail: api.StringRef(err.Error()),
			Status: http.StatusInternalServerError,
			Title:  "unable to marshal config",
			Type:   api.StringRef(api.InternalError),
		})
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write(raw)
}

// GetLogLevel is an indirection to the log level handler.
func (s *Server) GetLogLevel(w http.ResponseWriter, r *http.Request) {
	log.ConsoleLevel.ServeHTTP(w, r)
}

// SetLogLevel is an indirection to the log level handler.
func (s *Server) SetLogLevel(w http.ResponseWriter, r *http.Request) {
	log.ConsoleLevel.ServeHTTP(w, r)
}

// GetARPTable lists the ARP cache in slot order.
func (s *Server) GetARPTable(w http.ResponseWriter, r *http.Request) {
	var entries []arpcache.Entry
	if !s.do(w, r, func(st *netstack.Stack) { entries = st.ARPCache().Entries() }) {
		return
	}
	rep := make([]ARPEntry, 0, len(entries))
	for _, e := range entries {
		rep = append(rep, ARPEntry{IP: e.IP.String(), MAC: net.HardwareAddr(e.MAC[:]).String()})
	}
	api.JSONResponse(w, rep)
}

// ResolveIP broadcasts an ARP request for the address in the path. The
// answer shows up in the ARP table.
func (s *Server) ResolveIP(w http.ResponseWriter, r *http.Request) {
	ip, err := netip.ParseAddr(chi.URLParam(r, "ip"))
	if err != nil || !ip.Is4() {
		api.ErrorResponse(w, api.Problem{
			Detail: api.StringRef(chi.URLParam(r, "ip")),
			Status: http.StatusBadRequest,
			Title:  "invalid IPv4 address",
			Type:   api.StringRef(api.BadRequest),
		})
		return
	}
	if !s.do(w, r, func(st *netstack.Stack) { st.SendARPRequest(ip) }) {
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// TriggerGARP requests a gratuitous ARP announcement.
func (s *Server) TriggerGARP(w http.ResponseWriter, r *http.Request) {
	s.Device.TriggerGARP()
	w.WriteHeader(http.StatusAccepted)
}

// do runs fn on the polling loop. It writes an error response and returns
// false if the loop did not pick it up in time.
func (s *Server) do(w http.ResponseWriter, r *http.Request, fn func(*netstack.Stack)) bool {
	timeout := s.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()
	err := s.Device.Do(ctx, fn)
	if err == nil {
		return true
	}
	status := http.StatusInternalServerError
	typ := api.InternalError
	if errors.Is(err, context.DeadlineExceeded) {
		status, typ = http.StatusServiceUnavailable, api.Unavailable
	}
	api.ErrorResponse(w, api.Problem{
		Detail: api.StringRef(err.Error()),
		Status: status,
		Title:  "polling loop unavailable",
		Type:   api.StringRef(typ),
	})
	return false
}
