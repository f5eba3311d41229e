/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Each event session runs on its own hub:
// - The first browser to connect becomes the host, and is the only one allowed to change anything
// - Everyone else who joins (by link or QR code) watches the draw and the teams live
// - The host manages the participant list, spins the prize draw, and builds teams
// - Sessions live only in memory, and are reaped once idle for --session-timeout

package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	mrand "math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Seednode/eventbox/internal/draw"
	"github.com/Seednode/eventbox/internal/roster"
	"github.com/Seednode/eventbox/internal/teams"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	clientCookieName = "eventbox_id"
	writeWait        = 10 * time.Second
)

// ClientMessage is any command sent by a browser.
type ClientMessage struct {
	Type      string `json:"type"`                 // command name
	Text      string `json:"text,omitempty"`       // "add": raw names
	ID        string `json:"id,omitempty"`         // "remove": participant id
	Confirm   bool   `json:"confirm,omitempty"`    // "clear": user confirmed
	Enabled   bool   `json:"enabled,omitempty"`    // "allow_duplicates"
	GroupSize int    `json:"group_size,omitempty"` // "generate"
}

// SessionInfoMessage is sent immediately on connect so the client knows its role.
type SessionInfoMessage struct {
	Type    string `json:"type"` // "session_info"
	EventID string `json:"event_id"`
	IsHost  bool   `json:"is_host"`
}

// StateMessage carries the whole session state and is broadcast after every change.
type StateMessage struct {
	Type            string               `json:"type"` // "state"
	Participants    []roster.Participant `json:"participants"`
	Duplicates      []string             `json:"duplicates"`
	PoolSize        int                  `json:"pool_size"`
	Winners         []roster.Participant `json:"winners"`
	Spinning        bool                 `json:"spinning"`
	Current         string               `json:"current,omitempty"`
	AllowDuplicates bool                 `json:"allow_duplicates"`
	Teams           []teams.Team         `json:"teams"`
	GroupSize       int                  `json:"group_size"`
	Enhancing       bool                 `json:"enhancing"`
}

// SpinTickMessage shows one name during a spin.
type SpinTickMessage struct {
	Type string `json:"type"` // "spin_tick"
	Name string `json:"name"`
}

// WinnerMessage announces a committed winner.
type WinnerMessage struct {
	Type   string             `json:"type"` // "winner"
	Winner roster.Participant `json:"winner"`
}

type Client struct {
	conn     *websocket.Conn
	send     chan any
	clientID string
}

type command struct {
	client *Client
	msg    ClientMessage
}

type Hub struct {
	id      string
	clients map[*Client]bool

	register chan *Client
	unreg    chan *Client
	commands chan command
	tasks    chan func()
	quit     chan struct{}
	closer   sync.Once
	closed   bool

	mu sync.RWMutex

	lastActive time.Time
	hostID     string

	roster    *roster.Roster
	engine    *draw.Engine
	teams     []teams.Team
	groupSize int
	batch     uint64
	enhancing bool

	gen    teams.IdentityGenerator
	rng    *mrand.Rand
	ctx    context.Context
	cancel context.CancelFunc
}

func newHub(ctx context.Context, cfg *Config, eventID string, gen teams.IdentityGenerator) *Hub {
	now := time.Now()
	ctx, cancel := context.WithCancel(ctx)

	h := &Hub{
		id:         eventID,
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unreg:      make(chan *Client),
		commands:   make(chan command),
		tasks:      make(chan func(), 16),
		quit:       make(chan struct{}),
		lastActive: now,
		roster:     roster.New(),
		groupSize:  teams.DefaultGroupSize,
		gen:        gen,
		rng:        mrand.New(mrand.NewPCG(mrand.Uint64(), mrand.Uint64())),
		ctx:        ctx,
		cancel:     cancel,
	}

	h.engine = draw.New(
		draw.TickerScheduler{Dispatch: h.post},
		draw.WithTiming(cfg.spinTick, cfg.spinDuration, cfg.spinJitter),
		draw.WithRand(h.rng),
		draw.OnTick(h.broadcastTickLocked),
		draw.OnCommit(func(winner roster.Participant) {
			logf(cfg, "EVENTS: %q won the draw in %s", winner.Name, h.id)
			h.broadcastLocked(WinnerMessage{Type: "winner", Winner: winner})
			h.broadcastStateLocked()
		}),
	)

	return h
}

// post queues fn to run on the hub loop with the lock held.
func (h *Hub) post(fn func()) {
	select {
	case h.tasks <- fn:
	case <-h.quit:
	}
}

func (h *Hub) run(cfg *Config) {
	for {
		select {
		case <-h.quit:
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.closed {
				close(c.send)
				_ = c.conn.Close()
				h.mu.Unlock()
				continue
			}

			h.lastActive = time.Now()

			// First connection becomes host
			if h.hostID == "" {
				h.hostID = c.clientID
			}

			h.clients[c] = true

			c.send <- SessionInfoMessage{
				Type:    "session_info",
				EventID: h.id,
				IsHost:  c.clientID == h.hostID,
			}
			c.send <- h.stateLocked()

			h.mu.Unlock()

		case c := <-h.unreg:
			h.mu.Lock()
			h.lastActive = time.Now()

			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			h.mu.Unlock()

		case cmd := <-h.commands:
			h.handleCommand(cfg, cmd)

		case fn := <-h.tasks:
			h.mu.Lock()
			fn()
			h.mu.Unlock()
		}
	}
}

func (h *Hub) isHostLocked(c *Client) bool {
	return c != nil && c.clientID != "" && c.clientID == h.hostID
}

// handleCommand applies a host command. Anything else is ignored.
func (h *Hub) handleCommand(cfg *Config, cmd command) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.lastActive = time.Now()

	if !h.isHostLocked(cmd.client) {
		return
	}

	msg := cmd.msg

	switch msg.Type {
	case "add":
		added := h.roster.Add(msg.Text)
		if len(added) == 0 {
			return
		}
		logf(cfg, "EVENTS: Added %d participants to %s", len(added), h.id)
		h.participantsChangedLocked()

	case "sample":
		h.roster.AddNames(roster.SampleNames)
		h.participantsChangedLocked()

	case "remove":
		if !h.roster.Remove(msg.ID) {
			return
		}
		h.participantsChangedLocked()

	case "clear":
		if !msg.Confirm || h.roster.Len() == 0 {
			return
		}
		h.roster.Clear()
		logf(cfg, "EVENTS: Cleared participants of %s", h.id)
		h.participantsChangedLocked()

	case "dedup":
		if h.roster.Dedup() == 0 {
			return
		}
		h.participantsChangedLocked()

	case "spin":
		if !h.engine.StartSpin() {
			return
		}
		h.broadcastStateLocked()

	case "reset":
		h.engine.Reset(h.roster.Participants())
		h.broadcastStateLocked()

	case "allow_duplicates":
		h.engine.SetAllowDuplicates(msg.Enabled)
		h.broadcastStateLocked()

	case "generate":
		if msg.GroupSize > 0 {
			h.groupSize = max(msg.GroupSize, teams.MinGroupSize)
		}
		h.generateTeamsLocked()
		logf(cfg, "EVENTS: Generated %d teams in %s", len(h.teams), h.id)
		h.broadcastStateLocked()

	case "enhance":
		h.enhanceTeamsLocked(cfg)

	default:
		// ignore unknown types
	}
}

func (h *Hub) participantsChangedLocked() {
	h.engine.Sync(h.roster.Participants())
	h.broadcastStateLocked()
}

// generateTeamsLocked replaces any previous teams, including their enhancement.
func (h *Hub) generateTeamsLocked() {
	h.batch++
	h.enhancing = false
	h.teams = teams.Generate(h.roster.Participants(), h.groupSize, h.rng)
}

// enhanceTeamsLocked asks the generator for team identities off the hub loop,
// then applies them only if the teams were not regenerated in the meantime.
func (h *Hub) enhanceTeamsLocked(cfg *Config) {
	if len(h.teams) == 0 || h.enhancing {
		return
	}

	h.enhancing = true
	batch := h.batch
	snapshot := append([]teams.Team(nil), h.teams...)

	h.broadcastStateLocked()

	go func() {
		enhanced := teams.Enhance(h.ctx, snapshot, h.gen)

		h.post(func() {
			if h.batch != batch {
				return
			}

			h.teams = enhanced
			h.enhancing = false
			logf(cfg, "EVENTS: Named %d teams in %s", len(enhanced), h.id)
			h.broadcastStateLocked()
		})
	}()
}

func (h *Hub) stateLocked() StateMessage {
	return StateMessage{
		Type:            "state",
		Participants:    h.roster.Participants(),
		Duplicates:      h.roster.DuplicateNames(),
		PoolSize:        len(h.engine.Pool()),
		Winners:         h.engine.Winners(),
		Spinning:        h.engine.Spinning(),
		Current:         h.engine.Current(),
		AllowDuplicates: h.engine.AllowDuplicates(),
		Teams:           append([]teams.Team{}, h.teams...),
		GroupSize:       h.groupSize,
		Enhancing:       h.enhancing,
	}
}

// exportTeams returns a copy of the current teams for download.
func (h *Hub) exportTeams() []teams.Team {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return append([]teams.Team(nil), h.teams...)
}

func (h *Hub) broadcastLocked(msg any) {
	for client := range h.clients {
		select {
		case client.send <- msg:
		default:
			delete(h.clients, client)
			close(client.send)
		}
	}
}

func (h *Hub) broadcastStateLocked() {
	h.broadcastLocked(h.stateLocked())
}

func (h *Hub) broadcastTickLocked(name string) {
	h.broadcastLocked(SpinTickMessage{Type: "spin_tick", Name: name})
}

// closeAll disconnects all clients of this hub and stops its loop (used by reaper).
func (h *Hub) closeAll() {
	h.closer.Do(func() {
		h.mu.Lock()
		defer h.mu.Unlock()

		h.closed = true
		h.engine.Cancel()
		h.cancel()
		close(h.quit)

		for c := range h.clients {
			close(c.send)
			_ = c.conn.Close()
			delete(h.clients, c)
		}
	})
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func getOrSetClientID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(clientCookieName); err == nil && c.Value != "" {
		return c.Value
	}

	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		slog.Error("generating client id", "error", err)
		return ""
	}
	id := hex.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     clientCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return id
}

// EventManager holds a set of hubs keyed by event ID, so each $path/$eventid
// is its own isolated session.
type EventManager struct {
	mu          sync.Mutex
	hubs        map[string]*Hub
	idleTimeout time.Duration
	gen         teams.IdentityGenerator
	ctx         context.Context
}

func newEventManager(ctx context.Context, idleTimeout time.Duration, gen teams.IdentityGenerator) *EventManager {
	em := &EventManager{
		hubs:        make(map[string]*Hub),
		idleTimeout: idleTimeout,
		gen:         gen,
		ctx:         ctx,
	}
	if idleTimeout > 0 {
		go em.reaperLoop()
	}
	return em
}

func (em *EventManager) getHub(cfg *Config, eventID string) *Hub {
	em.mu.Lock()
	defer em.mu.Unlock()

	if hub, ok := em.hubs[eventID]; ok {
		return hub
	}

	hub := newHub(em.ctx, cfg, eventID, em.gen)
	em.hubs[eventID] = hub
	go hub.run(cfg)
	return hub
}

// lookup returns the hub for an existing event, or nil.
func (em *EventManager) lookup(eventID string) *Hub {
	em.mu.Lock()
	defer em.mu.Unlock()

	return em.hubs[eventID]
}

// newEventID generates a crypto-random event ID and ensures it doesn't
// collide with existing events.
func (em *EventManager) newEventID() string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for {
		buf := make([]byte, 8)
		if _, err := rand.Read(buf); err != nil {
			panic("crypto/rand failure: " + err.Error())
		}
		out := make([]byte, 8)
		for i := range out {
			out[i] = letters[int(buf[i])%len(letters)]
		}
		id := string(out)

		em.mu.Lock()
		_, exists := em.hubs[id]
		em.mu.Unlock()

		if !exists {
			return id
		}
	}
}

// reap removes hubs that have been idle since before cutoff.
func (em *EventManager) reap(cutoff time.Time) int {
	em.mu.Lock()
	defer em.mu.Unlock()

	reaped := 0
	for id, hub := range em.hubs {
		hub.mu.RLock()
		last := hub.lastActive
		hub.mu.RUnlock()

		if last.Before(cutoff) {
			delete(em.hubs, id)
			go hub.closeAll()
			reaped++
		}
	}

	return reaped
}

func (em *EventManager) reaperLoop() {
	ticker := time.NewTicker(em.idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-em.ctx.Done():
			return
		case <-ticker.C:
			if n := em.reap(time.Now().Add(-em.idleTimeout)); n > 0 {
				slog.Debug("reaped idle events", "count", n)
			}
		}
	}
}

// WebSocket handler that picks the hub based on :eventid
func serveWSForManager(cfg *Config, em *EventManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		eventID := ps.ByName("eventid")
		if eventID == "" {
			http.Error(w, "missing event id", http.StatusBadRequest)
			return
		}

		clientID := getOrSetClientID(w, r)
		if clientID == "" {
			http.Error(w, "unable to assign client id", http.StatusInternalServerError)
			return
		}

		hub := em.getHub(cfg, eventID)

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Debug("websocket upgrade failed", "error", err)
			return
		}

		client := &Client{
			conn:     conn,
			send:     make(chan any, 64),
			clientID: clientID,
		}

		select {
		case hub.register <- client:
		case <-hub.quit:
			_ = conn.Close()
			return
		}

		logf(cfg, "EVENTS: Client connected to %s from %s", eventID, realIP(r))

		go client.writePump()
		client.readPump(hub)
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unreg <- c:
		case <-h.quit:
		}
		_ = c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		select {
		case h.commands <- command{client: c, msg: msg}:
		case <-h.quit:
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteJSON(msg); err != nil {
			return
		}
	}
}

// QR handler: generates a PNG QR code pointing viewers at the event page.
func qrHandler(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	eventID := ps.ByName("eventid")
	if eventID == "" {
		http.Error(w, "missing event id", http.StatusBadRequest)
		return
	}

	// Derive scheme (respecting TLS and X-Forwarded-Proto if present).
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	// We are at /.../:eventid/qr; strip trailing "/qr" to get the event URL.
	path := strings.TrimSuffix(r.URL.Path, "/qr")

	url := scheme + "://" + r.Host + path

	const qrSize = 320 // mobile-friendly size
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}

// redirectNewEvent handles GET /path by generating a new random event ID
// and redirecting to /path/:eventid.
func redirectNewEvent(cfg *Config, path string, em *EventManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		eventID := em.newEventID()
		logf(cfg, "EVENTS: Created event %s/%s", path, eventID)
		http.Redirect(w, r, cfg.prefix+path+"/"+eventID, http.StatusTemporaryRedirect)
	}
}

// registerEvents sets up routes so that:
//   - $path                     → redirects to a new random event (8-char ID)
//   - $path/:eventid            → HTML client
//   - $path/:eventid/ws         → WebSocket for that event
//   - $path/:eventid/qr         → PNG QR code for that event URL
//   - $path/:eventid/upload     → name list upload (host only)
//   - $path/:eventid/export.csv → current teams as CSV
func registerEvents(ctx context.Context, cfg *Config, path string, mux *httprouter.Router, gen teams.IdentityGenerator, errs chan<- error) *EventManager {
	em := newEventManager(ctx, cfg.sessionTimeout, gen)

	mux.GET(cfg.prefix+path, redirectNewEvent(cfg, path, em))

	mux.GET(cfg.prefix+path+"/:eventid", serveEventPage(cfg, errs))

	mux.GET(cfg.prefix+path+"/:eventid/ws", serveWSForManager(cfg, em))

	mux.GET(cfg.prefix+path+"/:eventid/qr", qrHandler)

	mux.POST(cfg.prefix+path+"/:eventid/upload", serveUpload(cfg, em))

	mux.GET(cfg.prefix+path+"/:eventid/export.csv", serveExport(cfg, em, errs))

	return em
}
