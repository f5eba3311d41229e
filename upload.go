/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Seednode/eventbox/internal/identity"
	"github.com/Seednode/eventbox/internal/teams"
	"github.com/gabriel-vasile/mimetype"
	"github.com/julienschmidt/httprouter"
)

var errNotText = errors.New("uploaded file is not plain text")

func newIdentityGenerator(ctx context.Context, cfg *Config) (teams.IdentityGenerator, error) {
	gen, err := identity.New(ctx, cfg.geminiAPIKey, cfg.geminiModel, cfg.enhanceTimeout)
	if err != nil {
		return nil, err
	}

	if _, offline := gen.(identity.Offline); offline {
		logf(cfg, "START: No Gemini API key configured, team names will use placeholders")
	}

	return gen, nil
}

// isText reports whether data sniffs as text/plain or one of its children
// (text/csv, text/tab-separated-values, ...).
func isText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}

	return false
}

// readNameList reads an uploaded name list of at most limit bytes.
func readNameList(r io.Reader, limit int64) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return "", err
	}
	if int64(len(data)) > limit {
		return "", fmt.Errorf("name list exceeds %s", humanReadableSize(limit))
	}
	if len(data) > 0 && !isText(data) {
		return "", errNotText
	}

	return string(data), nil
}

func (h *Hub) isHost(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return clientID != "" && clientID == h.hostID
}

// addNames queues raw names to be added on the hub loop.
func (h *Hub) addNames(cfg *Config, raw string) {
	h.post(func() {
		h.lastActive = time.Now()

		added := h.roster.Add(raw)
		if len(added) == 0 {
			return
		}

		logf(cfg, "EVENTS: Uploaded %d participants to %s", len(added), h.id)
		h.participantsChangedLocked()
	})
}

func serveUpload(cfg *Config, em *EventManager) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		startTime := time.Now()

		securityHeaders(cfg, w)

		hub := em.lookup(ps.ByName("eventid"))
		if hub == nil {
			http.NotFound(w, r)
			return
		}

		c, err := r.Cookie(clientCookieName)
		if err != nil || !hub.isHost(c.Value) {
			http.Error(w, "only the host can add participants", http.StatusForbidden)
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, cfg.maxUpload+(64<<10))

		file, header, err := r.FormFile("file")
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			http.Error(w, fmt.Sprintf("name list exceeds %s", humanReadableSize(cfg.maxUpload)), http.StatusRequestEntityTooLarge)
			return
		case err != nil:
			http.Error(w, "missing file", http.StatusBadRequest)
			return
		}
		defer file.Close()

		raw, err := readNameList(file, cfg.maxUpload)
		switch {
		case errors.Is(err, errNotText):
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}

		hub.addNames(cfg, raw)

		w.WriteHeader(http.StatusNoContent)

		logf(cfg, "SERVE: Accepted upload %q (%s) from %s in %s",
			header.Filename,
			humanReadableSize(int64(len(raw))),
			realIP(r),
			elapsed(startTime),
		)
	}
}

func serveExport(cfg *Config, em *EventManager, errs chan<- error) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		hub := em.lookup(ps.ByName("eventid"))
		if hub == nil {
			http.NotFound(w, r)
			return
		}

		ts := hub.exportTeams()
		if len(ts) == 0 {
			http.Error(w, "no teams have been generated", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+teams.ExportFilename(time.Now())+`"`)
		w.Header().Set("Cache-Control", "no-store")
		securityHeaders(cfg, w)

		if err := teams.WriteCSV(w, ts); err != nil {
			errs <- err

			return
		}

		logf(cfg, "SERVE: Exported %d teams from %s to %s",
			len(ts),
			ps.ByName("eventid"),
			realIP(r),
		)
	}
}
