package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/camsettings-bot/internal/normalize"
)

// handleHealth handles liveness probes.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "camsettings-bot",
	})
}

// handleReady reports whether the backing stores are reachable. The cache is
// optional infrastructure, so its state is reported but never fails the
// probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{}
	ready := true

	if err := s.db.Ping(r.Context()); err != nil {
		checks["postgres"] = err.Error()
		ready = false
	} else {
		checks["postgres"] = "ok"
	}

	if s.cache != nil {
		if err := s.cache.Ping(r.Context()); err != nil {
			checks["redis"] = err.Error()
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, map[string]interface{}{
		"ready":  ready,
		"checks": checks,
	})
}

// handlePlayers serves GET /api/v1/players?q=<fragments> with the same
// matching semantics as a player lookup command.
func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	fragments, ok := queryFragments(w, r)
	if !ok {
		return
	}

	records, err := s.resolver.ResolvePro(r.Context(), fragments)
	if err != nil {
		s.logger.WithError(err).Error("Player query failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "lookup failed", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"players": records,
	})
}

// handleTeams serves GET /api/v1/teams?q=<fragments>.
func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	fragments, ok := queryFragments(w, r)
	if !ok {
		return
	}

	records, err := s.resolver.ResolveTeams(r.Context(), fragments)
	if err != nil {
		s.logger.WithError(err).Error("Team query failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "lookup failed", nil)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"players": records,
	})
}

// handleStats serves record counts and the inbox worker's health.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	proCount, err := s.stats.CountPro(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Stats query failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "stats unavailable", nil)
		return
	}
	redditCount, err := s.stats.CountReddit(r.Context())
	if err != nil {
		s.logger.WithError(err).Error("Stats query failed")
		respondError(w, http.StatusInternalServerError, ErrCodeInternalError, "stats unavailable", nil)
		return
	}

	body := map[string]interface{}{
		"proPlayers":  proCount,
		"redditUsers": redditCount,
	}
	if s.worker != nil {
		running, lastPoll, processed := s.worker.Status()
		body["worker"] = map[string]interface{}{
			"running":   running,
			"lastPoll":  lastPoll.Format(time.RFC3339),
			"processed": processed,
		}
	}

	respondJSON(w, http.StatusOK, body)
}

// queryFragments extracts and normalizes the q parameter. Fragments that
// normalize to nothing are dropped; a request with no usable fragment is a
// client error.
func queryFragments(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "query parameter q is required", nil)
		return nil, false
	}

	var fragments []string
	for _, part := range strings.Fields(q) {
		if key := normalize.Key(part); key != "" {
			fragments = append(fragments, key)
		}
	}
	if len(fragments) == 0 {
		respondError(w, http.StatusBadRequest, ErrCodeInvalidInput, "query parameter q has no usable characters", nil)
		return nil, false
	}
	return fragments, true
}
