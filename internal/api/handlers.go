package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/abhisek/vitality/internal/ledger"
	"github.com/abhisek/vitality/internal/progression"
	"github.com/abhisek/vitality/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// POST /api/users/{userID}/onboard
func (s *Server) handleOnboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.Onboard(r.Context(), chi.URLParam(r, "userID"), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// GET /api/users/{userID}/state
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.engine.GetState(r.Context(), chi.URLParam(r, "userID"), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// POST /api/users/{userID}/activities
func (s *Server) handleRecordActivity(w http.ResponseWriter, r *http.Request) {
	var req progression.ActivityRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	receipt, err := s.engine.RecordActivity(r.Context(), chi.URLParam(r, "userID"), req, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

// POST /api/users/{userID}/activities/preview
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req progression.ActivityRequest
	if err := decodeBody(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	p, err := s.engine.Preview(r.Context(), chi.URLParam(r, "userID"), req, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// POST /api/users/{userID}/ticks/{kind}
func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	kind, err := progression.ParseTickKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.RunScheduledTick(r.Context(), chi.URLParam(r, "userID"), kind, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// POST /api/users/{userID}/catch-up
func (s *Server) handleCatchUp(w http.ResponseWriter, r *http.Request) {
	results, err := s.engine.CatchUp(r.Context(), chi.URLParam(r, "userID"), s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if results == nil {
		results = []*progression.TickResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"applied": results})
}

// PUT /api/users/{userID}/xp
func (s *Server) handleOverride(w http.ResponseWriter, r *http.Request) {
	var o ledger.Override
	if err := decodeBody(w, r, &o); err != nil {
		badRequest(w, err.Error())
		return
	}
	if o.Empty() {
		badRequest(w, "override must set overallXP or categoryXP")
		return
	}
	snap, err := s.engine.AdminOverride(r.Context(), chi.URLParam(r, "userID"), o, s.now())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// GET /api/users/{userID}/events?kind=&after=&limit=
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := store.QueryOpts{Kind: q.Get("kind")}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}
	if v := q.Get("after"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			badRequest(w, "after must be an integer")
			return
		}
		opts.After = n
	}

	userID := chi.URLParam(r, "userID")
	// Unknown users get a 404 rather than an empty list.
	if _, err := s.engine.GetState(r.Context(), userID, s.now()); err != nil {
		s.writeError(w, r, err)
		return
	}
	events, err := s.engine.History(r.Context(), userID, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if events == nil {
		events = []store.Event{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
