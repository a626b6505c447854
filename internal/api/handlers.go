package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MJE43/sicbo-sim/internal/bankroll"
	"github.com/MJE43/sicbo-sim/internal/games"
	"github.com/MJE43/sicbo-sim/internal/sim"
	"github.com/MJE43/sicbo-sim/internal/stats"
	"github.com/MJE43/sicbo-sim/internal/store"
)

// handleSimulate runs a bankroll cohort and stores its summary when
// persistence is enabled.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	s.simulate(w, r, req)
}

// handleLegacySimulate accepts the form page's field names and runs the
// same cohort as handleSimulate.
func (s *Server) handleLegacySimulate(w http.ResponseWriter, r *http.Request) {
	var legacy LegacySimulateRequest
	if !s.decodeJSON(w, r, &legacy) {
		return
	}
	s.simulate(w, r, legacy.SimulateRequest())
}

func (s *Server) simulate(w http.ResponseWriter, r *http.Request, req SimulateRequest) {
	params, err := BuildCohortParams(&req, s.cfg)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	if params.Seed == 0 {
		params.Seed = s.seed()
	}
	params.Catalog = s.catalog

	start := time.Now()
	cohort, err := bankroll.RunCohort(r.Context(), params)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	resp := SimulateResponse{Cohort: cohort, EngineVersion: EngineVersion}
	if s.db != nil {
		run := store.RunFromCohort(cohort, EngineVersion)
		if err := s.db.SaveRun(run); err != nil {
			s.logger.Error("failed to save run", "error", err, "request_id", middleware.GetReqID(r.Context()))
		} else {
			resp.RunID = run.ID
		}
	}
	if req.OmitLedgers {
		for _, session := range cohort.Results {
			session.Ledger = nil
		}
	}

	s.logger.Info("cohort simulated",
		"request_id", middleware.GetReqID(r.Context()),
		"sessions", params.Sessions,
		"games", params.Games,
		"wager_type", params.Wager,
		"seed", params.Seed,
		"overall_rtp", cohort.OverallRTP,
		"bankrupt", cohort.BankruptSessions,
		"run_id", resp.RunID,
		"duration", time.Since(start),
	)
	s.writeJSON(w, http.StatusOK, resp)
}

// handleTrials rolls a batch of trials and returns the statistics snapshot
// with expected values per wager.
func (s *Server) handleTrials(w http.ResponseWriter, r *http.Request) {
	var req TrialsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	count, err := TrialCount(&req, s.cfg)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	seed := s.cfg.Simulation.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}
	if seed == 0 {
		seed = s.seed()
	}

	history, err := sim.RunBatch(r.Context(), sim.BatchParams{
		Count:   count,
		Seed:    seed,
		Workers: s.cfg.Simulation.Workers,
	})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	trials := sim.New(nil)
	trials.Extend(history)
	snap, err := stats.Aggregate(trials.History())
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	ev, err := stats.ExpectedValues(snap, s.catalog, stats.EVOptions{
		Representative: req.Representative,
		Weights:        req.Weights,
	})
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, TrialsResponse{
		Trials:        snap.Trials,
		Seed:          seed,
		Snapshot:      snap,
		EV:            ev,
		EngineVersion: EngineVersion,
	})
}

// handleVerify replays the dice for one provably-fair nonce
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := ValidateVerifyRequest(&req); err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	game, ok := s.games.Get("sicbo")
	if !ok {
		s.errorHandler.HandleError(w, r, fmt.Errorf("sicbo game is not registered"))
		return
	}
	result, err := game.Evaluate(req.Seeds, req.Nonce, nil)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	outcome, _ := result.Details.(games.Outcome)

	s.logger.Info("nonce verified",
		"request_id", middleware.GetReqID(r.Context()),
		"server_hash", hashSeed(req.Seeds.Server),
		"client_hash", hashSeed(req.Seeds.Client),
		"nonce", req.Nonce,
		"total", outcome.Total,
	)

	s.writeJSON(w, http.StatusOK, VerifyResponse{
		Nonce:         req.Nonce,
		Outcome:       outcome,
		GameResult:    result,
		EngineVersion: EngineVersion,
		Echo:          req,
	})
}

// handleListWagers returns the wager catalogue
func (s *Server) handleListWagers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, WagersResponse{
		Wagers:        s.catalog.List(),
		SessionWagers: bankroll.WagerTypes,
		EngineVersion: EngineVersion,
	})
}

// handleListRuns pages through stored cohort summaries
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleUnavailable(w, r, "run persistence")
		return
	}

	q := store.RunsQuery{WagerType: r.URL.Query().Get("wager_type")}
	for field, dst := range map[string]*int{"page": &q.Page, "per_page": &q.PerPage} {
		raw := r.URL.Query().Get(field)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.errorHandler.HandleValidationError(w, r, field, field+" must be a non-negative integer")
			return
		}
		*dst = n
	}
	if q.PerPage > 200 {
		q.PerPage = 200
	}

	runs, err := s.db.ListRuns(q)
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, runs)
}

// handleGetRun returns one stored run with its session summaries
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorHandler.HandleUnavailable(w, r, "run persistence")
		return
	}

	run, err := s.db.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, GetVersionInfo())
}
