// Package api provides the HTTP API for the simulation.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (game-master control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/NathanielJL/polsim-sub000/internal/demographics"
	"github.com/NathanielJL/polsim-sub000/internal/election"
	"github.com/NathanielJL/polsim-sub000/internal/engine"
	"github.com/NathanielJL/polsim-sub000/internal/events"
	"github.com/NathanielJL/polsim-sub000/internal/persistence"
	"github.com/NathanielJL/polsim-sub000/internal/politics"
	"github.com/NathanielJL/polsim-sub000/internal/tuning"
)

// Server serves the simulation state over HTTP.
type Server struct {
	Sim      *engine.Simulation
	Ticker   *engine.Ticker
	DB       *persistence.DB
	Config   tuning.Config
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	// Write endpoints share one limiter; they all end in ledger writes.
	writeLimiter := NewRateLimiter(120, time.Minute)

	mux := http.NewServeMux()

	// Public endpoints (GET, read-only — anyone can check in on the session).
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/slices", s.handleSlices)
	mux.HandleFunc("/api/v1/slice/", s.handleSliceDetail)
	mux.HandleFunc("/api/v1/reputation", s.handleReputation)
	mux.HandleFunc("/api/v1/changes", s.handleChanges)
	mux.HandleFunc("/api/v1/campaigns", s.handleCampaigns)
	mux.HandleFunc("/api/v1/endorsements", s.handleEndorsements)
	mux.HandleFunc("/api/v1/elections", s.handleElections)
	mux.HandleFunc("/api/v1/election/", s.handleElectionRoutes)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats", s.handleStats)

	// Admin endpoints (POST, require bearer token).
	mux.HandleFunc("/api/v1/bill", s.adminOnly(RateLimitMiddleware(writeLimiter, s.handleBill)))
	mux.HandleFunc("/api/v1/bill/outcome", s.adminOnly(RateLimitMiddleware(writeLimiter, s.handleBillOutcome)))
	mux.HandleFunc("/api/v1/news", s.adminOnly(RateLimitMiddleware(writeLimiter, s.handleNews)))
	mux.HandleFunc("/api/v1/campaign", s.adminOnly(RateLimitMiddleware(writeLimiter, s.handleCampaign)))
	mux.HandleFunc("/api/v1/campaign/cancel", s.adminOnly(RateLimitMiddleware(writeLimiter, s.handleCampaignCancel)))
	mux.HandleFunc("/api/v1/endorsement", s.adminOnly(RateLimitMiddleware(writeLimiter, s.handleEndorsement)))
	mux.HandleFunc("/api/v1/scandal", s.adminOnly(RateLimitMiddleware(writeLimiter, s.handleScandal)))
	mux.HandleFunc("/api/v1/turn", s.adminOnly(s.handleTurn))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/snapshot", s.adminOnly(s.handleSnapshot))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("HTTP server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Set CORS_ORIGINS env var to a comma-separated list of allowed origins.
// Localhost dev servers are always allowed.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
// GET requests pass through (for endpoints that support both GET and POST).
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no POLSIM_ADMIN_KEY set)", http.StatusForbidden)
				return
			}

			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := map[string]any{
		"name":                "polsim",
		"turn":                s.Sim.CurrentTurn(),
		"speed":               s.Ticker.Speed,
		"running":             s.Ticker.Running,
		"slices":              s.Sim.Stats.Slices,
		"population":          s.Sim.Stats.TotalPopulation,
		"eligible_population": s.Sim.Stats.EligiblePopulation,
		"tracked_scores":      s.Sim.Stats.TrackedScores,
		"active_campaigns":    s.Sim.Stats.ActiveCampaigns,
		"active_effects":      s.Sim.Stats.ActiveEffects,
		"avg_approval":        s.Sim.Stats.AvgApproval,
	}
	writeJSON(w, status)
}

func (s *Server) handleSlices(w http.ResponseWriter, r *http.Request) {
	province := r.URL.Query().Get("province")

	type sliceSummary struct {
		ID          demographics.SliceID `json:"id"`
		Class       string               `json:"class"`
		Occupation  string               `json:"occupation"`
		Gender      string               `json:"gender"`
		Province    string               `json:"province"`
		Urban       bool                 `json:"urban"`
		UrbanCenter string               `json:"urban_center,omitempty"`
		Population  int64                `json:"population"`
		CanVote     bool                 `json:"can_vote"`
	}

	var result []sliceSummary
	for _, d := range s.Sim.Catalog.All() {
		if province != "" && d.Province != province {
			continue
		}
		result = append(result, sliceSummary{
			ID:          d.ID,
			Class:       d.Class.Name(),
			Occupation:  d.Occupation.Name(),
			Gender:      d.Gender.Name(),
			Province:    d.Province,
			Urban:       d.Urban,
			UrbanCenter: d.UrbanCenter,
			Population:  d.Population,
			CanVote:     d.CanVote,
		})
	}
	writeJSON(w, result)
}

func (s *Server) handleSliceDetail(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing slice id", http.StatusBadRequest)
		return
	}

	d, ok := s.Sim.Catalog.Get(demographics.SliceID(parts[4]))
	if !ok {
		http.Error(w, "slice not found", http.StatusNotFound)
		return
	}
	writeJSON(w, d)
}

// handleReputation returns a player's scores across every slice they have
// interacted with. ?player= is required; ?slice= narrows to one pair.
func (s *Server) handleReputation(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if player == "" {
		http.Error(w, "missing player parameter", http.StatusBadRequest)
		return
	}

	if sliceID := r.URL.Query().Get("slice"); sliceID != "" {
		score := s.Sim.Ledger.GetOrCreate(player, demographics.SliceID(sliceID))
		writeJSON(w, score)
		return
	}

	sliceIDs := s.Sim.Ledger.SlicesFor(player)
	sort.Slice(sliceIDs, func(i, j int) bool { return sliceIDs[i] < sliceIDs[j] })

	type scoreSummary struct {
		SliceID     demographics.SliceID `json:"slice_id"`
		Approval    float64              `json:"approval"`
		TurnUpdated int                  `json:"turn_updated"`
	}
	result := make([]scoreSummary, 0, len(sliceIDs))
	for _, id := range sliceIDs {
		sc := s.Sim.Ledger.GetOrCreate(player, id)
		result = append(result, scoreSummary{SliceID: id, Approval: sc.Approval, TurnUpdated: sc.TurnUpdated})
	}
	writeJSON(w, result)
}

func (s *Server) handleChanges(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	player := r.URL.Query().Get("player")

	changes := s.Sim.Ledger.Changes()
	if player != "" {
		filtered := changes[:0:0]
		for _, c := range changes {
			if c.PlayerID == player {
				filtered = append(filtered, c)
			}
		}
		changes = filtered
	}

	start := 0
	if len(changes) > limit {
		start = len(changes) - limit
	}
	writeJSON(w, changes[start:])
}

func (s *Server) handleCampaigns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Campaigns())
}

func (s *Server) handleEndorsements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Endorsements())
}

func (s *Server) handleElections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Elections())
}

// handleElectionRoutes dispatches GET /api/v1/election/:id and the admin
// POSTs /api/v1/election/schedule and /api/v1/election/:id/close.
func (s *Server) handleElectionRoutes(w http.ResponseWriter, r *http.Request) {
	parts := strings.Split(r.URL.Path, "/")
	if len(parts) < 5 || parts[4] == "" {
		http.Error(w, "missing election id", http.StatusBadRequest)
		return
	}

	if parts[4] == "schedule" {
		s.adminOnly(s.handleElectionSchedule)(w, r)
		return
	}
	if len(parts) >= 6 && parts[5] == "close" {
		s.adminOnly(func(w http.ResponseWriter, r *http.Request) {
			s.handleElectionClose(w, r, parts[4])
		})(w, r)
		return
	}

	e, ok := s.Sim.Election(parts[4])
	if !ok {
		http.Error(w, "election not found", http.StatusNotFound)
		return
	}
	writeJSON(w, e)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	eventList := s.Sim.Events
	if category := r.URL.Query().Get("category"); category != "" {
		var filtered []engine.Event
		for _, e := range eventList {
			if e.Category == category {
				filtered = append(filtered, e)
			}
		}
		eventList = filtered
	}

	start := 0
	if len(eventList) > limit {
		start = len(eventList) - limit
	}
	writeJSON(w, eventList[start:])
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.Sim.Stats)
}

// billRequest is the wire form of a bill submission.
type billRequest struct {
	BillID         string                           `json:"bill_id"`
	Title          string                           `json:"title"`
	ProposerID     string                           `json:"proposer_id"`
	YesVoters      []string                         `json:"yes_voters"`
	NoVoters       []string                         `json:"no_voters"`
	AbstainVoters  []string                         `json:"abstain_voters"`
	Position       *politics.PoliticalPosition      `json:"position,omitempty"`
	ImpactMap      map[demographics.SliceID]float64 `json:"impact_map,omitempty"`
	AffectedSlices []demographics.SliceID           `json:"affected_slices,omitempty"`
}

func (b billRequest) event() events.BillEvent {
	return events.BillEvent{
		BillID:         b.BillID,
		Title:          b.Title,
		ProposerID:     b.ProposerID,
		YesVoters:      b.YesVoters,
		NoVoters:       b.NoVoters,
		AbstainVoters:  b.AbstainVoters,
		Position:       b.Position,
		ImpactMap:      b.ImpactMap,
		AffectedSlices: b.AffectedSlices,
	}
}

func (s *Server) handleBill(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req billRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	changes, err := s.Sim.SubmitBill(req.event())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"applied": len(changes), "changes": changes})
}

func (s *Server) handleBillOutcome(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		billRequest
		Passed bool `json:"passed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	changes, err := s.Sim.ResolveBill(req.event(), req.Passed)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"applied": len(changes), "changes": changes})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ArticleID string `json:"article_id"`
		Headline  string `json:"headline"`
		Impacts   []struct {
			PlayerID string               `json:"player_id"`
			SliceID  demographics.SliceID `json:"slice_id"`
			Delta    float64              `json:"delta"`
		} `json:"impacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	ev := events.NewsEvent{ArticleID: req.ArticleID, Headline: req.Headline}
	for _, im := range req.Impacts {
		ev.Impacts = append(ev.Impacts, events.NewsImpact{
			PlayerID: im.PlayerID,
			SliceID:  im.SliceID,
			Delta:    im.Delta,
		})
	}

	changes, err := s.Sim.PublishNews(ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"applied": len(changes), "changes": changes})
}

func (s *Server) handleCampaign(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		PlayerID string               `json:"player_id"`
		SliceID  demographics.SliceID `json:"slice_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	c, err := s.Sim.StartCampaign(req.PlayerID, req.SliceID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleCampaignCancel(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		CampaignID string `json:"campaign_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if err := s.Sim.CancelCampaign(req.CampaignID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]string{"status": "cancelled"})
}

func (s *Server) handleEndorsement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		EndorserID string `json:"endorser_id"`
		EndorsedID string `json:"endorsed_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	e, err := s.Sim.Endorse(req.EndorserID, req.EndorsedID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, e)
}

func (s *Server) handleScandal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ScandalID string `json:"scandal_id"`
		PlayerID  string `json:"player_id"`
		Title     string `json:"title"`
		Impacts   []struct {
			SliceID demographics.SliceID `json:"slice_id"`
			Delta   float64              `json:"delta"`
		} `json:"impacts"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	ev := events.ScandalEvent{ScandalID: req.ScandalID, PlayerID: req.PlayerID, Title: req.Title}
	for _, im := range req.Impacts {
		ev.Impacts = append(ev.Impacts, events.ScandalImpact{SliceID: im.SliceID, Delta: im.Delta})
	}

	changes, err := s.Sim.TriggerScandal(ev)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"applied": len(changes), "changes": changes})
}

// handleTurn advances the simulation one turn on demand (manual stepping
// while the ticker is paused).
func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	next := s.Sim.CurrentTurn() + 1
	if err := s.Sim.AdvanceTurn(next); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]int{"turn": next})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 1000 {
			http.Error(w, "speed must be 0-1000", http.StatusBadRequest)
			return
		}
		s.Ticker.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Ticker.Speed})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	if s.DB == nil {
		http.Error(w, "database not available", http.StatusServiceUnavailable)
		return
	}

	if err := s.DB.SaveSessionState(s.Sim); err != nil {
		slog.Error("snapshot failed", "error", err)
		http.Error(w, "snapshot failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]string{"status": "saved"})
}

func (s *Server) handleElectionSchedule(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var e election.Election
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if e.Status == "" {
		e.Status = election.StatusAnnounced
	}

	if err := s.Sim.ScheduleElection(&e); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, &e)
}

func (s *Server) handleElectionClose(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		BaseTurnout float64 `json:"base_turnout"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.BaseTurnout == 0 {
		req.BaseTurnout = s.Config.DefaultBaseTurnout
	}

	result, err := s.Sim.CloseVoting(id, req.BaseTurnout)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, result)
}

// writeDomainError maps the engine's sentinel errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	status := http.StatusBadRequest
	switch {
	case isNotFound(err):
		status = http.StatusNotFound
	case isDuplicate(err):
		status = http.StatusConflict
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
