package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/auspex/internal/common"
	"github.com/ternarybob/auspex/internal/services/analysis"
	"github.com/ternarybob/auspex/internal/services/monitor"
)

// writeJSON serializes v with the given status code
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError returns a JSON error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleRoot serves a short service summary. The root pattern catches every
// unregistered path, so anything other than "/" is a 404.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service":     "auspex",
		"description": "BSE corporate announcement analysis and alerting",
		"version":     common.GetVersion(),
		"endpoints": []string{
			"GET /health",
			"GET /status",
			"POST /api/check",
			"GET /api/records",
			"POST /api/analyze",
			"GET /api/version",
			"GET /ws",
		},
	})
}

// handleHealth reports liveness with the core cycle counters
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := s.app.Monitor.Status()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "ok",
		"running":         status.Running,
		"last_check":      formatTime(status.LastCheck),
		"total_checks":    status.TotalChecks,
		"total_processed": status.TotalProcessed,
		"total_errors":    status.TotalErrors,
	})
}

type statusResponse struct {
	Service       string         `json:"service"`
	Version       string         `json:"version"`
	Environment   string         `json:"environment"`
	Uptime        string         `json:"uptime,omitempty"`
	CheckInterval string         `json:"check_interval"`
	Monitor       monitor.Status `json:"monitor"`
	WebSource     bool           `json:"web_source"`
	InboxSource   bool           `json:"inbox_source"`
	EmailAlerts   bool           `json:"email_alerts"`
	SeenCount     int            `json:"seen_count"`
	RecentRecords int            `json:"recent_records"`
	FeedClients   int            `json:"feed_clients"`
}

// handleStatus reports the detailed operational state
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := s.app.Monitor.Status()

	resp := statusResponse{
		Service:       "auspex",
		Version:       common.GetVersion(),
		Environment:   s.app.Config.Environment,
		CheckInterval: s.app.Config.Monitor.CheckInterval.String(),
		Monitor:       status,
		WebSource:     s.app.Config.Monitor.EnableWeb,
		InboxSource:   s.app.Config.Monitor.EnableInbox,
		EmailAlerts:   s.app.Notifier != nil && s.app.Notifier.Enabled(),
		RecentRecords: len(s.app.Monitor.RecentRecords()),
	}

	if !status.StartedAt.IsZero() {
		resp.Uptime = time.Since(status.StartedAt).Round(time.Second).String()
	}

	if s.app.SeenStore != nil {
		count, err := s.app.SeenStore.Count(r.Context())
		if err != nil {
			s.app.Logger.Warn().Err(err).Msg("Failed to count seen records")
		} else {
			resp.SeenCount = count
		}
	}

	if s.app.Feed != nil {
		resp.FeedClients = s.app.Feed.ClientCount()
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleCheck triggers a monitor cycle synchronously. POST is the intended
// method, GET is tolerated for curl convenience.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost && r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// The cycle can outlast the write timeout on a slow exchange, bound it
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := s.app.Monitor.CheckNow(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := s.app.Monitor.Status()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":          "completed",
		"total_checks":    status.TotalChecks,
		"total_processed": status.TotalProcessed,
		"total_alerts":    status.TotalAlerts,
	})
}

// handleRecords returns the retained analysis records, newest first
func (s *Server) handleRecords(w http.ResponseWriter, r *http.Request) {
	records := s.app.Monitor.RecentRecords()
	if records == nil {
		records = []*analysis.AnalysisRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"records": records,
		"count":   len(records),
	})
}

type analyzeRequest struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Company string `json:"company,omitempty"`
	Filing  string `json:"filing,omitempty"` // Optional raw XBRL/XML payload
}

// handleAnalyze runs an ad-hoc announcement through the engine. Nothing is
// persisted and no alert goes out - this is a pure scoring passthrough.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	if strings.TrimSpace(req.Title) == "" && strings.TrimSpace(req.Body) == "" {
		writeError(w, http.StatusBadRequest, "title or body is required")
		return
	}

	input := analysis.Input{
		Title:   req.Title,
		Body:    req.Body,
		Company: req.Company,
	}
	if req.Filing != "" {
		input.Filing = []byte(req.Filing)
	}

	record := s.app.Engine.Analyze(input)
	if req.Company != "" {
		record.Company = req.Company
	}

	writeJSON(w, http.StatusOK, record)
}

// handleVersion returns version and build information
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// handleAPINotFound returns a JSON 404 for unmatched API routes
func (s *Server) handleAPINotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "unknown API route: "+r.URL.Path)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
