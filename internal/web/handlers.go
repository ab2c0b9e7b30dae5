package web

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/bulkload/internal/core"
	"github.com/JonMunkholm/bulkload/internal/logging"
)

// EntityInfo is the API view of a registered entity.
type EntityInfo struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Group       string   `json:"group"`
	Table       string   `json:"table"`
	Source      string   `json:"source"`
	Order       int      `json:"order"`
	ConflictKey []string `json:"conflict_key"`
}

// HealthResponse reports liveness plus what the importer is doing.
type HealthResponse struct {
	Status string         `json:"status"`
	Run    core.RunStatus `json:"run"`
}

// RunAccepted is returned when a background run starts.
type RunAccepted struct {
	RunID string `json:"run_id"`
	Group string `json:"group,omitempty"`
}

// handleHealth reports liveness and run-limiter state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Run:    s.importer.Status(),
	})
}

// handleListEntities returns the registered entities in run order.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	if group := r.URL.Query().Get("group"); group != "" {
		defs = core.ByGroup(group)
	}

	out := make([]EntityInfo, len(defs))
	for i, def := range defs {
		out[i] = EntityInfo{
			Name:        def.Name(),
			Label:       def.Label,
			Group:       def.Group,
			Table:       def.Profile.TargetTable,
			Source:      def.Source,
			Order:       def.Order,
			ConflictKey: def.Profile.ConflictKey,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleListGroups returns group names in run order.
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Groups())
}

// handleStartRun starts an import in the background.
// An empty group runs every entity.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")

	runID, err := s.importer.Start(r.Context(), group)
	switch {
	case core.IsBusy(err):
		writeError(w, r, http.StatusConflict, err)
		return
	case errors.Is(err, core.ErrUnknownGroup):
		writeError(w, r, http.StatusNotFound, err)
		return
	case err != nil:
		writeError(w, r, http.StatusInternalServerError, err)
		return
	}

	logging.WithFields(r.Context(), "run_id", runID, "group", group).Info("import run accepted")
	writeJSON(w, http.StatusAccepted, RunAccepted{RunID: runID, Group: group})
}

// handleLatestRun returns the report of the most recent finished run.
func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	report := s.importer.Latest()
	if report == nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{
			Error:   "no import run has finished yet",
			Message: "No import run has finished yet",
			Code:    "RUN003",
		})
		return
	}
	writeJSON(w, http.StatusOK, report)
}
