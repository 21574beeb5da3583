package http

import (
	"net/http"

	"github.com/goliatone/go-onboarding/internal/creators"
	"github.com/goliatone/go-onboarding/internal/engine"
)

type creatorCreatePayload struct {
	Email       string `json:"email"`
	Name        string `json:"name,omitempty"`
	ContentPath string `json:"content_path,omitempty"`
}

type contentPathPayload struct {
	Path      string `json:"path"`
	ChangedBy string `json:"changed_by,omitempty"`
}

type contentPathResponse struct {
	From            string   `json:"from"`
	To              string   `json:"to"`
	MilestonesAdded int      `json:"milestones_added"`
	Added           []string `json:"added,omitempty"`
}

type restartPayload struct {
	Actor string `json:"actor,omitempty"`
}

type restartResponse struct {
	ProjectID       string   `json:"project_id"`
	Sequence        int      `json:"sequence"`
	Seeded          []string `json:"seeded,omitempty"`
	NextMilestoneID string   `json:"next_milestone_id,omitempty"`
}

func (api *API) registerCreatorRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "creators")
	api.route(mux, "POST "+root, api.handleCreatorCreate)
	api.route(mux, "GET "+root+"/{id}", api.handleCreatorGet)
	api.route(mux, "GET "+root+"/{id}/dashboard", api.handleDashboard)
	api.route(mux, "GET "+root+"/{id}/notes", api.handleNotes)
	api.route(mux, "POST "+root+"/{id}/content-path", api.handleContentPath)
	api.route(mux, "POST "+root+"/{id}/restart", api.handleRestart)
}

func (api *API) handleCreatorCreate(w http.ResponseWriter, r *http.Request) {
	if api.creators == nil {
		unavailable(w)
		return
	}
	var payload creatorCreatePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	creator, err := api.creators.Create(r.Context(), creators.CreateCreatorInput{
		Email:       payload.Email,
		Name:        payload.Name,
		ContentPath: payload.ContentPath,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if api.engine != nil {
		if _, err := api.engine.MaterializeMissing(r.Context(), creator.ID); err != nil {
			api.logger.Warn("http.creators.materialize_failed", "creator_id", creator.ID.String(), "error", err)
		}
	}
	writeJSON(w, http.StatusCreated, creator)
}

func (api *API) handleCreatorGet(w http.ResponseWriter, r *http.Request) {
	if api.creators == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	creator, err := api.creators.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creator)
}

func (api *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if api.dashboards == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	dashboard, err := api.dashboards.GetDashboard(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (api *API) handleNotes(w http.ResponseWriter, r *http.Request) {
	if api.audit == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	notes, err := api.audit.ListByCreator(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (api *API) handleContentPath(w http.ResponseWriter, r *http.Request) {
	if api.engine == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	var payload contentPathPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	result, err := api.engine.ChangeContentPath(r.Context(), engine.ChangePathInput{
		CreatorID: id,
		Path:      payload.Path,
		ChangedBy: payload.ChangedBy,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contentPathResponse{
		From:            string(result.From),
		To:              string(result.To),
		MilestonesAdded: result.MilestonesAdded,
		Added:           result.Added,
	})
}

func (api *API) handleRestart(w http.ResponseWriter, r *http.Request) {
	if api.engine == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	var payload restartPayload
	if err := decodeOptionalJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	result, err := api.engine.ArchiveAndRestart(r.Context(), engine.RestartInput{CreatorID: id, Actor: payload.Actor})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, restartResponse{
		ProjectID:       result.ProjectID.String(),
		Sequence:        result.Sequence,
		Seeded:          result.Seeded,
		NextMilestoneID: result.NextMilestoneID,
	})
}
