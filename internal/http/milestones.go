package http

import (
	"net/http"

	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/engine"
)

type submitPayload struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

type submitResponse struct {
	Status          domain.Status `json:"status"`
	NextMilestoneID string        `json:"next_milestone_id,omitempty"`
}

type completePayload struct {
	AdminEmail string         `json:"admin_email"`
	Note       string         `json:"note,omitempty"`
	Payload    map[string]any `json:"payload,omitempty"`
}

type completeResponse struct {
	NextMilestoneID string `json:"next_milestone_id,omitempty"`
	Unlocked        bool   `json:"unlocked"`
	OutOfOrder      bool   `json:"out_of_order"`
}

type revisionPayload struct {
	Note        string `json:"note,omitempty"`
	RequestedBy string `json:"requested_by"`
}

type adminActionPayload struct {
	Actor  string `json:"actor"`
	Reason string `json:"reason,omitempty"`
}

// optionalPayload carries the bonus override; a null optional clears it.
type optionalPayload struct {
	Optional *bool  `json:"optional"`
	Actor    string `json:"actor"`
}

func (api *API) registerMilestoneRoutes(mux *http.ServeMux, base string) {
	root := joinPath(base, "creators/{id}/milestones/{milestone}")
	api.route(mux, "POST "+root+"/submit", api.handleSubmit)
	api.route(mux, "POST "+root+"/complete", api.handleComplete)
	api.route(mux, "POST "+root+"/revision", api.handleRevision)
	api.route(mux, "POST "+root+"/pause", api.handlePause)
	api.route(mux, "POST "+root+"/resume", api.handleResume)
	api.route(mux, "POST "+root+"/relock", api.handleRelock)
	api.route(mux, "POST "+root+"/optional", api.handleOptional)
}

func (api *API) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if api.engine == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	var payload submitPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	kind, err := domain.ParseSubmissionKind(payload.Kind)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	result, err := api.engine.Submit(r.Context(), engine.SubmitInput{
		CreatorID:   id,
		MilestoneID: r.PathValue("milestone"),
		Kind:        kind,
		Payload:     payload.Payload,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, submitResponse{Status: result.Status, NextMilestoneID: result.NextMilestoneID})
}

func (api *API) handleComplete(w http.ResponseWriter, r *http.Request) {
	if api.engine == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	var payload completePayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	result, err := api.engine.AdminComplete(r.Context(), engine.AdminCompleteInput{
		CreatorID:   id,
		MilestoneID: r.PathValue("milestone"),
		AdminEmail:  payload.AdminEmail,
		Note:        payload.Note,
		Payload:     payload.Payload,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, completeResponse{
		NextMilestoneID: result.NextMilestoneID,
		Unlocked:        result.Unlocked,
		OutOfOrder:      result.OutOfOrder,
	})
}

func (api *API) handleRevision(w http.ResponseWriter, r *http.Request) {
	if api.engine == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	var payload revisionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := api.engine.RequestRevision(r.Context(), engine.RevisionInput{
		CreatorID:   id,
		MilestoneID: r.PathValue("milestone"),
		Note:        payload.Note,
		RequestedBy: payload.RequestedBy,
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handlePause(w http.ResponseWriter, r *http.Request) {
	api.handleAdminAction(w, r, func(input engine.AdminMilestoneInput, reason string) error {
		return api.engine.Pause(r.Context(), engine.PauseInput{
			CreatorID:   input.CreatorID,
			MilestoneID: input.MilestoneID,
			Actor:       input.Actor,
			Reason:      reason,
		})
	})
}

func (api *API) handleResume(w http.ResponseWriter, r *http.Request) {
	api.handleAdminAction(w, r, func(input engine.AdminMilestoneInput, _ string) error {
		return api.engine.Resume(r.Context(), input)
	})
}

func (api *API) handleRelock(w http.ResponseWriter, r *http.Request) {
	api.handleAdminAction(w, r, func(input engine.AdminMilestoneInput, _ string) error {
		return api.engine.ReLock(r.Context(), input)
	})
}

func (api *API) handleOptional(w http.ResponseWriter, r *http.Request) {
	if api.engine == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	var payload optionalPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := api.engine.SetOptional(r.Context(), engine.OptionalInput{
		CreatorID:   id,
		MilestoneID: r.PathValue("milestone"),
		Optional:    payload.Optional,
		Actor:       payload.Actor,
	}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (api *API) handleAdminAction(w http.ResponseWriter, r *http.Request, run func(engine.AdminMilestoneInput, string) error) {
	if api.engine == nil {
		unavailable(w)
		return
	}
	id, ok := creatorID(w, r)
	if !ok {
		return
	}
	var payload adminActionPayload
	if err := decodeJSON(r, &payload); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	input := engine.AdminMilestoneInput{CreatorID: id, MilestoneID: r.PathValue("milestone"), Actor: payload.Actor}
	if err := run(input, payload.Reason); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
