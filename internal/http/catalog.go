package http

import (
	"net/http"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/domain"
	"github.com/goliatone/go-onboarding/internal/resolver"
)

type catalogResponse struct {
	Version    string              `json:"version"`
	Phases     []catalog.Phase     `json:"phases"`
	Milestones []catalog.Milestone `json:"milestones"`
}

func (api *API) registerCatalogRoutes(mux *http.ServeMux, base string) {
	api.route(mux, "GET "+joinPath(base, "catalog"), api.handleCatalog)
}

// handleCatalog lists the catalog. ?path= narrows milestones to one content path.
func (api *API) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if api.catalog == nil {
		unavailable(w)
		return
	}
	milestones := api.catalog.Milestones()
	if raw := r.URL.Query().Get("path"); raw != "" {
		path, err := domain.ParseContentPath(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		if milestones, err = resolver.Resolve(api.catalog, path); err != nil {
			writeError(w, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, catalogResponse{
		Version:    api.catalog.Version(),
		Phases:     api.catalog.Phases(),
		Milestones: milestones,
	})
}
