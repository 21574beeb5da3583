// Package http exposes the onboarding engine over net/http.
//
// Routes mount under a base path (default /api):
//   - Creators: POST /creators, GET /creators/{id}, GET /creators/{id}/dashboard
//   - Milestones: POST /creators/{id}/milestones/{milestone}/{submit|complete|revision|pause|resume|relock|optional}
//   - Creator actions: POST /creators/{id}/content-path, POST /creators/{id}/restart
//   - Catalog: GET /catalog
//
// Host applications register the API on their own mux.
package http
