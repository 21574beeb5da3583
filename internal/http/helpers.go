package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-onboarding/internal/catalog"
	"github.com/goliatone/go-onboarding/internal/engine"
)

type errorResponse struct {
	Error    string   `json:"error"`
	TextCode string   `json:"text_code,omitempty"`
	Message  string   `json:"message,omitempty"`
	Issues   []string `json:"issues,omitempty"`
}

var errBodyRequired = errors.New("request body required")

func joinPath(base, suffix string) string {
	trimmedBase := strings.TrimSpace(base)
	trimmedSuffix := strings.TrimSpace(suffix)
	if trimmedBase == "" {
		if trimmedSuffix == "" {
			return "/"
		}
		return "/" + strings.Trim(trimmedSuffix, "/")
	}
	baseClean := "/" + strings.Trim(trimmedBase, "/")
	if trimmedSuffix == "" {
		return baseClean
	}
	return baseClean + "/" + strings.Trim(trimmedSuffix, "/")
}

func decodeJSON(r *http.Request, target any) error {
	if r == nil || r.Body == nil {
		return errBodyRequired
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return errBodyRequired
		}
		return err
	}
	return nil
}

// decodeOptionalJSON accepts an empty body.
func decodeOptionalJSON(r *http.Request, target any) error {
	if err := decodeJSON(r, target); err != nil && !errors.Is(err, errBodyRequired) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, err error) {
	status, payload := mapError(err)
	writeJSON(w, status, payload)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "bad_request", Message: message})
}

func mapError(err error) (int, errorResponse) {
	if err == nil {
		return http.StatusInternalServerError, errorResponse{Error: "unknown_error"}
	}

	categorized := engine.Categorize(err)
	var typed *goerrors.Error
	if !errors.As(categorized, &typed) {
		return http.StatusInternalServerError, errorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		}
	}

	response := errorResponse{TextCode: typed.TextCode, Message: err.Error()}
	var payloadErr *catalog.PayloadError
	if errors.As(err, &payloadErr) {
		response.Issues = payloadErr.Issues
	}

	switch typed.TextCode {
	case engine.TextCodeNotFound:
		response.Error = "not_found"
		return http.StatusNotFound, response
	case engine.TextCodeInvalidTransition:
		response.Error = "invalid_transition"
		return http.StatusConflict, response
	case engine.TextCodeCreatorExists:
		response.Error = "conflict"
		return http.StatusConflict, response
	case engine.TextCodeInvalidPath:
		response.Error = "invalid_path"
		return http.StatusBadRequest, response
	case engine.TextCodeInvalidPayload:
		response.Error = "invalid_payload"
		return http.StatusBadRequest, response
	case engine.TextCodeStorageUnavailable:
		response.Error = "storage_unavailable"
		return http.StatusServiceUnavailable, response
	}

	switch typed.Category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		response.Error = "bad_request"
		return http.StatusBadRequest, response
	case goerrors.CategoryNotFound:
		response.Error = "not_found"
		return http.StatusNotFound, response
	case goerrors.CategoryConflict:
		response.Error = "conflict"
		return http.StatusConflict, response
	default:
		response.Error = "internal_error"
		return http.StatusInternalServerError, response
	}
}

func parseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, errors.New("uuid required")
	}
	parsed, err := uuid.Parse(trimmed)
	if err != nil {
		return uuid.Nil, err
	}
	return parsed, nil
}

// creatorID reads the {id} path value, writing a 400 when it is malformed.
func creatorID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := parseUUID(r.PathValue("id"))
	if err != nil {
		writeBadRequest(w, "invalid creator id: "+err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func unavailable(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "service_unavailable"})
}
