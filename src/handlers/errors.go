package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"foodie/src/types"
)

const (
	KindNotFound            = "not_found"
	KindUnauthorized        = "unauthorized"
	KindValidation          = "validation"
	KindUpstreamUnavailable = "upstream_unavailable"
	KindMalformedResponse   = "malformed_response"
	KindStoreUnavailable    = "store_unavailable"
	KindAlreadyExists       = "already_exists"
	KindAuthFailed          = "auth_failed"
	KindInternal            = "internal"
)

type errorBody struct {
	Error   string `json:"error"`
	Kind    string `json:"kind"`
	Message string `json:"message,omitempty"`
}

// classify maps an error to its status, kind and client-facing message.
// Everything except not-found and unauthorized stays a 400 so existing
// clients keep working; the kind tells the causes apart.
func classify(err error) (int, errorBody) {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound, errorBody{Error: "not found", Kind: KindNotFound}
	case errors.Is(err, types.ErrUnauthorized):
		return http.StatusUnauthorized, errorBody{Error: "unauthorized", Kind: KindUnauthorized}
	case errors.Is(err, types.ErrInvalidInput):
		return http.StatusBadRequest, errorBody{Error: err.Error(), Kind: KindValidation}
	case errors.Is(err, types.ErrUpstreamUnavailable):
		return http.StatusBadRequest, errorBody{Error: "Error retrieving restaurants from Yelp", Kind: KindUpstreamUnavailable}
	case errors.Is(err, types.ErrMalformedResponse):
		return http.StatusBadRequest, errorBody{Error: "Error retrieving restaurants from Yelp", Kind: KindMalformedResponse}
	case errors.Is(err, types.ErrStoreUnavailable):
		return http.StatusBadRequest, errorBody{Error: "database unavailable", Kind: KindStoreUnavailable}
	case errors.Is(err, types.ErrAlreadyExists):
		return http.StatusBadRequest, errorBody{Error: "restaurant already saved", Kind: KindAlreadyExists}
	case errors.Is(err, types.ErrAuthFailed):
		return http.StatusBadRequest, errorBody{Error: "login failed", Kind: KindAuthFailed}
	default:
		return http.StatusBadRequest, errorBody{Error: "bad request", Kind: KindInternal}
	}
}

// WriteError logs err and writes its translated response.
func WriteError(w http.ResponseWriter, err error) {
	status, body := classify(err)
	log.Printf("request failed (%s): %v", body.Kind, err)
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %s", err)
	}
}
