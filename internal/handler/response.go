package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/primarycell/assessment/internal/model"
)

// maxBodyBytes caps request bodies; quiz payloads are small
const maxBodyBytes = 64 << 10

// DataResponse wraps a successful response with optional HATEOAS links
type DataResponse struct {
	Data  interface{}       `json:"data"`
	Links map[string]string `json:"_links,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteData writes a successful data response
func WriteData(w http.ResponseWriter, status int, data interface{}, links map[string]string) {
	WriteJSON(w, status, DataResponse{
		Data:  data,
		Links: links,
	})
}

// WriteError writes an error response using RFC 9457 Problem Details
func WriteError(w http.ResponseWriter, err *model.ProblemDetails) {
	err.WriteJSON(w)
}

// DecodeJSON decodes a JSON request body into the given struct
func DecodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// decodeProblem turns a DecodeJSON failure into a 400 problem
func decodeProblem(err error) *model.ProblemDetails {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return model.NewBadRequestError("request body too large")
	}
	return model.NewBadRequestError("invalid request body")
}
