package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	regerrors "strreg/internal/errors"
	"strreg/internal/logging"
	"strreg/internal/nlquery"
	"strreg/internal/registry"
)

// ListResponse is the envelope for filtered listings
type ListResponse struct {
	Data           []*registry.Record `json:"data"`
	Count          int                `json:"count"`
	FiltersApplied registry.Filter    `json:"filters_applied"`
}

// NaturalLanguageResponse is the envelope for keyword-filtered listings
type NaturalLanguageResponse struct {
	Data             []*registry.Record      `json:"data"`
	Count            int                     `json:"count"`
	InterpretedQuery *nlquery.Interpretation `json:"interpreted_query"`
}

// handleCreateString handles POST /strings with body {"value": "..."}
func (s *Server) handleCreateString(w http.ResponseWriter, r *http.Request) {
	value, err := s.decodeValue(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	rec, err := s.registry.Create(r.Context(), value)
	if err != nil {
		s.logFailure(r, "create", err)
		WriteError(w, err)
		return
	}

	WriteJSON(w, rec, http.StatusCreated)
}

// decodeValue extracts the "value" field, distinguishing an absent field
// from one of the wrong JSON type.
func (s *Server) decodeValue(w http.ResponseWriter, r *http.Request) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxBodyBytes)

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", regerrors.Newf(regerrors.InvalidBody, "Request body exceeds %d bytes", maxErr.Limit)
		}
		return "", regerrors.Wrap(regerrors.InvalidBody, "Request body must be a JSON object", err)
	}

	raw, ok := body["value"]
	if !ok {
		return "", regerrors.New(regerrors.MissingField, `Missing "value" field in request body`)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte(`"`)) {
		return "", regerrors.New(regerrors.InvalidType, `"value" must be a string`)
	}

	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", regerrors.Wrap(regerrors.InvalidType, `"value" must be a string`, err)
	}
	return value, nil
}

// handleGetString handles GET /strings/{value}
func (s *Server) handleGetString(w http.ResponseWriter, r *http.Request) {
	rec, err := s.registry.Get(r.Context(), r.PathValue("value"))
	if err != nil {
		s.logFailure(r, "get", err)
		WriteError(w, err)
		return
	}

	WriteJSON(w, rec, http.StatusOK)
}

// handleListStrings handles GET /strings with optional filter parameters
func (s *Server) handleListStrings(w http.ResponseWriter, r *http.Request) {
	q, err := registry.ParseQuery(r.URL.Query())
	if err != nil {
		WriteError(w, err)
		return
	}

	records, err := s.registry.List(r.Context(), q)
	if err != nil {
		s.logFailure(r, "list", err)
		WriteError(w, err)
		return
	}

	WriteJSON(w, ListResponse{
		Data:           records,
		Count:          len(records),
		FiltersApplied: q.Filter,
	}, http.StatusOK)
}

// handleNaturalLanguageFilter handles GET /strings/filter-by-natural-language?query=...
func (s *Server) handleNaturalLanguageFilter(w http.ResponseWriter, r *http.Request) {
	interpretation, err := nlquery.Interpret(r.URL.Query().Get("query"))
	if err != nil {
		WriteError(w, err)
		return
	}

	records, err := s.registry.List(r.Context(), interpretation.Query())
	if err != nil {
		s.logFailure(r, "natural-language", err)
		WriteError(w, err)
		return
	}

	WriteJSON(w, NaturalLanguageResponse{
		Data:             records,
		Count:            len(records),
		InterpretedQuery: interpretation,
	}, http.StatusOK)
}

// handleDeleteString handles DELETE /strings/{value}
func (s *Server) handleDeleteString(w http.ResponseWriter, r *http.Request) {
	if err := s.registry.Delete(r.Context(), r.PathValue("value")); err != nil {
		s.logFailure(r, "delete", err)
		WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// logFailure logs unexpected errors; expected client errors stay quiet.
func (s *Server) logFailure(r *http.Request, op string, err error) {
	if regerrors.CodeOf(err) != regerrors.InternalError {
		return
	}
	s.logger.Error("Registry operation failed",
		"op", op,
		"error", err.Error(),
		logging.RequestIDKey, GetRequestID(r.Context()),
	)
}
