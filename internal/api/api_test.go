package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"strreg/internal/logging"
	"strreg/internal/registry"
)

// newTestServer creates a server over a fresh in-memory registry
func newTestServer(t *testing.T) *Server {
	t.Helper()

	logger := logging.NewDiscardLogger()
	svc := registry.NewService(registry.NewMemoryStore(), logger)
	return NewServer(":0", svc, logger, DefaultServerConfig())
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	s.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
}

func TestRootEndpoint(t *testing.T) {
	server := newTestServer(t)

	w := do(t, server, http.MethodGet, "/", "")

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "running") {
		t.Errorf("Unexpected liveness body %q", w.Body.String())
	}
}

func TestHealthEndpoint(t *testing.T) {
	server := newTestServer(t)
	do(t, server, http.MethodPost, "/strings", `{"value":"abc"}`)

	w := do(t, server, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp HealthResponse
	decode(t, w, &resp)
	if resp.Status != "healthy" {
		t.Errorf("Expected status 'healthy', got %q", resp.Status)
	}
	if resp.Strings != 1 {
		t.Errorf("Expected 1 string, got %d", resp.Strings)
	}
}

func TestCreateString(t *testing.T) {
	server := newTestServer(t)

	w := do(t, server, http.MethodPost, "/strings", `{"value": "Racecar"}`)

	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	var rec registry.Record
	decode(t, w, &rec)
	if rec.ID != 1 {
		t.Errorf("Expected id 1, got %d", rec.ID)
	}
	if rec.Value != "Racecar" {
		t.Errorf("Expected value Racecar, got %q", rec.Value)
	}
	if !rec.Properties.IsPalindrome {
		t.Error("Expected is_palindrome true")
	}
	if rec.Properties.Length != 7 {
		t.Errorf("Expected length 7, got %d", rec.Properties.Length)
	}
	if rec.Properties.WordCount != 1 {
		t.Errorf("Expected word_count 1, got %d", rec.Properties.WordCount)
	}
	if len(rec.Properties.SHA256Hash) != 64 {
		t.Errorf("Unexpected sha256_hash %q", rec.Properties.SHA256Hash)
	}
}

func TestCreateString_JSONFieldNames(t *testing.T) {
	server := newTestServer(t)

	w := do(t, server, http.MethodPost, "/strings", `{"value": "hi there"}`)

	var rec struct {
		ID         *int64                 `json:"id"`
		Value      *string                `json:"value"`
		Properties map[string]interface{} `json:"properties"`
	}
	decode(t, w, &rec)
	if rec.ID == nil || rec.Value == nil {
		t.Errorf("record missing id or value: %s", w.Body.String())
	}
	for _, field := range []string{
		"length", "is_palindrome", "unique_characters", "word_count",
		"sha256_hash", "character_frequency_map", "created_at",
	} {
		if _, ok := rec.Properties[field]; !ok {
			t.Errorf("properties missing %q", field)
		}
	}
}

func TestCreateString_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing value", `{}`, http.StatusBadRequest, "MISSING_FIELD"},
		{"other field only", `{"text": "hi"}`, http.StatusBadRequest, "MISSING_FIELD"},
		{"number value", `{"value": 42}`, http.StatusUnprocessableEntity, "INVALID_TYPE"},
		{"null value", `{"value": null}`, http.StatusUnprocessableEntity, "INVALID_TYPE"},
		{"array value", `{"value": ["a"]}`, http.StatusUnprocessableEntity, "INVALID_TYPE"},
		{"malformed json", `{"value": `, http.StatusBadRequest, "INVALID_BODY"},
		{"not an object", `["value"]`, http.StatusBadRequest, "INVALID_BODY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t)

			w := do(t, server, http.MethodPost, "/strings", tt.body)

			if w.Code != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			var resp ErrorResponse
			decode(t, w, &resp)
			if resp.Code != tt.wantCode {
				t.Errorf("Expected code %s, got %s", tt.wantCode, resp.Code)
			}
			if resp.Error == "" {
				t.Error("Expected a descriptive error message")
			}
		})
	}
}

func TestCreateString_ConflictDifferentCase(t *testing.T) {
	server := newTestServer(t)

	if w := do(t, server, http.MethodPost, "/strings", `{"value": "hello"}`); w.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", w.Code)
	}
	w := do(t, server, http.MethodPost, "/strings", `{"value": "HELLO"}`)

	if w.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", w.Code)
	}
}

func TestCreateString_BodyTooLarge(t *testing.T) {
	logger := logging.NewDiscardLogger()
	cfg := DefaultServerConfig()
	cfg.MaxBodyBytes = 16
	server := NewServer(":0", registry.NewService(registry.NewMemoryStore(), logger), logger, cfg)

	w := do(t, server, http.MethodPost, "/strings", `{"value": "this body is far too long"}`)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestGetString(t *testing.T) {
	server := newTestServer(t)
	do(t, server, http.MethodPost, "/strings", `{"value": "Hello World"}`)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"exact", "/strings/Hello%20World", http.StatusOK},
		{"different case", "/strings/hello%20world", http.StatusOK},
		{"missing", "/strings/nothing", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, server, http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK {
				var rec registry.Record
				decode(t, w, &rec)
				if rec.Value != "Hello World" {
					t.Errorf("Expected stored case, got %q", rec.Value)
				}
			}
		})
	}
}

func TestListStrings(t *testing.T) {
	server := newTestServer(t)
	for _, v := range []string{"racecar", "hello world", "noon", "abcdefgh"} {
		do(t, server, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
	}

	w := do(t, server, http.MethodGet, "/strings?is_palindrome=true&min_length=5", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	var resp struct {
		Data           []registry.Record      `json:"data"`
		Count          int                    `json:"count"`
		FiltersApplied map[string]interface{} `json:"filters_applied"`
	}
	decode(t, w, &resp)

	if resp.Count != 1 || len(resp.Data) != 1 || resp.Data[0].Value != "racecar" {
		t.Errorf("Unexpected result: %+v", resp)
	}
	if resp.FiltersApplied["is_palindrome"] != true {
		t.Errorf("Expected is_palindrome echoed as bool, got %v", resp.FiltersApplied["is_palindrome"])
	}
	if resp.FiltersApplied["min_length"] != float64(5) {
		t.Errorf("Expected min_length echoed as number, got %v", resp.FiltersApplied["min_length"])
	}
	if _, ok := resp.FiltersApplied["max_length"]; ok {
		t.Error("Unsupplied filters must not be echoed")
	}
}

func TestListStrings_MinLengthNeverShorter(t *testing.T) {
	server := newTestServer(t)
	for _, v := range []string{"a", "abcd", "abcde", "abcdefghij"} {
		do(t, server, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
	}

	w := do(t, server, http.MethodGet, "/strings?min_length=5", "")

	var resp ListResponse
	decode(t, w, &resp)
	if resp.Count != 2 {
		t.Errorf("Expected 2 results, got %d", resp.Count)
	}
	for _, rec := range resp.Data {
		if rec.Properties.Length < 5 {
			t.Errorf("Record %q has length %d < 5", rec.Value, rec.Properties.Length)
		}
	}
}

func TestListStrings_NoMatchIsEmptyArray(t *testing.T) {
	server := newTestServer(t)
	do(t, server, http.MethodPost, "/strings", `{"value": "hello"}`)

	w := do(t, server, http.MethodGet, "/strings?contains_character=z", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"data":[]`) {
		t.Errorf("Expected empty data array, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"count":0`) {
		t.Errorf("Expected count 0, got %s", w.Body.String())
	}
}

func TestListStrings_InvalidFilters(t *testing.T) {
	server := newTestServer(t)

	for _, query := range []string{
		"min_length=abc",
		"contains_character=ab",
		"is_palindrome=maybe",
		"min_length=9&max_length=2",
	} {
		t.Run(query, func(t *testing.T) {
			w := do(t, server, http.MethodGet, "/strings?"+query, "")
			if w.Code != http.StatusBadRequest {
				t.Errorf("Expected status 400, got %d", w.Code)
			}
			var resp ErrorResponse
			decode(t, w, &resp)
			if resp.Code != "INVALID_FILTER" {
				t.Errorf("Expected INVALID_FILTER, got %s", resp.Code)
			}
		})
	}
}

func TestNaturalLanguageFilter(t *testing.T) {
	server := newTestServer(t)
	for _, v := range []string{"racecar", "level up", "kayak", "banana"} {
		do(t, server, http.MethodPost, "/strings", `{"value": "`+v+`"}`)
	}

	w := do(t, server, http.MethodGet,
		"/strings/filter-by-natural-language?query=all%20single%20word%20palindromic%20strings", "")

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data             []registry.Record `json:"data"`
		Count            int               `json:"count"`
		InterpretedQuery struct {
			Original      string                 `json:"original"`
			ParsedFilters map[string]interface{} `json:"parsed_filters"`
		} `json:"interpreted_query"`
	}
	decode(t, w, &resp)

	if resp.Count != 2 {
		t.Errorf("Expected 2 matches, got %d", resp.Count)
	}
	if resp.InterpretedQuery.Original != "all single word palindromic strings" {
		t.Errorf("Unexpected original %q", resp.InterpretedQuery.Original)
	}
	if resp.InterpretedQuery.ParsedFilters["is_palindrome"] != true {
		t.Errorf("Expected is_palindrome in parsed filters, got %v", resp.InterpretedQuery.ParsedFilters)
	}
	if resp.InterpretedQuery.ParsedFilters["word_count"] != float64(1) {
		t.Errorf("Expected word_count 1 in parsed filters, got %v", resp.InterpretedQuery.ParsedFilters)
	}
}

func TestNaturalLanguageFilter_Unparsable(t *testing.T) {
	server := newTestServer(t)

	for _, target := range []string{
		"/strings/filter-by-natural-language",
		"/strings/filter-by-natural-language?query=tell%20me%20a%20joke",
	} {
		w := do(t, server, http.MethodGet, target, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", target, w.Code)
		}
		var resp ErrorResponse
		decode(t, w, &resp)
		if resp.Code != "UNPARSABLE_QUERY" {
			t.Errorf("%s: expected UNPARSABLE_QUERY, got %s", target, resp.Code)
		}
	}
}

func TestDeleteString(t *testing.T) {
	server := newTestServer(t)
	do(t, server, http.MethodPost, "/strings", `{"value": "Level"}`)

	w := do(t, server, http.MethodDelete, "/strings/level", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("Expected status 204, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("Expected empty body, got %q", w.Body.String())
	}

	if w := do(t, server, http.MethodGet, "/strings/Level", ""); w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", w.Code)
	}
}

func TestDeleteString_NeverCreated(t *testing.T) {
	server := newTestServer(t)

	w := do(t, server, http.MethodDelete, "/strings/ghost", "")

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestDeleteDoesNotReuseIDs(t *testing.T) {
	server := newTestServer(t)
	do(t, server, http.MethodPost, "/strings", `{"value": "one"}`)
	do(t, server, http.MethodPost, "/strings", `{"value": "two"}`)
	do(t, server, http.MethodDelete, "/strings/one", "")

	w := do(t, server, http.MethodPost, "/strings", `{"value": "three"}`)

	var rec registry.Record
	decode(t, w, &rec)
	if rec.ID != 3 {
		t.Errorf("Expected id 3, got %d", rec.ID)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	server := newTestServer(t)

	w := do(t, server, http.MethodPut, "/strings", `{"value": "x"}`)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", w.Code)
	}
}
