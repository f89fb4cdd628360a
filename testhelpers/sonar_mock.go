// Package testhelpers provides a mock SonarQube server for tests.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
)

// TestToken is the token the mock server accepts
const TestToken = "squ_test_token"

// MockSonarServerConfig configures the behavior of a mock SonarQube server
type MockSonarServerConfig struct {
	// Version returned by api/server/version
	Version string
	// Edition returned by api/navigation/global
	Edition string
	// Responses maps "METHOD path" to a canned JSON response
	Responses map[string]interface{}
	// Statuses maps "METHOD path" to a non-200 status code
	Statuses map[string]int
	// Posts records the form values of every POST, keyed by path
	Posts map[string][]map[string]string
	// RequireAuth rejects requests without the test token
	RequireAuth bool
}

// NewMockSonarServerConfig creates a mock server config with defaults
func NewMockSonarServerConfig() *MockSonarServerConfig {
	return &MockSonarServerConfig{
		Version:   "10.4.1.88267",
		Edition:   "developer",
		Responses: make(map[string]interface{}),
		Statuses:  make(map[string]int),
		Posts:     make(map[string][]map[string]string),
	}
}

// NewMockSonarServer creates an httptest server that mocks the SonarQube
// Web API endpoints the tools use
func NewMockSonarServer(t *testing.T, config *MockSonarServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockSonarServerConfig()
	}

	handler := func(w http.ResponseWriter, r *http.Request) {
		if config.RequireAuth && r.Header.Get("Authorization") != "Bearer "+TestToken {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"errors": []map[string]string{{"msg": "Insufficient privileges"}},
			})
			return
		}

		key := r.Method + " " + r.URL.Path

		if r.Method == http.MethodPost {
			_ = r.ParseForm()
			form := make(map[string]string, len(r.PostForm))
			for k := range r.PostForm {
				form[k] = r.PostForm.Get(k)
			}
			config.Posts[r.URL.Path] = append(config.Posts[r.URL.Path], form)
		}

		if status, ok := config.Statuses[key]; ok {
			w.WriteHeader(status)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"errors": []map[string]string{{"msg": http.StatusText(status)}},
			})
			return
		}

		switch r.URL.Path {
		case "/api/server/version":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte(config.Version))
			return
		case "/api/navigation/global":
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]string{"edition": config.Edition})
			return
		}

		if response, ok := config.Responses[key]; ok {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(response)
			return
		}
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"errors": []map[string]string{{"msg": "Unknown URL: " + r.URL.Path}},
		})
	}

	server := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(server.Close)
	return server
}

// Paged wraps a payload fragment with a single-page paging header
func Paged(total int, fields map[string]interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"paging": map[string]int{"pageIndex": 1, "pageSize": total, "total": total},
	}
	for k, v := range fields {
		payload[k] = v
	}
	return payload
}

// PagedAt wraps a payload fragment with an explicit paging header, for
// multi-page responses
func PagedAt(page, pageSize, total int, fields map[string]interface{}) map[string]interface{} {
	payload := map[string]interface{}{
		"paging": map[string]int{"pageIndex": page, "pageSize": pageSize, "total": total},
	}
	for k, v := range fields {
		payload[k] = v
	}
	return payload
}

// ProjectJSON builds a project fragment for api/projects/search responses
func ProjectJSON(key, name string) map[string]interface{} {
	return map[string]interface{}{
		"key":        key,
		"name":       name,
		"visibility": "private",
	}
}

// IssueJSON builds a minimal issue fragment for api/issues/search responses
func IssueJSON(key, rule, issueType, severity, project, component string, line int) map[string]interface{} {
	return map[string]interface{}{
		"key":          key,
		"rule":         rule,
		"type":         issueType,
		"severity":     severity,
		"status":       "OPEN",
		"message":      "message of " + key,
		"project":      project,
		"component":    component,
		"line":         line,
		"hash":         "hash-" + key,
		"creationDate": "2025-06-01T10:00:00+0000",
		"updateDate":   "2025-06-02T10:00:00+0000",
	}
}

// MeasuresJSON builds an api/measures/component response
func MeasuresJSON(componentKey string, values map[string]string) map[string]interface{} {
	measures := make([]map[string]string, 0, len(values))
	for metric, value := range values {
		measures = append(measures, map[string]string{"metric": metric, "value": value})
	}
	return map[string]interface{}{
		"component": map[string]interface{}{
			"key":      componentKey,
			"measures": measures,
		},
	}
}

// GateJSON builds a quality gate fragment for api/qualitygates/list responses
func GateJSON(name string, isDefault, isBuiltIn bool) map[string]interface{} {
	return map[string]interface{}{
		"name":      name,
		"isDefault": isDefault,
		"isBuiltIn": isBuiltIn,
	}
}

// ConditionJSON builds a condition fragment for api/qualitygates/show responses
func ConditionJSON(id int, metric, op, errorValue string) map[string]interface{} {
	return map[string]interface{}{
		"id":     strconv.Itoa(id),
		"metric": metric,
		"op":     op,
		"error":  errorValue,
	}
}
