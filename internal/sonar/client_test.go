package sonar

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"sonartools.dev/sonar-tools/internal/errors"
)

func TestPages(t *testing.T) {
	require.Equal(t, 0, Pages(0))
	require.Equal(t, 1, Pages(1))
	require.Equal(t, 1, Pages(APIPageSize))
	require.Equal(t, 2, Pages(APIPageSize+1))
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(context.Background(), "", "token")
	require.ErrorIs(t, err, errors.ErrNoURL)

	_, err = NewClient(context.Background(), "https://sonar.example.com", "")
	require.ErrorIs(t, err, errors.ErrNoToken)

	client, err := NewClient(context.Background(), "https://sonar.example.com/", "token")
	require.NoError(t, err)
	require.Equal(t, "https://sonar.example.com", client.URL())
}

func TestGetSendsBearerToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/api/projects/search", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]string{"ok": "yes"})
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), server.URL, "squ_abc")
	require.NoError(t, err)

	var out map[string]string
	require.NoError(t, client.Get(context.Background(), "projects/search", nil, &out))
	require.Equal(t, "Bearer squ_abc", gotAuth)
	require.Equal(t, "yes", out["ok"])
}

func TestGetUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"msg":"Insufficient privileges"}]}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), server.URL, "bad")
	require.NoError(t, err)

	err = client.Get(context.Background(), "projects/search", nil, nil)
	require.ErrorIs(t, err, errors.ErrUnauthorized)

	var apiErr *errors.APIError
	require.True(t, stderrors.As(err, &apiErr))
	require.Equal(t, "Insufficient privileges", apiErr.Message)
}

func TestDoRetriesServerErrorsOnce(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), server.URL, "token")
	require.NoError(t, err)

	require.NoError(t, client.Get(context.Background(), "system/status", nil, nil))
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestDoDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), server.URL, "token")
	require.NoError(t, err)

	require.Error(t, client.Get(context.Background(), "projects/search", nil, nil))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("10.4.1.88267")
	require.NoError(t, err)
	require.Equal(t, Version{Major: 10, Minor: 4, Patch: 1}, v)
	require.Equal(t, "10.4.1", v.String())

	v, err = ParseVersion("9.9")
	require.NoError(t, err)
	require.Equal(t, Version{Major: 9, Minor: 9}, v)

	_, err = ParseVersion("not.a.version")
	require.Error(t, err)
}

func TestVersionLessThan(t *testing.T) {
	require.True(t, Version{Major: 9, Minor: 9}.LessThan(Version{Major: 10}))
	require.True(t, Version{Major: 10, Minor: 2}.LessThan(Version{Major: 10, Minor: 4}))
	require.False(t, Version{Major: 10, Minor: 4}.LessThan(Version{Major: 10, Minor: 4}))
}

func TestVersionAndEditionAreCached(t *testing.T) {
	var versionCalls, editionCalls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/server/version":
			atomic.AddInt32(&versionCalls, 1)
			_, _ = w.Write([]byte("10.4.1.88267"))
		case "/api/navigation/global":
			atomic.AddInt32(&editionCalls, 1)
			_ = json.NewEncoder(w).Encode(map[string]string{"edition": "enterprise"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client, err := NewClient(context.Background(), server.URL, "token")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		v, err := client.Version(context.Background())
		require.NoError(t, err)
		require.Equal(t, 10, v.Major)

		edition, err := client.Edition(context.Background())
		require.NoError(t, err)
		require.Equal(t, EditionEnterprise, edition)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&versionCalls))
	require.Equal(t, int32(1), atomic.LoadInt32(&editionCalls))
}
