package findings

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/testhelpers"
)

func TestCollectChangelogs(t *testing.T) {
	config := testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/issues/changelog"] = map[string]interface{}{
		"changelog": []interface{}{
			map[string]string{"user": "alice", "creationDate": "2025-06-10T10:00:00+0000"},
		},
	}
	server := testhelpers.NewMockSonarServer(t, config)

	client, err := sonar.NewClient(context.Background(), server.URL, testhelpers.TestToken)
	require.NoError(t, err)

	list := make([]*Finding, 0, 20)
	for i := 0; i < 20; i++ {
		f := testFinding()
		f.Key = f.Key + string(rune('a'+i))
		list = append(list, f)
	}

	require.NoError(t, CollectChangelogs(context.Background(), client, list, time.Time{}, 4))
	for _, f := range list {
		require.Len(t, f.Changelog(), 1)
		require.True(t, f.Modifiers()["alice"])
	}
}

func TestCollectChangelogsSkipsUnmodified(t *testing.T) {
	config := testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/issues/changelog"] = map[string]interface{}{
		"changelog": []interface{}{
			map[string]string{"user": "alice", "creationDate": "2025-06-10T10:00:00+0000"},
		},
	}
	server := testhelpers.NewMockSonarServer(t, config)

	client, err := sonar.NewClient(context.Background(), server.URL, testhelpers.TestToken)
	require.NoError(t, err)

	f := testFinding() // updated 2025-06-02
	cutoff := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, CollectChangelogs(context.Background(), client, []*Finding{f}, cutoff, 2))
	require.Empty(t, f.Changelog())
}

func TestCollectChangelogsStopsOnError(t *testing.T) {
	config := testhelpers.NewMockSonarServerConfig()
	config.Statuses["GET /api/issues/changelog"] = http.StatusBadRequest
	server := testhelpers.NewMockSonarServer(t, config)

	client, err := sonar.NewClient(context.Background(), server.URL, testhelpers.TestToken)
	require.NoError(t, err)

	list := []*Finding{testFinding(), testFinding(), testFinding()}
	require.Error(t, CollectChangelogs(context.Background(), client, list, time.Time{}, 2))
}
