package aggregations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sonartools.dev/sonar-tools/internal/audit"
	"sonartools.dev/sonar-tools/internal/sonar"
	"sonartools.dev/sonar-tools/testhelpers"
)

func client(t *testing.T, config *testhelpers.MockSonarServerConfig) *sonar.Client {
	t.Helper()
	server := testhelpers.NewMockSonarServer(t, config)
	c, err := sonar.NewClient(context.Background(), server.URL, testhelpers.TestToken)
	require.NoError(t, err)
	return c
}

func TestSearch(t *testing.T) {
	config := testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/components/search"] = testhelpers.Paged(2, map[string]interface{}{
		"components": []interface{}{
			map[string]string{"key": "app1", "name": "App One", "visibility": "private"},
			map[string]string{"key": "app2", "name": "App Two", "visibility": "public"},
		},
	})

	apps, err := Search(context.Background(), client(t, config), KindApplication)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	require.Equal(t, "app1", apps[0].Key)
	require.Equal(t, KindApplication, apps[0].Kind)
}

func TestAuditCardinality(t *testing.T) {
	empty := &Aggregation{Key: "empty-app", Kind: KindApplication}
	config := testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/measures/component"] = testhelpers.MeasuresJSON("empty-app", map[string]string{
		"projects": "0", "ncloc": "0",
	})
	problems, err := empty.Audit(context.Background(), client(t, config))
	require.NoError(t, err)
	require.Len(t, problems, 1)
	require.Equal(t, audit.AggregationEmpty, problems[0].RuleID)

	singleton := &Aggregation{Key: "single-pf", Kind: KindPortfolio}
	config = testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/measures/component"] = testhelpers.MeasuresJSON("single-pf", map[string]string{
		"projects": "1", "ncloc": "1200",
	})
	problems, err = singleton.Audit(context.Background(), client(t, config))
	require.NoError(t, err)
	require.Len(t, problems, 1)
	require.Equal(t, audit.AggregationSingleton, problems[0].RuleID)

	healthy := &Aggregation{Key: "big-pf", Kind: KindPortfolio}
	config = testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/measures/component"] = testhelpers.MeasuresJSON("big-pf", map[string]string{
		"projects": "12", "ncloc": "50000",
	})
	problems, err = healthy.Audit(context.Background(), client(t, config))
	require.NoError(t, err)
	require.Empty(t, problems)

	ncloc, err := healthy.Ncloc(context.Background(), client(t, config))
	require.NoError(t, err)
	require.Equal(t, 50000, ncloc)
}
