package qualitygates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"sonartools.dev/sonar-tools/internal/errors"
	"sonartools.dev/sonar-tools/testhelpers"
)

func gatesConfig() *testhelpers.MockSonarServerConfig {
	config := testhelpers.NewMockSonarServerConfig()
	config.Responses["GET /api/qualitygates/list"] = map[string]interface{}{
		"qualitygates": []interface{}{
			testhelpers.GateJSON("Sonar way", true, true),
			testhelpers.GateJSON("Custom", false, false),
		},
	}
	config.Responses["GET /api/qualitygates/show"] = map[string]interface{}{
		"conditions": []interface{}{
			testhelpers.ConditionJSON(1, "new_coverage", "LT", "80"),
			testhelpers.ConditionJSON(2, "new_security_rating", "GT", "1"),
		},
	}
	return config
}

func TestListAndGet(t *testing.T) {
	client := auditClient(t, gatesConfig())

	gates, err := List(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, gates, 2)
	require.Len(t, gates[1].Conditions, 2)

	qg, err := Get(context.Background(), client, "Custom")
	require.NoError(t, err)
	require.Equal(t, "Custom", qg.Name)
	require.False(t, qg.IsBuiltIn)

	_, err = Get(context.Background(), client, "Missing")
	require.ErrorIs(t, err, errors.ErrNotFound)
}

func TestExport(t *testing.T) {
	client := auditClient(t, gatesConfig())

	configs, err := Export(context.Background(), client)
	require.NoError(t, err)
	require.Len(t, configs, 2)

	require.True(t, configs["Sonar way"].IsBuiltIn)
	require.Empty(t, configs["Sonar way"].Conditions)

	custom := configs["Custom"]
	require.Equal(t, []string{"new_coverage <= 80", "new_security_rating >= A"}, custom.Conditions)
}

func TestImportUpdatesExistingGate(t *testing.T) {
	config := gatesConfig()
	client := auditClient(t, config)

	err := Import(context.Background(), client, map[string]GateConfig{
		"Sonar way": {IsBuiltIn: true},
		"Custom":    {Conditions: []string{"new_bugs >= 0"}},
	})
	require.NoError(t, err)

	// built-in gate untouched, custom gate conditions replaced
	require.Empty(t, config.Posts["/api/qualitygates/create"])
	require.NotEmpty(t, config.Posts["/api/qualitygates/delete_condition"])
	created := config.Posts["/api/qualitygates/create_condition"]
	require.Len(t, created, 1)
	require.Equal(t, "new_bugs", created[0]["metric"])
	require.Equal(t, "GT", created[0]["op"])
	require.Equal(t, "0", created[0]["error"])
}

func TestImportCreatesMissingGate(t *testing.T) {
	config := gatesConfig()
	client := auditClient(t, config)

	err := Import(context.Background(), client, map[string]GateConfig{
		"Brand New": {Conditions: []string{"new_vulnerabilities >= 0"}, Groups: []string{"devs"}},
	})
	require.NoError(t, err)

	creates := config.Posts["/api/qualitygates/create"]
	require.Len(t, creates, 1)
	require.Equal(t, "Brand New", creates[0]["name"])
	require.NotEmpty(t, config.Posts["/api/qualitygates/add_group"])
}

func TestRename(t *testing.T) {
	config := gatesConfig()
	client := auditClient(t, config)

	qg, err := Get(context.Background(), client, "Custom")
	require.NoError(t, err)
	require.NoError(t, qg.Rename(context.Background(), client, "Renamed"))
	require.Equal(t, "Renamed", qg.Name)

	posts := config.Posts["/api/qualitygates/rename"]
	require.Len(t, posts, 1)
	require.Equal(t, "Renamed", posts[0]["name"])
}

func TestExportIncludesPermissions(t *testing.T) {
	config := gatesConfig()
	config.Responses["GET /api/qualitygates/search_users"] = map[string]interface{}{
		"users": []map[string]string{{"login": "alice"}},
	}
	config.Responses["GET /api/qualitygates/search_groups"] = map[string]interface{}{
		"groups": []map[string]string{{"name": "devs"}},
	}
	client := auditClient(t, config)

	configs, err := Export(context.Background(), client)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, configs["Custom"].Users)
	require.Equal(t, []string{"devs"}, configs["Custom"].Groups)
	// built-in gates have no edit permissions
	require.Empty(t, configs["Sonar way"].Users)
}

func TestSetPermissionsReplaces(t *testing.T) {
	config := gatesConfig()
	config.Responses["GET /api/qualitygates/search_users"] = map[string]interface{}{
		"users": []map[string]string{{"login": "alice"}},
	}
	config.Responses["GET /api/qualitygates/search_groups"] = map[string]interface{}{
		"groups": []map[string]string{{"name": "devs"}},
	}
	client := auditClient(t, config)

	qg, err := Get(context.Background(), client, "Custom")
	require.NoError(t, err)
	require.NoError(t, qg.SetPermissions(context.Background(), client, []string{"bob"}, nil))

	removedUsers := config.Posts["/api/qualitygates/remove_user"]
	require.Len(t, removedUsers, 1)
	require.Equal(t, "alice", removedUsers[0]["login"])

	removedGroups := config.Posts["/api/qualitygates/remove_group"]
	require.Len(t, removedGroups, 1)
	require.Equal(t, "devs", removedGroups[0]["groupName"])

	addedUsers := config.Posts["/api/qualitygates/add_user"]
	require.Len(t, addedUsers, 1)
	require.Equal(t, "bob", addedUsers[0]["login"])

	require.Equal(t, []string{"bob"}, qg.Users)
	require.Empty(t, qg.Groups)
}
