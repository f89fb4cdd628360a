package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/permissions"
	"sonartools.dev/sonar-tools/internal/projects"
	"sonartools.dev/sonar-tools/internal/qualitygates"
	"sonartools.dev/sonar-tools/internal/settings"
	"sonartools.dev/sonar-tools/internal/sonar"
)

// platformConfig is the import/export form of a platform configuration
type platformConfig struct {
	Platform struct {
		URL     string `json:"url"`
		Version string `json:"version"`
		Edition string `json:"edition"`
	} `json:"platform"`
	QualityGates   map[string]qualitygates.GateConfig `json:"qualityGates,omitempty"`
	GlobalSettings map[string]interface{}             `json:"globalSettings,omitempty"`
	Projects       map[string]projectConfig           `json:"projects,omitempty"`
}

// projectConfig is the per-project section of a configuration dump
type projectConfig struct {
	Name        string            `json:"name"`
	Permissions permissionsConfig `json:"permissions,omitempty"`
}

// permissionsConfig maps holder names to granted permission keys
type permissionsConfig struct {
	Users  map[string][]string `json:"users,omitempty"`
	Groups map[string][]string `json:"groups,omitempty"`
}

// newConfigCmd creates the config command and its export/import subcommands
func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Export or import the platform configuration",
	}
	cmd.AddCommand(newConfigExportCmd(flags))
	cmd.AddCommand(newConfigImportCmd(flags))
	return cmd
}

func newConfigExportCmd(flags *globalFlags) *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the platform configuration as JSON",
		Long: `Export the platform configuration as JSON: quality gates with their
conditions and permissions, the global settings, and the project
permissions of every project.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.newSession()
			if err != nil {
				return err
			}
			defer sess.close()

			ctx := cmd.Context()
			client, err := sess.connect(ctx)
			if err != nil {
				return err
			}

			var cfg platformConfig
			cfg.Platform.URL = client.URL()
			version, err := client.Version(ctx)
			if err != nil {
				return err
			}
			cfg.Platform.Version = version.String()
			if cfg.Platform.Edition, err = client.Edition(ctx); err != nil {
				return err
			}

			if cfg.QualityGates, err = qualitygates.Export(ctx, client); err != nil {
				return err
			}
			if cfg.GlobalSettings, err = exportGlobalSettings(ctx, client); err != nil {
				return err
			}
			if cfg.Projects, err = exportProjects(ctx, client); err != nil {
				return err
			}

			sink, err := output.NewSink(outputFile)
			if err != nil {
				return err
			}
			defer sink.Close()

			enc := json.NewEncoder(sink)
			enc.SetIndent("", "  ")
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			sess.log.Info("Exported %d quality gates, %d settings and %d projects",
				len(cfg.QualityGates), len(cfg.GlobalSettings), len(cfg.Projects))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "outputFile", "o", "", "Output file (default: stdout)")
	return cmd
}

func newConfigImportCmd(flags *globalFlags) *cobra.Command {
	var (
		inputFile string
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a platform configuration dump",
		Long: `Import a platform configuration dump produced by config export.

Quality gates are created when missing and updated when present, the
import can be run repeatedly with the same result. Built-in gates and
inherited settings are never touched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := flags.newSession()
			if err != nil {
				return err
			}
			defer sess.close()

			data, err := os.ReadFile(inputFile)
			if err != nil {
				return fmt.Errorf("failed to read configuration dump: %w", err)
			}
			var cfg platformConfig
			if err := json.Unmarshal(data, &cfg); err != nil {
				return fmt.Errorf("failed to parse configuration dump: %w", err)
			}

			ctx := cmd.Context()
			client, err := sess.connect(ctx)
			if err != nil {
				return err
			}

			if !yes && isatty.IsTerminal(os.Stdin.Fd()) {
				confirmed := false
				prompt := &survey.Confirm{
					Message: fmt.Sprintf("Import %d quality gates, %d settings and %d projects into %s?",
						len(cfg.QualityGates), len(cfg.GlobalSettings), len(cfg.Projects), client.URL()),
				}
				if err := survey.AskOne(prompt, &confirmed); err != nil {
					return err
				}
				if !confirmed {
					sess.log.Info("Import aborted")
					return nil
				}
			}

			if err := qualitygates.Import(ctx, client, cfg.QualityGates); err != nil {
				return err
			}
			if err := importGlobalSettings(ctx, client, cfg.GlobalSettings); err != nil {
				return err
			}
			if err := importProjects(ctx, client, cfg.Projects); err != nil {
				return err
			}
			sess.log.Info("Imported %d quality gates, %d settings and %d projects",
				len(cfg.QualityGates), len(cfg.GlobalSettings), len(cfg.Projects))
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFile, "inputFile", "i", "", "Configuration dump to import")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	_ = cmd.MarkFlagRequired("inputFile")
	return cmd
}

// exportGlobalSettings dumps the non-inherited global settings. Multi-value
// settings are exported as arrays.
func exportGlobalSettings(ctx context.Context, client *sonar.Client) (map[string]interface{}, error) {
	all, err := settings.GetBulk(ctx, client, nil, "")
	if err != nil {
		return nil, err
	}
	exported := make(map[string]interface{}, len(all))
	for _, s := range all {
		if s.Inherited {
			continue
		}
		if len(s.Values) > 0 {
			exported[s.Key] = s.Values
		} else {
			exported[s.Key] = s.Value
		}
	}
	return exported, nil
}

func importGlobalSettings(ctx context.Context, client *sonar.Client, dump map[string]interface{}) error {
	keys := make([]string, 0, len(dump))
	for key := range dump {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value, ok := settingValue(dump[key])
		if !ok {
			continue
		}
		if err := settings.Set(ctx, client, key, value, ""); err != nil {
			return err
		}
	}
	return nil
}

// exportProjects dumps the per-project configuration: for now the project
// permissions for users and groups
func exportProjects(ctx context.Context, client *sonar.Client) (map[string]projectConfig, error) {
	projectList, err := projects.Search(ctx, client, nil)
	if err != nil {
		return nil, err
	}
	exported := make(map[string]projectConfig, len(projectList))
	for _, project := range projectList {
		perms, err := permissions.Read(ctx, client, project.Key)
		if err != nil {
			return nil, err
		}
		exported[project.Key] = projectConfig{
			Name:        project.Name,
			Permissions: permissionsConfig{Users: perms.Users, Groups: perms.Groups},
		}
	}
	return exported, nil
}

// importProjects reconciles project permissions with the dump. Projects
// without a permissions section are left untouched.
func importProjects(ctx context.Context, client *sonar.Client, dump map[string]projectConfig) error {
	keys := make([]string, 0, len(dump))
	for key := range dump {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		cfg := dump[key]
		if len(cfg.Permissions.Users) == 0 && len(cfg.Permissions.Groups) == 0 {
			continue
		}
		current, err := permissions.Read(ctx, client, key)
		if err != nil {
			return err
		}
		wanted := &permissions.ProjectPermissionSet{
			ProjectKey: key,
			Users:      cfg.Permissions.Users,
			Groups:     cfg.Permissions.Groups,
		}
		if err := current.Apply(ctx, client, wanted); err != nil {
			return err
		}
	}
	return nil
}

// settingValue flattens an exported setting value. Multi-value settings
// are joined with commas, the separator api/settings/set accepts.
func settingValue(v interface{}) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []string:
		return strings.Join(t, ","), true
	case []interface{}:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return "", false
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	}
	return "", false
}
