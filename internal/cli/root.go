package cli

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root cobra command
func NewRootCmd(version, commit, date string) *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "sonar-tools",
		Short: "sonar-tools is a command line toolset to administer SonarQube platforms",
		Long: `sonar-tools is a command line toolset to administer SonarQube platforms:
export measures and findings, audit the platform configuration,
export and import quality gates and settings, and render reports.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.url, "url", "u", "", "URL of the SonarQube platform (default: $SONAR_HOST_URL)")
	pf.StringVarP(&flags.token, "token", "t", "", "Token to authenticate against the platform (default: $SONAR_TOKEN)")
	pf.StringVarP(&flags.verbosity, "verbosity", "v", "INFO", "Logging verbosity (INFO or DEBUG)")
	pf.StringVarP(&flags.configFile, "config", "c", "", "Path to the configuration file (default: ~/.sonar-tools.yaml)")

	rootCmd.AddCommand(newMeasuresExportCmd(flags))
	rootCmd.AddCommand(newFindingsExportCmd(flags))
	rootCmd.AddCommand(newAuditCmd(flags))
	rootCmd.AddCommand(newConfigCmd(flags))
	rootCmd.AddCommand(newReportCmd(flags))
	rootCmd.AddCommand(newLocCmd(flags))
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}
