package main

import (
	"fmt"
	"os"

	stderrors "errors"

	"sonartools.dev/sonar-tools/internal/cli"
	"sonartools.dev/sonar-tools/internal/errors"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := cli.NewRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		if stderrors.Is(err, errors.ErrAuditProblems) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		if stderrors.Is(err, errors.ErrUnauthorized) {
			os.Exit(3)
		}
		os.Exit(1)
	}
}
