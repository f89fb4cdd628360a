// Package cli implements the sonar-tools command line interface.
package cli

import (
	"context"

	"sonartools.dev/sonar-tools/internal/config"
	"sonartools.dev/sonar-tools/internal/errors"
	"sonartools.dev/sonar-tools/internal/output"
	"sonartools.dev/sonar-tools/internal/sonar"
)

// globalFlags holds the persistent flags shared by every command
type globalFlags struct {
	url        string
	token      string
	verbosity  string
	configFile string
}

// resolve merges the configuration sources: flags beat environment
// variables, environment variables beat the config file
func (g *globalFlags) resolve() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if g.configFile != "" {
		cfg, err = config.Load(g.configFile)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if g.url != "" {
		cfg.URL = g.url
	}
	if g.token != "" {
		cfg.Token = g.token
	}
	return cfg, nil
}

// session bundles the resolved configuration and the logger of one
// command invocation
type session struct {
	cfg *config.Config
	log *output.Splog
}

func (g *globalFlags) newSession() (*session, error) {
	cfg, err := g.resolve()
	if err != nil {
		return nil, err
	}
	log, err := output.NewSplogWithConfig(g.verbosity, cfg.LogFile)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log}, nil
}

// connect validates the connection parameters and returns an API client
func (s *session) connect(ctx context.Context) (*sonar.Client, error) {
	if s.cfg.URL == "" {
		return nil, errors.ErrNoURL
	}
	if s.cfg.Token == "" {
		return nil, errors.ErrNoToken
	}
	return sonar.NewClient(ctx, s.cfg.URL, s.cfg.Token)
}

func (s *session) close() {
	_ = s.log.Close()
}
