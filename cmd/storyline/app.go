package main

import (
	"fmt"
	"os"

	"storyline/internal/api"
	"storyline/internal/config"
	"storyline/internal/logging"
	"storyline/internal/session"
	"storyline/internal/store"
)

// app is the wiring every command shares.
type app struct {
	workspace  string
	configPath string
	cfg        *config.Config
	store      *store.LocalStore
	sessions   *session.KVStore
	client     *api.Client
}

// openApp loads .env and config, starts logging and opens the session store.
// One-shot commands log to stderr when --verbose is set; the shell always
// logs to files because it owns the terminal.
func openApp(interactive bool) (*app, error) {
	ws := workspace
	if ws == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve workspace: %w", err)
		}
		ws = cwd
	}

	if err := config.LoadDotEnv(ws); err != nil {
		return nil, err
	}
	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	a := &app{workspace: ws, configPath: path, cfg: cfg}
	a.applyOverrides(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	if err := logging.Initialize(cfg.Logging.Options(ws, verbose && !interactive)); err != nil {
		return nil, fmt.Errorf("failed to initialize logging: %w", err)
	}
	logging.Boot("workspace=%s config=%s api=%s", ws, path, cfg.API.BaseURL)

	st, err := store.NewLocalStore(config.ResolvePath(ws, cfg.Session.DatabasePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	a.store = st
	a.sessions = session.NewStore(st)
	a.client = api.New(cfg.API.BaseURL, a.sessions,
		api.WithTimeout(cfg.GetAPITimeout()),
		api.WithUserAgent(cfg.API.UserAgent),
	)
	return a, nil
}

// applyOverrides lays the command-line flags over a loaded config.
func (a *app) applyOverrides(cfg *config.Config) {
	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}
	if verbose {
		cfg.Logging.DebugMode = true
		cfg.Logging.Level = "debug"
	}
}

func (a *app) Close() error {
	logging.Sync()
	return a.store.Close()
}
