package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/petasbytes/dora-assist/internal/bridge"
	"github.com/petasbytes/dora-assist/internal/config"
	"github.com/petasbytes/dora-assist/internal/fsops"
	"github.com/petasbytes/dora-assist/internal/logging"
	"github.com/petasbytes/dora-assist/internal/provider"
	"github.com/petasbytes/dora-assist/internal/runner"
	"github.com/petasbytes/dora-assist/internal/telemetry"
	"github.com/petasbytes/dora-assist/tools"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "dora-assist.toml", "path to the TOML config file")
	inline := flag.Bool("inline", false, "run turns inline without tools or a background worker")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	log, closer, err := logging.New(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	telemetry.Configure(cfg.Telemetry.Observe, cfg.Telemetry.Dir)

	keys := &bridge.KeyStore{}
	keys.LoadFromEnv(cfg.APIKeyEnv, log)

	prov := newProvider(cfg)
	runnerOpts := func(o *runner.Options) {
		o.Logger = log
		o.MaxRounds = cfg.MaxRounds
		o.RequestTimeout = cfg.RequestTimeout.Duration
		o.System = cfg.SystemPrompt
	}

	var m model
	if *inline {
		r := runner.New(prov, keys, nil, runnerOpts)
		m = newModel(nil, bridge.NewInline(r, keys), cfg.PollInterval.Duration)
		log.Info("starting in inline mode", "provider", prov.Name(), "model", cfg.Model)
	} else {
		sb, err := fsops.New(cfg.Sandbox.ReadRoot, cfg.Sandbox.WriteRoot)
		if err != nil {
			return fmt.Errorf("sandbox: %w", err)
		}
		catalog := tools.NewCatalog(sb, tools.ProcessOptions{
			Timeout:    cfg.Tools.CommandTimeout.Duration,
			DoraBinary: cfg.Tools.DoraBinary,
		}, cfg.Tools.Enabled...)
		r := runner.New(prov, keys, catalog, runnerOpts)
		rt := bridge.New(r, keys, func(o *bridge.Options) {
			o.Logger = log
			o.QueueSize = cfg.QueueSize
		})
		m = newModel(rt, nil, cfg.PollInterval.Duration)
		log.Info("starting", "provider", prov.Name(), "model", cfg.Model,
			"tools", catalog.Names(), "read_root", sb.ReadRoot(), "write_root", sb.WriteRoot())
	}

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}

func newProvider(cfg *config.Config) provider.Provider {
	if cfg.Provider == config.ProviderOpenAI {
		return provider.NewOpenAI(func(o *provider.OpenAIOptions) {
			o.Model = cfg.Model
			o.MaxCompletionTokens = cfg.MaxTokens
			o.BaseURL = cfg.BaseURL
		})
	}
	return provider.NewAnthropic(func(o *provider.AnthropicOptions) {
		o.Model = cfg.Model
		o.MaxTokens = cfg.MaxTokens
		o.BaseURL = cfg.BaseURL
	})
}
