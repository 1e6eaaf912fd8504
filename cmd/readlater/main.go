package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/oscarandresgarntor/reading-backlog/internal/app"
	"github.com/oscarandresgarntor/reading-backlog/internal/enrich"
	"github.com/oscarandresgarntor/reading-backlog/internal/extract"
	"github.com/oscarandresgarntor/reading-backlog/internal/fetch"
	"github.com/oscarandresgarntor/reading-backlog/internal/llm"
	"github.com/oscarandresgarntor/reading-backlog/internal/store"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cliApp := &cli.App{
		Name:  "readlater",
		Usage: "manage your reading backlog from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
			&cli.StringFlag{Name: "data-dir", Usage: "data directory for the article store"},
			&cli.BoolFlag{Name: "llm", Usage: "enable LLM metadata enrichment"},
			&cli.StringFlag{Name: "llm.base", Usage: "OpenAI-compatible base URL", EnvVars: []string{"LLM_BASE_URL"}},
			&cli.StringFlag{Name: "llm.model", Usage: "model name", EnvVars: []string{"LLM_MODEL"}},
			&cli.BoolFlag{Name: "v", Usage: "verbose logging"},
		},
		Commands: []*cli.Command{
			addCommand(),
			addLocalCommand(),
			listCommand(),
			showCommand(),
			statusCommand("read"),
			statusCommand("unread"),
			deleteCommand(),
			tagCommand(),
			priorityCommand(),
			exportCommand(),
			serveCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig assembles runtime configuration: flags win over env, env wins
// over the config file, and the file wins over built-in defaults.
func loadConfig(c *cli.Context) (app.Config, error) {
	cfg := app.Default()
	app.ApplyEnv(&cfg)
	if path := c.String("config"); path != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return cfg, err
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	if v := c.String("data-dir"); v != "" {
		cfg.DataDir = v
	}
	if c.Bool("llm") {
		cfg.EnrichEnabled = true
	}
	if v := c.String("llm.base"); v != "" {
		cfg.LLMBaseURL = v
	}
	if v := c.String("llm.model"); v != "" {
		cfg.LLMModel = v
	}
	if c.Bool("v") || cfg.Verbose {
		cfg.Verbose = true
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if err := app.Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// components wires the collaborators every command shares.
func components(cfg app.Config) (*store.Store, *fetch.Client, *extract.Pipeline, error) {
	st, err := store.Open(cfg.StorePath())
	if err != nil {
		return nil, nil, nil, err
	}
	fetcher := &fetch.Client{Timeout: cfg.FetchTimeout}
	pipeline := &extract.Pipeline{MaxTags: cfg.MaxTags}
	if cfg.EnrichEnabled {
		pipeline.Enricher = &enrich.Enricher{
			Client:     llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey),
			Model:      cfg.LLMModel,
			MaxTextLen: cfg.MaxTextChars,
			MinTextLen: cfg.MinTextChars,
			Timeout:    cfg.EnrichTimeout,
		}
	}
	return st, fetcher, pipeline, nil
}
