package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edgard/autoreply/internal/bot"
	"github.com/edgard/autoreply/internal/bot/tasks"
	"github.com/edgard/autoreply/internal/config"
	"github.com/edgard/autoreply/internal/database"
	"github.com/edgard/autoreply/internal/discord"
	"github.com/edgard/autoreply/internal/generator"
	"github.com/edgard/autoreply/internal/logger"
	"github.com/edgard/autoreply/internal/session"
)

type rootOptions struct {
	configPath string
	envFiles   []string
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string) int {
	root := newRootCmd()
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("autoreply failed", "error", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "autoreply",
		Short:         "Answer new messages in a Discord channel",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd, opts)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "./config.yaml", "Path to configuration file (optional)")
	pf.StringSliceVar(&opts.envFiles, "env-file", nil, "Dotenv files to load (default .env.local, .env)")

	f := cmd.Flags()
	f.String("channel", "", "Channel id to watch")
	f.String("token-type", config.DefaultDiscordTokenType, "Discord token type: user or bot")
	f.String("language", config.DefaultLanguage, "Reply language: id or en")
	f.Duration("read-delay", config.DefaultReadDelay, "Delay between polls")
	f.Duration("reply-delay", config.DefaultReplyDelay, "Delay before sending a reply")
	f.Bool("reply-mode", true, "Send replies as threaded replies")
	f.String("source", config.DefaultSource, "Reply source: api or canned")
	f.String("provider", config.DefaultProvider, "Generation provider: openrouter, openai or gemini")
	f.String("model", "", "Generation model (provider default when empty)")
	f.String("canned-file", config.DefaultCannedFile, "File with one canned reply per line")
	f.String("db-path", config.DefaultDBPath, "Reply journal database path")
	f.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn or error")
	f.Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(newHistoryCmd(opts))

	return cmd
}

// runBot wires every component from the loaded configuration and blocks until
// the context is cancelled or the loop fails.
func runBot(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()

	loaded, err := config.LoadDotEnv(opts.envFiles...)
	if err != nil {
		return fmt.Errorf("failed to load environment files: %w", err)
	}

	cfg, err := config.LoadConfig(opts.configPath, cmd.Flags())
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)
	if len(loaded) > 0 {
		log.Debug("Loaded environment files", "files", loaded)
	}

	platform, err := discord.NewClient(cfg.Discord, log)
	if err != nil {
		log.Error("Failed to create Discord client", "error", err)
		return err
	}

	gen, err := generator.New(ctx, cfg.Generation, log)
	if err != nil {
		log.Error("Failed to create reply generator", "source", cfg.Generation.Source, "error", err)
		return err
	}
	log.Info("Reply generator ready", "source", cfg.Generation.Source, "provider", cfg.Generation.Provider, "model", cfg.Generation.Model)

	var (
		journal bot.Journal
		sched   *bot.Scheduler
	)
	if cfg.Database.Enabled {
		db, err := database.NewDB(cfg.Database.Path)
		if err != nil {
			log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
			return err
		}
		defer database.CloseDB(db)

		store := database.NewStore(db, log)
		journal = store

		taskMap := tasks.RegisterAllTasks(tasks.TaskDeps{Logger: log, Store: store, Config: cfg})
		sched, err = bot.NewScheduler(log, &cfg.Scheduler, taskMap)
		if err != nil {
			log.Error("Failed to create scheduler", "error", err)
			return err
		}
	} else {
		log.Info("Reply journal disabled")
	}

	state := session.New(cfg.Loop.SkipSystemMessages)
	loop := bot.NewLoop(log, cfg, platform, gen, state, journal)
	app := bot.NewBot(log, loop, sched)

	log.Info("Starting bot...")
	if err := app.Run(ctx); err != nil {
		return err
	}
	log.Info("Bot stopped gracefully.")
	return nil
}
