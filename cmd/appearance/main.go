package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"git.sr.ht/~spc/go-log"
	"github.com/urfave/cli/v2"

	"github.com/gitui/appearance/internal/conf"
)

// Version is set at build time.
var Version = "dev"

const (
	cliConfig         = "config"
	cliLogLevel       = "log-level"
	cliMetricsFile    = "metrics-textfile"
	cliNoWait         = "no-wait"
	cliDictionaryDir  = "dictionary-dir"
	cliSettingsPath   = "settings-path"
	defaultConfigPath = "/etc/appearance/config.toml"
)

func main() {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Version = Version
	app.Usage = "view and edit appearance settings"
	app.EnableBashCompletion = true

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  cliConfig,
			Usage: "read configuration from `FILE` and its .d drop-in directory",
			Value: defaultConfigPath,
		},
		&cli.StringFlag{
			Name:    cliLogLevel,
			Usage:   "set log level to `LEVEL` (error, warn, info, debug)",
			EnvVars: []string{"APPEARANCE_LOG_LEVEL"},
		},
		&cli.StringFlag{
			Name:  cliSettingsPath,
			Usage: "override the settings store location with `PATH`",
		},
		&cli.StringFlag{
			Name:  cliDictionaryDir,
			Usage: "override the dictionary directory with `DIR`",
		},
		&cli.StringFlag{
			Name:  cliMetricsFile,
			Usage: "write Prometheus metrics to `FILE` on exit",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:   "show",
			Usage:  "Print every appearance option",
			Action: showAction,
		},
		{
			Name:      "set",
			Usage:     "Change appearance options",
			ArgsUsage: "KEY=VALUE...",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  cliNoWait,
					Usage: "do not wait for the avatar cache to be cleared",
				},
			},
			Action: setAction,
		},
		{
			Name:   "dictionaries",
			Usage:  "List installed spell-check dictionaries",
			Action: dictionariesAction,
		},
		{
			Name:   "translations",
			Usage:  "List installed user interface translations",
			Action: translationsAction,
		},
		{
			Name:   "clear-cache",
			Usage:  "Delete all cached avatar images",
			Action: clearCacheAction,
		},
		{
			Name:   "prune-cache",
			Usage:  "Delete cached avatar images older than the configured lifetime",
			Action: pruneCacheAction,
		},
		{
			Name:      "import-ini",
			Usage:     "Import the [appearance] section of a legacy INI settings file",
			ArgsUsage: "FILE",
			Action:    importINIAction,
		},
		{
			Name:   "watch",
			Usage:  "Follow changes to the dictionary directory",
			Action: watchAction,
		},
	}

	app.Before = beforeAction

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

// beforeAction loads the configuration and sets up logging for every
// command.
func beforeAction(c *cli.Context) error {
	cfg := conf.Configuration
	if path := c.String(cliConfig); path != defaultConfigPath {
		sources := &conf.ConfigSource{Path: path, DropInDir: path + ".d"}
		var err error
		if cfg, err = sources.Read(); err != nil {
			return cli.Exit(fmt.Errorf("cannot read configuration: %w", err), 1)
		}
	}
	if v := c.String(cliSettingsPath); v != "" {
		cfg.SettingsPath = v
	}
	if v := c.String(cliDictionaryDir); v != "" {
		cfg.DictionaryDir = v
	}
	configuration = cfg

	level := slogToLogLevel(cfg.LogLevel)
	if v := c.String(cliLogLevel); v != "" {
		parsed, err := log.ParseLevel(v)
		if err != nil {
			return cli.Exit(fmt.Errorf("invalid log level %q: %w", v, err), 1)
		}
		level = parsed
		cfg.LogLevel = logToSlogLevel(parsed)
		configuration = cfg
	}
	log.SetLevel(level)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))

	log.Debugf("configuration: %+v", cfg)
	return nil
}

// configuration is the effective configuration after command line
// overrides.
var configuration conf.Config

func slogToLogLevel(level slog.Level) log.Level {
	switch {
	case level <= slog.LevelDebug:
		return log.LevelDebug
	case level <= slog.LevelInfo:
		return log.LevelInfo
	case level <= slog.LevelWarn:
		return log.LevelWarn
	default:
		return log.LevelError
	}
}

func logToSlogLevel(level log.Level) slog.Level {
	switch level {
	case log.LevelError:
		return slog.LevelError
	case log.LevelWarn:
		return slog.LevelWarn
	case log.LevelInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
