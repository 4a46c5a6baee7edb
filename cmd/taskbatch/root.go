package main

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kubev2v/taskbatch/internal/config"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
)

const envPrefix = "TASKBATCH"

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"tasks":         "batch.tasks",
	"workers":       "batch.workers",
	"policy":        "collector.policy",
	"deadline":      "collector.deadline",
	"poll-interval": "collector.poll-interval",
	"poll-backoff":  "collector.poll-backoff",
	"notify":        "collector.notify",
	"min-duration":  "work.min-duration",
	"max-duration":  "work.max-duration",
	"fault-rate":    "work.fault-rate",
	"export-db":     "export.db",
	"export-xlsx":   "export.xlsx",
	"log-level":     "log-level",
	"log-format":    "log-format",
	"no-color":      "no-color",
}

// envOnlyKeys have no flag but can be set from the environment or the config file.
var envOnlyKeys = []string{"work.step"}

func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "taskbatch",
		Short:         "Fan a batch of tasks out to a worker pool and reconcile their results",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "path to a configuration file (yaml, json or toml)")
	flags.String("log-level", "info", "log level: debug, info, warn, error")
	flags.String("log-format", config.LogFormatConsole, "log format: console or json")
	flags.Bool("no-color", false, "disable colored output")

	root.AddCommand(newRunCmd(v))
	root.AddCommand(newInspectCmd(v))
	root.AddCommand(newVersionCmd())

	return root
}

// loadConfig merges, by increasing priority, the defaults, the config file,
// TASKBATCH_* environment variables and the command line flags.
func loadConfig(v *viper.Viper, flags *pflag.FlagSet) (*config.Configuration, error) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, err
		}
	}
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, srvErrors.NewInvalidConfigurationError("config", err.Error())
		}
	}

	cfg, err := config.NewConfiguration()
	if err != nil {
		return nil, err
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, srvErrors.NewInvalidConfigurationError("config", err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogger installs the global logger. Logs go to stderr so that the
// report on stdout stays clean.
func setupLogger(cfg *config.Configuration) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, srvErrors.NewInvalidConfigurationError("log-level", err.Error())
	}

	var zc zap.Config
	if cfg.LogFormat == config.LogFormatJSON {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
		zc.DisableStacktrace = true
		if !cfg.NoColor {
			zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(logger)
	return logger, nil
}
