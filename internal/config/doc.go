// Package config defines the configuration structure for taskbatch.
//
// Configuration is organized into logical sections (Batch, Collector, Work, Export).
// Defaults are declared with `default` struct tags and applied by creasty/defaults;
// `mapstructure` tags let viper fill the structure from flags, TASKBATCH_* environment
// variables and an optional config file.
//
// # Configuration Structure
//
//	Configuration
//	├── Batch          - Batch size and worker pool size
//	├── Collector      - Result collection policy
//	├── Work           - Simulated workload
//	├── Export         - Report artifacts
//	├── LogFormat      - Logging format
//	├── LogLevel       - Logging verbosity
//	└── NoColor        - Disable colored report output
//
// # Batch Configuration
//
//	┌──────────┬─────────┬────────────────────────────────────────────┐
//	│ Field    │ Default │ Description                                │
//	├──────────┼─────────┼────────────────────────────────────────────┤
//	│ Tasks    │ 10      │ Number of tasks N (ids 0..N-1)             │
//	│ Workers  │ 0       │ Pool size M, 0 means one worker per task   │
//	└──────────┴─────────┴────────────────────────────────────────────┘
//
// # Collector Configuration
//
//	┌──────────────┬──────────────┬──────────────────────────────────────────────┐
//	│ Field        │ Default      │ Description                                  │
//	├──────────────┼──────────────┼──────────────────────────────────────────────┤
//	│ Policy       │ "exhaustive" │ exhaustive, deadline or stream               │
//	│ Deadline     │ 1s           │ Collection deadline (deadline policy only)   │
//	│ PollInterval │ 5ms          │ Longest wait between empty polls             │
//	│ PollBackoff  │ "constant"   │ constant or exponential (capped at interval) │
//	│ Notify       │ false        │ Wait for arrivals instead of polling         │
//	└──────────────┴──────────────┴──────────────────────────────────────────────┘
//
// # Work Configuration
//
//	┌─────────────┬─────────┬───────────────────────────────────────────────┐
//	│ Field       │ Default │ Description                                   │
//	├─────────────┼─────────┼───────────────────────────────────────────────┤
//	│ MinDuration │ 50ms    │ Lower bound of the simulated work duration    │
//	│ MaxDuration │ 200ms   │ Upper bound of the simulated work duration    │
//	│ Step        │ 10ms    │ Cancellation check granularity                │
//	│ FaultRate   │ 0       │ Fraction of tasks that fail, within [0, 1]    │
//	└─────────────┴─────────┴───────────────────────────────────────────────┘
//
// # Export Configuration
//
//	┌──────────┬─────────┬────────────────────────────────────────────┐
//	│ Field    │ Default │ Description                                │
//	├──────────┼─────────┼────────────────────────────────────────────┤
//	│ DBPath   │ ""      │ DuckDB file receiving the batch outcome    │
//	│ XLSXPath │ ""      │ Excel workbook receiving the batch outcome │
//	└──────────┴─────────┴────────────────────────────────────────────┘
//
// # Usage Example
//
//	cfg, err := config.NewConfiguration()
//	if err != nil {
//	    return err
//	}
//	if err := viper.Unmarshal(cfg); err != nil {
//	    return err
//	}
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// # Debug Logging
//
// DebugMap returns a flat map for structured logging:
//
//	zap.S().Infow("configuration loaded", "config", cfg.DebugMap())
package config
