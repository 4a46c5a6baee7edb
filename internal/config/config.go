package config

import (
	"time"

	"github.com/creasty/defaults"

	"github.com/kubev2v/taskbatch/internal/models"
	srvErrors "github.com/kubev2v/taskbatch/pkg/errors"
)

const (
	PollBackoffConstant    = "constant"
	PollBackoffExponential = "exponential"

	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

type Configuration struct {
	Batch     Batch     `mapstructure:"batch"`
	Collector Collector `mapstructure:"collector"`
	Work      Work      `mapstructure:"work"`
	Export    Export    `mapstructure:"export"`
	LogFormat string    `mapstructure:"log-format" default:"console"`
	LogLevel  string    `mapstructure:"log-level" default:"info"`
	NoColor   bool      `mapstructure:"no-color"`
}

type Batch struct {
	Tasks int `mapstructure:"tasks" default:"10"`
	// Workers is the pool size. Zero means one worker per task.
	Workers int `mapstructure:"workers"`
}

type Collector struct {
	Policy       string        `mapstructure:"policy" default:"exhaustive"`
	Deadline     time.Duration `mapstructure:"deadline" default:"1s"`
	PollInterval time.Duration `mapstructure:"poll-interval" default:"5ms"`
	PollBackoff  string        `mapstructure:"poll-backoff" default:"constant"`
	Notify       bool          `mapstructure:"notify"`
}

type Work struct {
	MinDuration time.Duration `mapstructure:"min-duration" default:"50ms"`
	MaxDuration time.Duration `mapstructure:"max-duration" default:"200ms"`
	Step        time.Duration `mapstructure:"step" default:"10ms"`
	FaultRate   float64       `mapstructure:"fault-rate"`
}

type Export struct {
	DBPath   string `mapstructure:"db"`
	XLSXPath string `mapstructure:"xlsx"`
}

// NewConfiguration returns a configuration with every default applied.
func NewConfiguration() (*Configuration, error) {
	cfg := &Configuration{}
	if err := defaults.Set(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Configuration) Validate() error {
	if c.Batch.Tasks < 0 {
		return srvErrors.NewInvalidConfigurationError("batch.tasks", "must not be negative")
	}
	if c.Batch.Workers < 0 {
		return srvErrors.NewInvalidConfigurationError("batch.workers", "must not be negative")
	}

	policy, ok := models.ParsePolicyKind(c.Collector.Policy)
	if !ok {
		return srvErrors.NewInvalidConfigurationError("collector.policy", "must be one of exhaustive, deadline, stream")
	}
	if policy == models.PolicyDeadline && c.Collector.Deadline <= 0 {
		return srvErrors.NewInvalidConfigurationError("collector.deadline", "must be positive")
	}
	if c.Collector.PollInterval <= 0 {
		return srvErrors.NewInvalidConfigurationError("collector.poll-interval", "must be positive")
	}
	switch c.Collector.PollBackoff {
	case PollBackoffConstant, PollBackoffExponential:
	default:
		return srvErrors.NewInvalidConfigurationError("collector.poll-backoff", "must be constant or exponential")
	}

	if c.Work.MinDuration < 0 || c.Work.MaxDuration < c.Work.MinDuration {
		return srvErrors.NewInvalidConfigurationError("work", "durations must satisfy 0 <= min <= max")
	}
	if c.Work.FaultRate < 0 || c.Work.FaultRate > 1 {
		return srvErrors.NewInvalidConfigurationError("work.fault-rate", "must be within [0, 1]")
	}

	switch c.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return srvErrors.NewInvalidConfigurationError("log-format", "must be console or json")
	}
	return nil
}

// PolicyKind returns the validated collection policy.
func (c *Configuration) PolicyKind() models.PolicyKind {
	p, _ := models.ParsePolicyKind(c.Collector.Policy)
	return p
}

// DebugMap returns the configuration as a flat map suitable for structured logging.
func (c *Configuration) DebugMap() map[string]any {
	return map[string]any{
		"batch.tasks":             c.Batch.Tasks,
		"batch.workers":           c.Batch.Workers,
		"collector.policy":        c.Collector.Policy,
		"collector.deadline":      c.Collector.Deadline.String(),
		"collector.poll-interval": c.Collector.PollInterval.String(),
		"collector.poll-backoff":  c.Collector.PollBackoff,
		"collector.notify":        c.Collector.Notify,
		"work.min-duration":       c.Work.MinDuration.String(),
		"work.max-duration":       c.Work.MaxDuration.String(),
		"work.step":               c.Work.Step.String(),
		"work.fault-rate":         c.Work.FaultRate,
		"export.db":               c.Export.DBPath,
		"export.xlsx":             c.Export.XLSXPath,
		"log-format":              c.LogFormat,
		"log-level":               c.LogLevel,
	}
}
