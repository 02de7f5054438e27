package contract

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/Dhyanesh27/evotrack/schema"
)

// Default values for configuration.
const (
	DefaultBatchSize   = 200
	MaxBatchSize       = 5000
	DefaultResultLimit = 25
	MaxResultLimit     = 1000
	DefaultChurnWindow = 4
	DefaultRetryAfter  = 30 * time.Second
)

// DefaultWorkers is the default number of repositories extracted in parallel.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// DurationPrecision is the rounding unit for user-facing durations.
var DurationPrecision = time.Millisecond

// DefaultNoreplyDomains are email domains whose local part encodes a
// forge username (optionally prefixed with a numeric id and "+").
var DefaultNoreplyDomains = []string{"users.noreply.github.com"}

// IdentityPolicy configures the author-merge heuristic. The exact merge
// predicate is deliberately a policy object: aliases merge on equal
// normalized email, or on equal normalized display name when the noreply
// heuristic links the two emails.
type IdentityPolicy struct {
	NoreplyDomains []string
	NameHeuristic  bool // Enables the display-name + noreply-username rule
}

// DefaultIdentityPolicy returns the policy used unless configured otherwise.
func DefaultIdentityPolicy() IdentityPolicy {
	return IdentityPolicy{
		NoreplyDomains: DefaultNoreplyDomains,
		NameHeuristic:  true,
	}
}

// ConfigRawInput holds the raw, unvalidated configuration from all sources
// (file, env, flags). Viper unmarshals into this struct.
type ConfigRawInput struct {
	Backend        string   `mapstructure:"backend"`
	DBConnect      string   `mapstructure:"db-connect"`
	BatchSize      int      `mapstructure:"batch-size"`
	Workers        int      `mapstructure:"workers"`
	Limit          int      `mapstructure:"limit"`
	Period         string   `mapstructure:"period"`
	Window         int      `mapstructure:"window"`
	Since          string   `mapstructure:"since"`
	Until          string   `mapstructure:"until"`
	Author         string   `mapstructure:"author"`
	Output         string   `mapstructure:"output"`
	OutputFile     string   `mapstructure:"output-file"`
	Width          int      `mapstructure:"width"`
	Precision      int      `mapstructure:"precision"`
	NoreplyDomains []string `mapstructure:"noreply-domains"`
	NameHeuristic  bool     `mapstructure:"name-heuristic"`
}

// Config holds the validated runtime configuration.
type Config struct {
	Backend    schema.DatabaseBackend
	DBConnect  string
	BatchSize  int
	Workers    int
	Limit      int
	Period     schema.Period
	Window     int
	Since      time.Time
	Until      time.Time
	Author     string
	Output     schema.OutputFormat
	OutputFile string
	Width      int
	Precision  int
	Identity   IdentityPolicy
	RetryAfter time.Duration
}

// Clone returns a shallow copy safe for per-request overrides.
func (c *Config) Clone() *Config {
	dup := *c
	return &dup
}

// Filter converts the query-scoped fields into an AnalyticsFilter.
func (c *Config) Filter() schema.AnalyticsFilter {
	return schema.AnalyticsFilter{
		Since:    c.Since,
		Until:    c.Until,
		AuthorID: c.Author,
		Period:   c.Period,
		Window:   c.Window,
	}
}

// Validate converts the raw input into a final Config, applying defaults
// and rejecting out-of-range values.
func Validate(input *ConfigRawInput) (*Config, error) {
	cfg := &Config{
		DBConnect:  input.DBConnect,
		Author:     input.Author,
		OutputFile: input.OutputFile,
		Width:      input.Width,
		Precision:  input.Precision,
		RetryAfter: DefaultRetryAfter,
	}

	backend := schema.DatabaseBackend(strings.ToLower(strings.TrimSpace(input.Backend)))
	switch backend {
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		cfg.Backend = backend
	case "":
		cfg.Backend = schema.SQLiteBackend
	default:
		return nil, fmt.Errorf("unsupported backend %q: must be sqlite, mysql or postgresql", input.Backend)
	}

	cfg.BatchSize = input.BatchSize
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize > MaxBatchSize {
		return nil, fmt.Errorf("batch size %d exceeds maximum %d", cfg.BatchSize, MaxBatchSize)
	}

	cfg.Workers = input.Workers
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	cfg.Limit = input.Limit
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultResultLimit
	}
	if cfg.Limit > MaxResultLimit {
		return nil, fmt.Errorf("limit %d exceeds maximum %d", cfg.Limit, MaxResultLimit)
	}

	period := schema.Period(strings.ToLower(strings.TrimSpace(input.Period)))
	if period == "" {
		period = schema.PeriodDay
	}
	if !schema.ValidPeriod(period) {
		return nil, fmt.Errorf("unsupported period %q: must be day, week or month", input.Period)
	}
	cfg.Period = period

	cfg.Window = input.Window
	if cfg.Window <= 0 {
		cfg.Window = DefaultChurnWindow
	}

	var err error
	if cfg.Since, err = parseTimeInput(input.Since); err != nil {
		return nil, fmt.Errorf("invalid --since: %w", err)
	}
	if cfg.Until, err = parseTimeInput(input.Until); err != nil {
		return nil, fmt.Errorf("invalid --until: %w", err)
	}
	if !cfg.Since.IsZero() && !cfg.Until.IsZero() && cfg.Until.Before(cfg.Since) {
		return nil, fmt.Errorf("--until (%s) is before --since (%s)", input.Until, input.Since)
	}

	output := schema.OutputFormat(strings.ToLower(strings.TrimSpace(input.Output)))
	switch output {
	case schema.TextOut, schema.JSONOut, schema.CSVOut, schema.ParquetOut:
		cfg.Output = output
	case "":
		cfg.Output = schema.TextOut
	default:
		return nil, fmt.Errorf("unsupported output %q: must be text, json, csv or parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return nil, fmt.Errorf("parquet output requires --output-file")
	}

	cfg.Identity = DefaultIdentityPolicy()
	if len(input.NoreplyDomains) > 0 {
		cfg.Identity.NoreplyDomains = input.NoreplyDomains
	}
	cfg.Identity.NameHeuristic = input.NameHeuristic

	return cfg, nil
}

// parseTimeInput accepts RFC3339 or a plain date.
func parseTimeInput(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected RFC3339 or YYYY-MM-DD, got %q", value)
	}
	return t.UTC(), nil
}
