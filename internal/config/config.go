// Package config loads the run configuration from built-in defaults, an
// optional YAML file, a .env file and environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/naka-gawa/pr-leaderboard/internal/domain"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = ".leaderboard.yaml"

const dateLayout = "2006-01-02"

// ErrMissingToken is returned by Validate when no GitHub token was configured.
var ErrMissingToken = errors.New("GITHUB_TOKEN environment variable is not set")

// Config is the complete configuration of a leaderboard run.
type Config struct {
	GitHub   GitHubConfig  `yaml:"github"`
	Scoring  ScoringConfig `yaml:"scoring"`
	Labels   []string      `yaml:"labels" validate:"min=1,dive,required"`
	Window   WindowConfig  `yaml:"window"`
	Delays   DelayConfig   `yaml:"delays"`
	Projects string        `yaml:"projects" validate:"required"`
	Output   string        `yaml:"output" validate:"required"`
	Cutoff   string        `yaml:"cutoff_note"`
}

// GitHubConfig holds the API endpoints and the credential.
type GitHubConfig struct {
	APIEndpoint     string `yaml:"api_endpoint" validate:"omitempty,url"`
	GraphQLEndpoint string `yaml:"graphql_endpoint" validate:"omitempty,url"`
	// Token is never read from the YAML file.
	Token string `yaml:"-"`
	// SecondaryLimitSleep caps one sleep on a secondary rate limit response.
	SecondaryLimitSleep time.Duration `yaml:"secondary_limit_sleep" validate:"gte=0"`
}

// ScoringConfig is the label to points table and the one-time bonus.
type ScoringConfig struct {
	Points      map[string]int `yaml:"points" validate:"min=1,dive,keys,required,endkeys,gte=0"`
	BonusLabel  string         `yaml:"bonus_label"`
	BonusPoints int            `yaml:"bonus_points" validate:"gte=0"`
}

// WindowConfig is the closed-date range, as YYYY-MM-DD.
type WindowConfig struct {
	From string `yaml:"from" validate:"required,datetime=2006-01-02"`
	To   string `yaml:"to" validate:"required,datetime=2006-01-02"`
}

// DelayConfig holds the pauses after each request and after each repository.
type DelayConfig struct {
	Request    time.Duration `yaml:"request" validate:"gte=0"`
	Repository time.Duration `yaml:"repository" validate:"gte=0"`
}

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() *Config {
	return &Config{
		Scoring: ScoringConfig{
			Points: map[string]int{
				"level1": 3,
				"level2": 7,
				"level3": 10,
			},
			BonusLabel:  "postman",
			BonusPoints: 500,
		},
		GitHub: GitHubConfig{
			SecondaryLimitSleep: time.Hour,
		},
		Labels: []string{"gssoc25", "GSSoC'25", "gssoc 25"},
		Window: WindowConfig{
			From: "2025-07-15",
			To:   "2025-10-20",
		},
		Delays: DelayConfig{
			Request:    time.Second,
			Repository: 3 * time.Second,
		},
		Projects: "./projects.json",
		Output:   "leaderboard.json",
	}
}

// Load builds the configuration. configPath may be empty, in which case
// DefaultConfigFile is used if present. A .env file in the working directory
// is loaded before environment overrides are applied.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	path := configPath
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		if err := loadConfigFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	applyEnvOverrides(cfg)

	return cfg, nil
}

func loadConfigFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	// A points table in the file replaces the default one instead of merging into it.
	fileCfg := *cfg
	fileCfg.Scoring.Points = nil
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if fileCfg.Scoring.Points == nil {
		fileCfg.Scoring.Points = cfg.Scoring.Points
	}
	*cfg = fileCfg
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.GitHub.Token = firstEnv("GITHUB_TOKEN", "GIT_TOKEN")
	if v := os.Getenv("GITHUB_API_ENDPOINT"); v != "" {
		cfg.GitHub.APIEndpoint = v
	}
	if v := os.Getenv("GITHUB_GRAPHQL_ENDPOINT"); v != "" {
		cfg.GitHub.GraphQLEndpoint = v
	}
	if v := os.Getenv("LEADERBOARD_PROJECTS"); v != "" {
		cfg.Projects = v
	}
	if v := os.Getenv("LEADERBOARD_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if d, ok := envDuration("LEADERBOARD_REQUEST_DELAY"); ok {
		cfg.Delays.Request = d
	}
	if d, ok := envDuration("LEADERBOARD_REPO_DELAY"); ok {
		cfg.Delays.Repository = d
	}
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

// envDuration parses a duration such as "1500ms"; invalid values are ignored.
func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, false
	}
	return d, true
}

// Validate checks the configuration for values the run cannot work with.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := checkPointLabels(c.Scoring.Points); err != nil {
		return err
	}
	window, err := c.DateWindow()
	if err != nil {
		return err
	}
	if window.To.Before(window.From) {
		return fmt.Errorf("invalid configuration: window end %s is before start %s", c.Window.To, c.Window.From)
	}
	if c.GitHub.Token == "" {
		return ErrMissingToken
	}
	return nil
}

// checkPointLabels rejects labels that normalize to the same key, since only
// one of their values could ever apply.
func checkPointLabels(points map[string]int) error {
	labels := make([]string, 0, len(points))
	for label := range points {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	seen := make(map[string]string, len(labels))
	for _, label := range labels {
		key := domain.NormalizeLabel(label)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("invalid configuration: scoring labels %q and %q both normalize to %q", prev, label, key)
		}
		seen[key] = label
	}
	return nil
}

// DateWindow parses the configured window.
func (c *Config) DateWindow() (domain.DateWindow, error) {
	from, err := time.Parse(dateLayout, c.Window.From)
	if err != nil {
		return domain.DateWindow{}, fmt.Errorf("invalid window start %q: %w", c.Window.From, err)
	}
	to, err := time.Parse(dateLayout, c.Window.To)
	if err != nil {
		return domain.DateWindow{}, fmt.Errorf("invalid window end %q: %w", c.Window.To, err)
	}
	return domain.DateWindow{From: from, To: to}, nil
}

// ScoringPolicy converts the scoring section into a domain policy.
func (c *Config) ScoringPolicy() domain.ScoringPolicy {
	return domain.NewScoringPolicy(c.Scoring.Points, c.Scoring.BonusLabel, c.Scoring.BonusPoints)
}

// CutoffNote returns the configured note, or one derived from the window end.
func (c *Config) CutoffNote() string {
	if c.Cutoff != "" {
		return c.Cutoff
	}
	window, err := c.DateWindow()
	if err != nil {
		return ""
	}
	return window.CutoffNote()
}
