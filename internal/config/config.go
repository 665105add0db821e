package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// ErrMissingCredentials is returned when the listings API app id or key is not set
var ErrMissingCredentials = errors.New("ADZUNA_APP_ID and ADZUNA_APP_KEY must be set in the environment or .env file")

const (
	DefaultBaseURL          = "https://api.adzuna.com/v1/api/jobs"
	DefaultCountry          = "gb"
	DefaultWhat             = "data analyst"
	DefaultWhere            = "Birmingham"
	DefaultResultsPerPage   = 50
	DefaultMaxResults       = 2000
	DefaultDelay            = time.Second
	DefaultTimeout          = 15 * time.Second
	DefaultRawCSV           = "uk_data_analyst_jobs.csv"
	DefaultOutputDir        = "data/cleaned"
	DefaultMinSalarySamples = 5
)

// Config holds everything a collection or analysis run needs. It is built
// once at startup and handed to each component by value.
type Config struct {
	Credentials Credentials
	Search      Search
	Paths       Paths
	Analysis    Analysis
}

// Credentials identifies the application to the listings API
type Credentials struct {
	AppID  string
	AppKey string
}

// Search describes which listings to fetch and how politely
type Search struct {
	BaseURL        string
	Country        string
	What           string
	Where          string
	ResultsPerPage int
	MaxResults     int
	Delay          time.Duration
	Timeout        time.Duration
}

// Paths locates the files read and written by the pipeline
type Paths struct {
	RawCSV     string
	OutputDir  string
	SkillsFile string // empty selects the built-in dictionary
	SQLite     string // empty disables the SQLite mirror
}

// Analysis holds aggregation thresholds and the input source
type Analysis struct {
	MinSalarySamples int
	// FromSQLite reads the jobs table of Paths.SQLite instead of Paths.RawCSV
	FromSQLite bool
}

// EnrichedCSV is the path of the jobs-with-skills dataset
func (p Paths) EnrichedCSV() string {
	return filepath.Join(p.OutputDir, "jobs_with_skills.csv")
}

// SkillCountsCSV is the path of the skill frequency summary
func (p Paths) SkillCountsCSV() string {
	return filepath.Join(p.OutputDir, "skill_counts.csv")
}

// SkillSalaryCSV is the path of the skill salary summary
func (p Paths) SkillSalaryCSV() string {
	return filepath.Join(p.OutputDir, "skill_salary_stats.csv")
}

// Load reads configuration from the environment, after loading envFile if it exists
func Load(envFile string) (cfg Config, err error) {
	if envFile != "" {
		err = godotenv.Load(envFile)
		if err != nil && !os.IsNotExist(err) {
			err = errors.Wrapf(err, "failed to load env file: %s", envFile)
			return cfg, err
		}
		err = nil
	}

	cfg = Config{
		Credentials: Credentials{
			AppID:  strings.TrimSpace(os.Getenv("ADZUNA_APP_ID")),
			AppKey: strings.TrimSpace(os.Getenv("ADZUNA_APP_KEY")),
		},
		Search: Search{
			BaseURL:        getEnv("ADZUNA_BASE_URL", DefaultBaseURL),
			Country:        getEnv("ADZUNA_COUNTRY", DefaultCountry),
			What:           getEnv("ADZUNA_WHAT", DefaultWhat),
			Where:          getEnv("ADZUNA_WHERE", DefaultWhere),
			ResultsPerPage: getEnvAsInt("ADZUNA_RESULTS_PER_PAGE", DefaultResultsPerPage),
			MaxResults:     getEnvAsInt("ADZUNA_MAX_RESULTS", DefaultMaxResults),
			Delay:          getEnvAsDuration("ADZUNA_DELAY", DefaultDelay),
			Timeout:        getEnvAsDuration("ADZUNA_TIMEOUT", DefaultTimeout),
		},
		Paths: Paths{
			RawCSV:     getEnv("SKILLSLEUTH_RAW_CSV", DefaultRawCSV),
			OutputDir:  getEnv("SKILLSLEUTH_OUTPUT_DIR", DefaultOutputDir),
			SkillsFile: getEnv("SKILLSLEUTH_SKILLS_FILE", ""),
			SQLite:     getEnv("SKILLSLEUTH_SQLITE", ""),
		},
		Analysis: Analysis{
			MinSalarySamples: getEnvAsInt("SKILLSLEUTH_MIN_SALARY_SAMPLES", DefaultMinSalarySamples),
		},
	}

	return cfg, err
}

// RequireCredentials fails with ErrMissingCredentials unless both values are set.
// It is checked once at startup, before any request is built.
func (c Config) RequireCredentials() (err error) {
	if c.Credentials.AppID == "" || c.Credentials.AppKey == "" {
		err = ErrMissingCredentials
		return err
	}
	return err
}

// Validate checks the search settings used by the collection loop
func (s Search) Validate() (err error) {
	if s.BaseURL == "" {
		err = errors.New("base URL is required")
		return err
	}
	if s.Country == "" {
		err = errors.New("country code is required")
		return err
	}
	if s.ResultsPerPage <= 0 {
		err = errors.Errorf("results per page must be positive, got %d", s.ResultsPerPage)
		return err
	}
	if s.MaxResults <= 0 {
		err = errors.Errorf("max results must be positive, got %d", s.MaxResults)
		return err
	}
	if s.Delay < 0 {
		err = errors.Errorf("delay must not be negative, got %s", s.Delay)
		return err
	}
	return err
}

// getEnv returns the environment value for key, or defaultValue when unset
func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration accepts Go durations ("1500ms") or plain seconds ("1.5")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := strings.TrimSpace(os.Getenv(key))
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	secs, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return time.Duration(secs * float64(time.Second))
}
