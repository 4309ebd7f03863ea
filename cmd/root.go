package cmd

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrVersionRequested is returned by ParseFlags after -version printed the
// version.
var ErrVersionRequested = errors.New("version requested")

// BackendURLEnv overrides backend.base_url from the config file.
const BackendURLEnv = "HOTELDESK_BACKEND_URL"

// ParseFlags parses command-line flags and returns configuration.
func ParseFlags(version string) (*Config, error) {
	// Load .env files first so env-based defaults work with existing flag parsing.
	loadDotEnv(".env")
	loadDotEnv(".env.local")

	return parseArgs(os.Args[1:], version, os.Stdout, shouldRunOnboarding, runOnboarding)
}

type onboardFunc func(defaults *Config) (*Config, error)

func parseArgs(args []string, version string, out io.Writer, interactive func() bool, onboard onboardFunc) (*Config, error) {
	fs := flag.NewFlagSet("hoteldesk", flag.ContinueOnError)
	fs.SetOutput(out)

	var (
		configPath  string
		dbPath      string
		backendURL  string
		logLevel    string
		showVersion bool
	)
	fs.StringVar(&configPath, "config", "", "Path to config file (default: ~/.hoteldesk/config.yaml)")
	fs.StringVar(&dbPath, "db", "", "Path to SQLite database file (overrides db_path)")
	fs.StringVar(&backendURL, "backend", "", "Backend base URL (or set "+BackendURLEnv+")")
	fs.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if showVersion {
		fmt.Fprintf(out, "hoteldesk %s\n", version)
		return nil, ErrVersionRequested
	}

	// Set default config path if not specified
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".hoteldesk", "config.yaml")
	}

	config, found, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	if !found && interactive() {
		onboarded, err := onboard(config)
		switch {
		case errors.Is(err, errOnboardingCanceled):
			// Run with the defaults and ask again next time.
		case err != nil:
			return nil, fmt.Errorf("failed to run onboarding: %w", err)
		default:
			config = onboarded
			if err := config.Save(configPath); err != nil {
				return nil, fmt.Errorf("failed to save config: %w", err)
			}
		}
	}

	if v := strings.TrimSpace(os.Getenv(BackendURLEnv)); v != "" {
		config.Backend.BaseURL = v
	}
	if backendURL != "" {
		config.Backend.BaseURL = backendURL
	}
	if dbPath != "" {
		config.DBPath = dbPath
	}
	if logLevel != "" {
		config.Log.Level = logLevel
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

func loadDotEnv(path string) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}

		value = strings.Trim(value, `"'`)
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, value)
		}
	}
}
