package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/tiggercwh/go-dejavu/analysis"
	"github.com/tiggercwh/go-dejavu/sequence"
)

type Config struct {
	Addr         string
	Debounce     time.Duration
	ExitDelay    time.Duration
	SessionTTL   time.Duration
	JanitorEvery time.Duration
	// Mode is the mode every new game starts in.
	Mode analysis.Mode
}

func defaultConfig() Config {
	return Config{
		Addr:         ":8080",
		Debounce:     sequence.DefaultDebounce,
		ExitDelay:    sequence.DefaultExitDelay,
		SessionTTL:   30 * time.Minute,
		JanitorEvery: time.Minute,
		Mode:         analysis.Survivor,
	}
}

// loadEnvFile reads a .env file into the process environment. A missing file
// is not an error; the server runs on flags and real environment alone.
func loadEnvFile(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Printf("no env file loaded from %s: %v", path, err)
		return
	}
	log.Printf("loaded environment from %s", path)
}

// LoadConfig builds the server config. Environment variables set the
// defaults and command-line flags override them.
func LoadConfig(args []string) (Config, error) {
	cfg := defaultConfig()

	if v := os.Getenv("DEJAVU_ADDR"); v != "" {
		cfg.Addr = v
	}
	var err error
	if cfg.Debounce, err = envMillis("DEJAVU_DEBOUNCE_MS", cfg.Debounce); err != nil {
		return Config{}, err
	}
	if cfg.ExitDelay, err = envMillis("DEJAVU_EXIT_MS", cfg.ExitDelay); err != nil {
		return Config{}, err
	}
	if v := os.Getenv("DEJAVU_SESSION_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("DEJAVU_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}

	if v := os.Getenv("DEJAVU_MODE"); v != "" {
		if err := cfg.Mode.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("DEJAVU_MODE: %w", err)
		}
	}

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "Address to listen on")
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "Delay between a board change and its analysis")
	fs.DurationVar(&cfg.ExitDelay, "exit-delay", cfg.ExitDelay, "Length of the endgame exit animation")
	fs.DurationVar(&cfg.SessionTTL, "session-ttl", cfg.SessionTTL, "Idle time after which a game is dropped")
	fs.TextVar(&cfg.Mode, "mode", cfg.Mode, "Mode new games start in (survivor or killer)")
	if err := fs.Parse(args); err != nil {
		return Config{}, fmt.Errorf("parse flags: %w", err)
	}

	if cfg.Debounce < 0 || cfg.ExitDelay < 0 {
		return Config{}, fmt.Errorf("debounce and exit delay must not be negative")
	}
	if cfg.SessionTTL <= 0 {
		return Config{}, fmt.Errorf("session ttl must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.JanitorEvery > cfg.SessionTTL {
		cfg.JanitorEvery = cfg.SessionTTL
	}
	return cfg, nil
}

func envMillis(name string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(name)
	if v == "" {
		return fallback, nil
	}
	ms, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
