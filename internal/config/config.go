package config

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/pv/singlebundle/internal/combiner"
)

type StorageType string

const (
	StorageMemory StorageType = "memory"
	StorageSQLite StorageType = "sqlite"
)

const (
	envDir    = "SINGLEBUNDLE_DIR"
	envOutput = "SINGLEBUNDLE_OUTPUT"
	envConfig = "SINGLEBUNDLE_CONFIG"
)

// stringSlice реализует flag.Value для множественных строковых флагов
type stringSlice []string

func (s *stringSlice) String() string {
	return strings.Join(*s, ",")
}

func (s *stringSlice) Set(value string) error {
	*s = append(*s, value)
	return nil
}

type Config struct {
	Dir             string // выходная директория сборщика
	ConfigFile      string // путь к YAML конфигу
	OutputName      string // пусто = из YAML или bundle.js
	SvelteKit       bool
	RemoveOriginals bool
	StylePatterns   []string
	ScriptPatterns  []string

	History      StorageType
	SQLitePath   string
	HistoryLimit     int
	ShowHistory      bool
	HistoryRetention time.Duration // 0 = хранить всю историю

	Watch          bool
	WatchInterval  time.Duration
	LiveReloadAddr string // пусто = live reload отключён

	LogFormat string
	LogLevel  string

	// File загруженный YAML (nil если не указан)
	File *ConfigFile

	// флаги, явно заданные в командной строке
	set map[string]bool
}

// Parse разбирает os.Args, при ошибке завершает процесс как flag.ExitOnError
func Parse() *Config {
	cfg, err := ParseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return cfg
}

// ParseArgs разбирает флаги, .env и YAML конфиг.
// Приоритет: флаги > переменные окружения > YAML > значения по умолчанию.
func ParseArgs(args []string) (*Config, error) {
	// .env не обязателен
	_ = godotenv.Load()

	cfg := &Config{set: make(map[string]bool)}
	fs := flag.NewFlagSet("singlebundle", flag.ContinueOnError)

	var stylePatterns, scriptPatterns stringSlice
	var storageStr string

	fs.StringVar(&cfg.Dir, "dir", "./dist", "Bundler output directory")
	fs.StringVar(&cfg.ConfigFile, "config", "", "YAML configuration file")
	fs.StringVar(&cfg.OutputName, "output", "", "Combined artifact name (default bundle.js)")
	fs.BoolVar(&cfg.SvelteKit, "sveltekit", false, "Rewrite SvelteKit start call for the combined bundle")
	fs.BoolVar(&cfg.RemoveOriginals, "remove-originals", false, "Delete combined originals from the output directory")
	fs.Var(&stylePatterns, "style-pattern", "Style asset pattern, /regex/flags or substring (can be specified multiple times)")
	fs.Var(&scriptPatterns, "script-pattern", "Script asset pattern, /regex/flags or substring (can be specified multiple times)")
	fs.StringVar(&storageStr, "history", "memory", "Build history storage: memory or sqlite")
	fs.StringVar(&cfg.SQLitePath, "sqlite-path", "./singlebundle.db", "SQLite database path")
	fs.IntVar(&cfg.HistoryLimit, "history-limit", 10, "Reports printed with -history-show")
	fs.BoolVar(&cfg.ShowHistory, "history-show", false, "Print recent build reports for -output and exit (requires -history sqlite)")
	fs.DurationVar(&cfg.HistoryRetention, "history-retention", 7*24*time.Hour, "Drop build reports older than this (0 = keep all)")
	fs.BoolVar(&cfg.Watch, "watch", false, "Re-combine whenever the output directory changes")
	fs.DurationVar(&cfg.WatchInterval, "watch-interval", 500*time.Millisecond, "Output directory polling interval")
	fs.StringVar(&cfg.LiveReloadAddr, "livereload-addr", "", "Live reload websocket address, e.g. :35729, used with -watch (empty = disabled)")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 0 {
		return nil, fmt.Errorf("unexpected arguments: %q", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })

	cfg.StylePatterns = stylePatterns
	cfg.ScriptPatterns = scriptPatterns

	cfg.History = StorageType(storageStr)
	if cfg.History != StorageMemory && cfg.History != StorageSQLite {
		cfg.History = StorageMemory
	}

	cfg.applyEnv()

	if cfg.ConfigFile != "" {
		file, err := LoadFromYAML(cfg.ConfigFile)
		if err != nil {
			return nil, err
		}
		cfg.File = file
	}

	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = 10
	}
	if cfg.WatchInterval <= 0 {
		cfg.WatchInterval = 500 * time.Millisecond
	}
	if cfg.HistoryRetention < 0 {
		cfg.HistoryRetention = 0
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate отклоняет сочетания флагов, которые не имеют эффекта
func (c *Config) validate() error {
	if c.ShowHistory && c.History != StorageSQLite {
		// история в памяти пуста в новом процессе
		return errors.New("-history-show requires -history sqlite")
	}
	if c.LiveReloadAddr != "" && !c.Watch {
		return errors.New("-livereload-addr requires -watch")
	}
	return nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(envDir)); v != "" && !c.set["dir"] {
		c.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(envOutput)); v != "" && !c.set["output"] {
		c.OutputName = v
	}
	if v := strings.TrimSpace(os.Getenv(envConfig)); v != "" && !c.set["config"] {
		c.ConfigFile = v
	}
}

// CombinerOptions собирает частичные настройки комбайнера: YAML, поверх него флаги
func (c *Config) CombinerOptions() (combiner.Options, error) {
	var opts combiner.Options
	if c.File != nil {
		var err error
		opts, err = c.File.Options()
		if err != nil {
			return combiner.Options{}, err
		}
	}

	if c.OutputName != "" {
		name := c.OutputName
		opts.OutputName = &name
	}
	if c.set["sveltekit"] {
		enabled := c.SvelteKit
		if opts.Integrations == nil {
			opts.Integrations = &combiner.IntegrationOptions{}
		}
		opts.Integrations.SvelteKit = &enabled
	}

	if len(c.StylePatterns) > 0 {
		patterns, err := combiner.ParsePatterns(c.StylePatterns)
		if err != nil {
			return combiner.Options{}, fmt.Errorf("style patterns: %w", err)
		}
		if opts.Style == nil {
			opts.Style = &combiner.ClassOptions{}
		}
		opts.Style.Patterns = patterns
	}
	if len(c.ScriptPatterns) > 0 {
		patterns, err := combiner.ParsePatterns(c.ScriptPatterns)
		if err != nil {
			return combiner.Options{}, fmt.Errorf("script patterns: %w", err)
		}
		if opts.Script == nil {
			opts.Script = &combiner.ClassOptions{}
		}
		opts.Script.Patterns = patterns
	}

	return opts, nil
}

// ProjectID короткий идентификатор проекта по абсолютному пути директории
func (c *Config) ProjectID() string {
	dir := c.Dir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return generateProjectID(dir)
}

// generateProjectID генерирует короткий ID на основе пути
func generateProjectID(path string) string {
	hash := sha256.Sum256([]byte(path))
	return hex.EncodeToString(hash[:4]) // первые 8 символов hex
}

// ParseLogLevel converts string log level to slog.Level
func ParseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
