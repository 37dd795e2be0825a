package config

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	ArchiveJSON     = "json"
	ArchivePostgres = "postgres"
)

type Config struct {
	Port         string
	MapSize      int
	StartingGold int    // 0 keeps the rules file value
	RulesFile    string // empty uses the embedded rules
	ArchiveType  string
	ArchiveFile  string
	DatabaseURL  string
	LogLevel     string
	LogDev       bool
}

func Default() Config {
	return Config{
		Port:        "8000",
		MapSize:     40,
		ArchiveType: ArchiveJSON,
		ArchiveFile: "battlelog.json",
		LogLevel:    "info",
	}
}

// Load reads the environment on top of Default. Unparseable values are ignored.
func Load() Config {
	cfg := Default()

	// Koyeb and friends set PORT
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}

	if size := os.Getenv("MAP_SIZE"); size != "" {
		if val, err := strconv.Atoi(size); err == nil && val > 0 {
			cfg.MapSize = val
		}
	}

	if gold := os.Getenv("STARTING_GOLD"); gold != "" {
		if val, err := strconv.Atoi(gold); err == nil && val >= 0 {
			cfg.StartingGold = val
		}
	}

	cfg.RulesFile = os.Getenv("RULES_FILE")

	if typ := strings.ToLower(os.Getenv("ARCHIVE_TYPE")); typ == ArchiveJSON || typ == ArchivePostgres {
		cfg.ArchiveType = typ
	}
	if file := os.Getenv("ARCHIVE_FILE"); file != "" {
		cfg.ArchiveFile = file
	}
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
	if dev := os.Getenv("LOG_DEV"); dev != "" {
		if val, err := strconv.ParseBool(dev); err == nil {
			cfg.LogDev = val
		}
	}

	return cfg
}

// Logger builds the process logger: JSON to stdout in production, console
// output in development.
func (c Config) Logger() (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, err
	}

	encoding := "json"
	encodeLevel := zapcore.LowercaseLevelEncoder
	if c.LogDev {
		encoding = "console"
		encodeLevel = zapcore.CapitalColorLevelEncoder
	}

	zc := zap.Config{
		Level:       level,
		Development: c.LogDev,
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    encodeLevel,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return zc.Build()
}
