package config

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

// DefaultHighScoreKey is the storage key for the best score.
const DefaultHighScoreKey = "spaceShooterHighScore"

// Settings collects process-level configuration read from the environment.
type Settings struct {
	SSHHost     string
	SSHPort     string
	HostKeyPath string

	WebHost string
	WebPort string

	HighScoreFile string // Empty keeps the best score in memory only
	HighScoreKey  string
	TuningFile    string
	Seed          int64 // 0 seeds from the clock

	Audio    bool
	LogLevel string
	LogFile  string
}

// LoadSettings reads settings from the environment after loading any .env file.
func LoadSettings() (Settings, error) {
	if err := LoadDotEnv(); err != nil {
		return Settings{}, err
	}
	return Settings{
		SSHHost:       GetEnv("SSH_HOST", "::"),
		SSHPort:       GetEnv("SSH_PORT", "2222"),
		HostKeyPath:   GetEnv("SSH_HOST_KEY", "/app/keys/host_key"),
		WebHost:       GetEnv("WEB_HOST", "0.0.0.0"),
		WebPort:       GetEnv("WEB_PORT", "8080"),
		HighScoreFile: GetEnv("HIGHSCORE_FILE", "highscore.yaml"),
		HighScoreKey:  GetEnv("HIGHSCORE_KEY", DefaultHighScoreKey),
		TuningFile:    GetEnv("TUNING_FILE", ""),
		Seed:          GetEnvInt("GAME_SEED", 0),
		Audio:         GetEnvBool("AUDIO", true),
		LogLevel:      GetEnv("LOG_LEVEL", "info"),
		LogFile:       GetEnv("LOG_FILE", ""),
	}, nil
}

// Level returns the parsed log level, falling back to info.
func (s Settings) Level() log.Level {
	lvl, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// NewLogger builds the process logger. With LogFile set it appends there;
// otherwise it writes to fallback. The returned func closes the log file.
func (s Settings) NewLogger(fallback io.Writer, prefix string) (*log.Logger, func() error, error) {
	w := fallback
	closer := func() error { return nil }
	if s.LogFile != "" {
		f, err := os.OpenFile(s.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "open log file %s", s.LogFile)
		}
		w = f
		closer = f.Close
	}
	logger := log.NewWithOptions(w, log.Options{
		Level:           s.Level(),
		Prefix:          prefix,
		ReportTimestamp: true,
	})
	return logger, closer, nil
}
