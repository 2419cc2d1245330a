package log

import (
	"time"
)

// Config holds the logging configuration
type Config struct {
	Level         string        // Level is the minimum level written (debug, info, warn, error)
	JSON          bool          // JSON switches the formatter from text to JSON
	NoStdout      bool          // NoStdout disables console output
	FileOutputDir string        // FileOutputDir enables rotated file logging when set
	FilePrefix    string        // FilePrefix is the prefix of rotated log file names
	FileRotation  time.Duration // FileRotation is the rotation period of log files
}

// defaultConfig returns the default configuration
func defaultConfig() *Config {
	return &Config{
		Level:        "info",
		FilePrefix:   "canvas-downloader",
		FileRotation: 6 * time.Hour,
	}
}
