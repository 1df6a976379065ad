package log

import "github.com/sirupsen/logrus"

type Config struct {
	Level     logrus.Level
	Env       string
	LogToFile bool
	FilePath  string
	Service   string
}

// LevelFromString falls back to info for empty or unknown levels.
func LevelFromString(level string) logrus.Level {
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return logrus.InfoLevel
	}
	return parsed
}
