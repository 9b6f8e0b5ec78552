package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	logger "github.com/sirupsen/logrus"
)

// InitLogger configures the standard logrus logger from the logging config.
func InitLogger() {
	if Config.Logging.OutputStderr {
		logger.SetOutput(os.Stderr)
	}
	if Config.Logging.OutputLevel != "" {
		level, err := logger.ParseLevel(Config.Logging.OutputLevel)
		if err != nil {
			logger.Errorf("invalid log level %v, using default", Config.Logging.OutputLevel)
		} else {
			logger.SetLevel(level)
		}
	}

	if Config.Logging.FilePath != "" {
		fileLevel := logger.WarnLevel
		if Config.Logging.FileLevel != "" {
			level, err := logger.ParseLevel(Config.Logging.FileLevel)
			if err == nil {
				fileLevel = level
			}
		}
		f, err := os.OpenFile(Config.Logging.FilePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			logger.Errorf("error opening log file %v: %v", Config.Logging.FilePath, err)
		} else {
			logger.AddHook(&fileLogHook{
				writer: f,
				level:  fileLevel,
			})
		}
	}
}

type fileLogHook struct {
	writer *os.File
	level  logger.Level
}

func (h *fileLogHook) Levels() []logger.Level {
	levels := []logger.Level{}
	for _, level := range logger.AllLevels {
		if level <= h.level {
			levels = append(levels, level)
		}
	}
	return levels
}

func (h *fileLogHook) Fire(entry *logger.Entry) error {
	line, err := entry.String()
	if err != nil {
		return err
	}
	_, err = h.writer.WriteString(line)
	return err
}

// LogFatal logs a fatal error with callstack info that skips callerSkip many levels with arbitrarily many additional infos.
// callerSkip equal to 0 gives you info directly where LogFatal is called.
func LogFatal(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	logErrorInfo(err, callerSkip, additionalInfos...).Fatal(errorMsg)
}

// LogError logs an error with callstack info that skips callerSkip many levels with arbitrarily many additional infos.
// callerSkip equal to 0 gives you info directly where LogError is called.
func LogError(err error, errorMsg interface{}, callerSkip int, additionalInfos ...map[string]interface{}) {
	logErrorInfo(err, callerSkip, additionalInfos...).Error(errorMsg)
}

func logErrorInfo(err error, callerSkip int, additionalInfos ...map[string]interface{}) *logger.Entry {
	logFields := logger.NewEntry(logger.StandardLogger())

	pc, fullFilePath, line, ok := runtime.Caller(callerSkip + 2)
	if ok {
		logFields = logFields.WithFields(logger.Fields{
			"_file":     filepath.Base(fullFilePath),
			"_function": runtime.FuncForPC(pc).Name(),
			"_line":     line,
		})
	} else {
		logFields = logFields.WithField("runtime", "Callstack cannot be read")
	}

	if err != nil {
		logFields = logFields.WithField("errType", fmt.Sprintf("%T", err)).WithError(err)
	}

	for _, infoMap := range additionalInfos {
		for name, info := range infoMap {
			logFields = logFields.WithField(name, info)
		}
	}

	return logFields
}
