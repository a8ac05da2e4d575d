package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"gamehall/internal/types"
)

// initLogger installs the global zap logger used by the log helpers.
func initLogger(production bool) (func(), error) {
	var (
		logger *zap.Logger
		err    error
	)
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	restore := zap.ReplaceGlobals(logger)
	return func() {
		_ = logger.Sync()
		restore()
	}, nil
}

// dirExists returns true if the given path exists and is a directory.
func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false
		}
		logWarn("Error checking directory existence: %v", err)
		return false
	}
	return info.IsDir()
}

// formatUptime returns a human-readable string for a duration.
func formatUptime(d time.Duration) string {
	seconds := int(d.Seconds()) % 60
	minutes := int(d.Minutes()) % 60
	hours := int(d.Hours())
	switch {
	case hours > 0:
		return fmt.Sprintf("%d hour%s, %d minute%s, %d second%s",
			hours, plural(hours),
			minutes, plural(minutes),
			seconds, plural(seconds))
	case minutes > 0:
		return fmt.Sprintf("%d minute%s, %d second%s",
			minutes, plural(minutes),
			seconds, plural(seconds))
	default:
		return fmt.Sprintf("%d second%s", seconds, plural(seconds))
	}
}

// plural returns "s" if n != 1, otherwise "".
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// loadWords reads the hangman word list, dropping blank entries.
func loadWords(path string) ([]types.WordEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var wl types.WordList
	if err := json.Unmarshal(data, &wl); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	words := lo.Filter(wl.Words, func(entry types.WordEntry, _ int) bool {
		if entry.Word == "" {
			logWarn("Skipping word entry with empty word (hint %q)", entry.Hint)
			return false
		}
		return true
	})
	if len(words) == 0 {
		return nil, fmt.Errorf("%s has no words", path)
	}
	return words, nil
}

// loadSubjects reads the trivia subjects, dropping duplicate ids.
func loadSubjects(path string) ([]types.Subject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sl types.SubjectList
	if err := json.Unmarshal(data, &sl); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	subjects := lo.UniqBy(sl.Subjects, func(s types.Subject) string { return s.ID })
	if dropped := len(sl.Subjects) - len(subjects); dropped > 0 {
		logWarn("Dropped %d duplicate subject%s from %s", dropped, plural(dropped), path)
	}
	return subjects, nil
}

// logInfo logs an info-level message.
func logInfo(format string, v ...any) {
	zap.S().Infof(format, v...)
}

// logWarn logs a warning-level message.
func logWarn(format string, v ...any) {
	zap.S().Warnf(format, v...)
}

// logFatal logs a fatal error and exits.
func logFatal(format string, v ...any) {
	zap.S().Fatalf(format, v...)
}

// logInfoCtx prefixes the request id carried by ctx, if any.
func logInfoCtx(ctx context.Context, format string, v ...any) {
	if reqID, _ := ctx.Value(requestIDKey).(string); reqID != "" {
		logInfo("[request_id=%v] "+format, append([]any{reqID}, v...)...)
		return
	}
	logInfo(format, v...)
}

// logWarnCtx prefixes the request id carried by ctx, if any.
func logWarnCtx(ctx context.Context, format string, v ...any) {
	if reqID, _ := ctx.Value(requestIDKey).(string); reqID != "" {
		logWarn("[request_id=%v] "+format, append([]any{reqID}, v...)...)
		return
	}
	logWarn(format, v...)
}
