// Package logger provides the process-wide log sink. Logs go to a file so
// JSON results on stdout stay machine-readable; verbose mode mirrors every
// line to stderr.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

var (
	globalLogger *log.Logger
	logFile      *os.File
	mirror       io.Writer
	mu           sync.Mutex
)

// Init initializes the global logger. logPath may be empty to log nowhere;
// with verbose set, log lines are also written to stderr.
func Init(logPath string, verbose bool) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = nil
	mirror = nil

	if verbose {
		mirror = os.Stderr
	}

	var w io.Writer
	switch {
	case logPath != "" && verbose:
		f, err := openLogFile(logPath)
		if err != nil {
			return err
		}
		logFile = f
		w = io.MultiWriter(f, mirror)
	case logPath != "":
		f, err := openLogFile(logPath)
		if err != nil {
			return err
		}
		logFile = f
		w = f
	case verbose:
		w = mirror
	default:
		return nil
	}

	globalLogger = log.New(w, "", log.Ltime|log.Lmicroseconds)
	return nil
}

func openLogFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644) //#nosec G304 -- user-provided log path
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	return f, nil
}

// Close closes the log file.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = nil
}

func printf(level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if globalLogger != nil {
		globalLogger.Printf("["+level+"] "+format, v...)
	}
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	printf("INFO", format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	printf("DEBUG", format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	printf("WARN", format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	printf("ERROR", format, v...)
}

// GetWriter returns the underlying writer for subprocess output.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	if mirror != nil {
		return mirror
	}
	return io.Discard
}
