package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the different logging levels
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARNING
	ERROR
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARNING:
		return "WARNING"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Format selects how log lines are rendered
type Format int

const (
	// TextFormat writes "[LEVEL] date time message" lines
	TextFormat Format = iota
	// JSONFormat writes one JSON object per line with a "severity" field,
	// which Cloud Logging picks up from container stdout.
	JSONFormat
)

// ParseFormat parses a format name, defaulting to text
func ParseFormat(format string) Format {
	if strings.EqualFold(format, "json") {
		return JSONFormat
	}
	return TextFormat
}

// Logger represents a configurable logger instance
type Logger struct {
	level  LogLevel
	format Format

	debugLog *log.Logger
	infoLog  *log.Logger
	warnLog  *log.Logger
	errorLog *log.Logger

	mu  sync.Mutex
	out io.Writer
}

// Global logger instance
var globalLogger *Logger

// Init initializes the global logger with the specified level, format and output
func Init(level LogLevel, format Format, output io.Writer) {
	globalLogger = New(level, format, output)
}

// New creates a logger without touching the global instance
func New(level LogLevel, format Format, output io.Writer) *Logger {
	if output == nil {
		output = os.Stdout
	}

	return &Logger{
		level:    level,
		format:   format,
		out:      output,
		debugLog: log.New(output, fmt.Sprintf("[%s] ", DEBUG.String()), log.LstdFlags),
		infoLog:  log.New(output, fmt.Sprintf("[%s] ", INFO.String()), log.LstdFlags),
		warnLog:  log.New(output, fmt.Sprintf("[%s] ", WARNING.String()), log.LstdFlags),
		errorLog: log.New(output, fmt.Sprintf("[%s] ", ERROR.String()), log.LstdFlags),
	}
}

// ParseLogLevel parses a string log level and returns the corresponding LogLevel
func ParseLogLevel(level string) LogLevel {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARNING", "WARN":
		return WARNING
	case "ERROR":
		return ERROR
	default:
		return INFO // Default to INFO level
	}
}

// GetLogger returns the global logger instance
func GetLogger() *Logger {
	if globalLogger == nil {
		// Initialize with default INFO level if not initialized
		Init(INFO, TextFormat, os.Stdout)
	}
	return globalLogger
}

// SetLevel changes the log level of the global logger
func SetLevel(level LogLevel) {
	if globalLogger != nil {
		globalLogger.level = level
	}
}

type jsonEntry struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Time     string `json:"time"`
}

func (l *Logger) write(level LogLevel, textLog *log.Logger, format string, v ...interface{}) {
	if l.format == TextFormat {
		textLog.Printf(format, v...)
		return
	}

	line, err := json.Marshal(jsonEntry{
		Severity: level.String(),
		Message:  fmt.Sprintf(format, v...),
		Time:     time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		textLog.Printf(format, v...)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(line, '\n'))
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	if l.level <= DEBUG {
		l.write(DEBUG, l.debugLog, format, v...)
	}
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	if l.level <= INFO {
		l.write(INFO, l.infoLog, format, v...)
	}
}

// Warning logs a warning message
func (l *Logger) Warning(format string, v ...interface{}) {
	if l.level <= WARNING {
		l.write(WARNING, l.warnLog, format, v...)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	if l.level <= ERROR {
		l.write(ERROR, l.errorLog, format, v...)
	}
}

// Fatal logs an error message and exits the program
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.write(ERROR, l.errorLog, format, v...)
	os.Exit(1)
}

// Global convenience functions
func Debug(format string, v ...interface{}) {
	GetLogger().Debug(format, v...)
}

func Info(format string, v ...interface{}) {
	GetLogger().Info(format, v...)
}

func Warning(format string, v ...interface{}) {
	GetLogger().Warning(format, v...)
}

func Error(format string, v ...interface{}) {
	GetLogger().Error(format, v...)
}

func Fatal(format string, v ...interface{}) {
	GetLogger().Fatal(format, v...)
}

// Writer returns an io.Writer that logs each write at the given level. It is
// used to route third-party output (gin) through the logger.
func Writer(level LogLevel) io.Writer {
	return levelWriter{level: level}
}

type levelWriter struct {
	level LogLevel
}

func (w levelWriter) Write(p []byte) (int, error) {
	msg := strings.TrimRight(string(p), "\n")
	l := GetLogger()
	switch w.level {
	case DEBUG:
		l.Debug("%s", msg)
	case WARNING:
		l.Warning("%s", msg)
	case ERROR:
		l.Error("%s", msg)
	default:
		l.Info("%s", msg)
	}
	return len(p), nil
}

// GetLevel returns the current log level
func GetLevel() LogLevel {
	if globalLogger != nil {
		return globalLogger.level
	}
	return INFO
}

// IsDebugEnabled returns true if debug logging is enabled
func IsDebugEnabled() bool {
	return GetLevel() <= DEBUG
}
