package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/dmaloney/deepscan/internal/usecase/detect"
)

// LogLevel defines the logging verbosity level.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelError
)

// LogFormat defines the output format for logs.
type LogFormat int

const (
	LogFormatHuman LogFormat = iota
	LogFormatJSON
)

// ParseLevel converts a config string into a LogLevel.
func ParseLevel(value string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("unknown log level: %q", value)
	}
}

// ParseFormat converts a config string into a LogFormat.
func ParseFormat(value string) (LogFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "human", "":
		return LogFormatHuman, nil
	case "json":
		return LogFormatJSON, nil
	default:
		return LogFormatHuman, fmt.Errorf("unknown log format: %q", value)
	}
}

// DetectionLogger writes structured logs via the standard log package. It
// implements the detect.Logger port so the orchestrator and adapters share
// one logging pipeline.
type DetectionLogger struct {
	level  LogLevel
	format LogFormat
	now    func() time.Time
}

// NewDetectionLogger creates a logger with the specified config.
func NewDetectionLogger(level LogLevel, format LogFormat) *DetectionLogger {
	return &DetectionLogger{level: level, format: format, now: time.Now}
}

// LogWarning logs a warning message with structured fields. Suppressed when
// the level is set above info.
func (l *DetectionLogger) LogWarning(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("warning", "[WARN]", message, fields)
}

// LogInfo logs an informational message with structured fields. Suppressed
// when the level is set above info.
func (l *DetectionLogger) LogInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if l.level > LogLevelInfo {
		return
	}
	l.emit("info", "[INFO]", message, fields)
}

func (l *DetectionLogger) emit(level, tag, message string, fields map[string]interface{}) {
	if l.format == LogFormatJSON {
		entry := make(map[string]interface{}, len(fields)+3)
		for key, value := range fields {
			entry[key] = value
		}
		entry["level"] = level
		entry["message"] = message
		entry["timestamp"] = l.now().Format(time.RFC3339)

		data, err := json.Marshal(entry)
		if err != nil {
			log.Printf("%s %s (unserializable fields: %v)", tag, message, err)
			return
		}
		log.Printf("%s", data)
		return
	}

	if len(fields) == 0 {
		log.Printf("%s %s", tag, message)
		return
	}

	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%v", key, fields[key]))
	}
	log.Printf("%s %s (%s)", tag, message, strings.Join(pairs, ", "))
}

var _ detect.Logger = (*DetectionLogger)(nil)
