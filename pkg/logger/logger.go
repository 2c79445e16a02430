package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

var levelNames = map[Level]string{
	DebugLevel: "DEBUG",
	InfoLevel:  "INFO",
	WarnLevel:  "WARN",
	ErrorLevel: "ERROR",
}

var (
	mu       sync.Mutex
	minLevel = InfoLevel
	out      io.Writer = os.Stderr
)

func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// SetOutput redirects log output (for tests).
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

// ParseLevel maps a config string to a Level. Unknown strings fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel
	case "warn", "warning":
		return WarnLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func logCF(level Level, component, msg string, fields map[string]interface{}) {
	mu.Lock()
	defer mu.Unlock()
	if level < minLevel {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(levelNames[level])
	b.WriteString("] ")
	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			b.WriteString(" ")
			b.WriteString(k)
			b.WriteString("=")
			b.WriteString(formatValue(fields[k]))
		}
	}

	fmt.Fprintln(out, b.String())
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t\n") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case error:
		return fmt.Sprintf("%q", val.Error())
	case fmt.Stringer:
		return fmt.Sprintf("%q", val.String())
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

func DebugCF(component, msg string, fields map[string]interface{}) {
	logCF(DebugLevel, component, msg, fields)
}

func InfoCF(component, msg string, fields map[string]interface{}) {
	logCF(InfoLevel, component, msg, fields)
}

func WarnCF(component, msg string, fields map[string]interface{}) {
	logCF(WarnLevel, component, msg, fields)
}

func ErrorCF(component, msg string, fields map[string]interface{}) {
	logCF(ErrorLevel, component, msg, fields)
}

func Debug(component, msg string) { logCF(DebugLevel, component, msg, nil) }
func Info(component, msg string)  { logCF(InfoLevel, component, msg, nil) }
func Warn(component, msg string)  { logCF(WarnLevel, component, msg, nil) }
func Error(component, msg string) { logCF(ErrorLevel, component, msg, nil) }
