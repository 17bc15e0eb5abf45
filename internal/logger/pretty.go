// internal/logger/pretty.go
package logger

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Colors for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorPurple = "\033[35m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
)

// PrettyEncoder creates a user-friendly console encoder
func PrettyEncoder() zapcore.Encoder {
	config := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		CallerKey:      "",
		StacktraceKey:  "",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    customLevelEncoder,
		EncodeTime:     customTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return zapcore.NewConsoleEncoder(config)
}

var levelColors = map[zapcore.Level]string{
	zapcore.DebugLevel: ColorCyan,
	zapcore.InfoLevel:  ColorGreen,
	zapcore.WarnLevel:  ColorYellow,
	zapcore.ErrorLevel: ColorRed,
	zapcore.FatalLevel: ColorRed + ColorBold,
}

// customLevelEncoder раскрашивает уровень; неизвестные уровни без цвета
func customLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	color, ok := levelColors[level]
	if !ok {
		enc.AppendString("[" + level.CapitalString() + "]")
		return
	}
	enc.AppendString(color + "[" + level.CapitalString() + "]" + ColorReset)
}

// customTimeEncoder время с миллисекундами
func customTimeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("15:04:05.000"))
}

// FormatMessage creates user-friendly log messages
func FormatMessage(msg string, fields ...zap.Field) string {
	switch msg {
	case "Source list fetched":
		return fmt.Sprintf("%s📥 %s: %s candidates (%s raw, %s excluded, %s wrong chain)%s",
			ColorBlue, extractField(fields, "source"), extractField(fields, "candidates"),
			extractField(fields, "raw"), extractField(fields, "excluded"), extractField(fields, "wrong_chain"), ColorReset)

	case "Resolving token contracts":
		return fmt.Sprintf("%s🔗 Reading %s contracts in %s batches%s",
			ColorCyan, extractField(fields, "addresses"), extractField(fields, "batches"), ColorReset)

	case "Token contracts resolved":
		return fmt.Sprintf("%s🔗 Resolved %s contracts, %s failed%s",
			ColorCyan, extractField(fields, "total"), extractField(fields, "failed"), ColorReset)

	case "Reconciliation finished":
		return fmt.Sprintf("%s🧹 Kept %s of %s tokens%s",
			ColorPurple, extractField(fields, "output"), extractField(fields, "input"), ColorReset)

	case "Token list saved":
		return fmt.Sprintf("%s✅ Saved %s tokens to %s%s",
			ColorGreen, extractField(fields, "count"), extractField(fields, "file"), ColorReset)

	case "List written":
		return fmt.Sprintf("%s📦 %s v%s (%s tokens)%s",
			ColorGreen+ColorBold, extractField(fields, "file"), extractField(fields, "version"),
			extractField(fields, "tokens"), ColorReset)

	case "RPC request failed, trying next node":
		return fmt.Sprintf("%s↻ %s on %s failed, trying next node%s",
			ColorYellow, extractField(fields, "method"), shortenURL(extractField(fields, "url")), ColorReset)
	}

	if err := extractField(fields, "error"); err != "" {
		return msg + ": " + err
	}
	return msg
}

// Helper functions
func extractField(fields []zap.Field, key string) string {
	for _, field := range fields {
		if field.Key != key {
			continue
		}
		switch field.Type {
		case zapcore.StringType:
			return field.String
		case zapcore.Int64Type, zapcore.Int32Type, zapcore.Int16Type, zapcore.Int8Type,
			zapcore.Uint64Type, zapcore.Uint32Type, zapcore.Uint16Type, zapcore.Uint8Type:
			return fmt.Sprintf("%d", field.Integer)
		case zapcore.ErrorType:
			if err, ok := field.Interface.(error); ok {
				return err.Error()
			}
		}
		if field.Interface != nil {
			return fmt.Sprintf("%v", field.Interface)
		}
		return ""
	}
	return ""
}

func shortenURL(raw string) string {
	raw = strings.TrimPrefix(strings.TrimPrefix(raw, "https://"), "http://")
	if i := strings.IndexByte(raw, '/'); i > 0 {
		return raw[:i]
	}
	return raw
}

// PrettyCore wraps a zapcore.Core and prints FormatMessage output instead of raw fields
type PrettyCore struct {
	core   zapcore.Core
	fields []zapcore.Field
}

func (c *PrettyCore) Enabled(level zapcore.Level) bool {
	return c.core.Enabled(level)
}

// With collects context fields for FormatMessage without passing them to the encoder
func (c *PrettyCore) With(fields []zapcore.Field) zapcore.Core {
	merged := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	merged = append(merged, c.fields...)
	merged = append(merged, fields...)
	return &PrettyCore{core: c.core, fields: merged}
}

func (c *PrettyCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *PrettyCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	all := append(append([]zapcore.Field{}, c.fields...), fields...)
	entry.Message = FormatMessage(entry.Message, all...)
	return c.core.Write(entry, nil)
}

func (c *PrettyCore) Sync() error {
	return c.core.Sync()
}
