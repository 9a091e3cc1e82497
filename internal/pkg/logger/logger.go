// Package logger provides a global, Sugared Zap logger with optional
// OpenTelemetry integration. Loggers can be derived and carried through a
// context.Context, so request-scoped fields (and trace/span IDs when a span
// is active) are attached to every entry logged with that context. It emits
// JSON logs to stdout and automatically adds an OTEL bridge core when a
// telemetry provider is available.
package logger

import (
	"context"
	"os"
	"sync"

	"github.com/gabapcia/ergowatch/internal/pkg/telemetry"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ctxKeyType is the private type used for storing derived loggers in a context.
type ctxKeyType struct{}

// ctxKey is the context key under which derived loggers are stored.
var ctxKey = ctxKeyType{}

var (
	// baseLogger is the global SugaredLogger instance. It is initialized once by Init.
	baseLogger *zap.SugaredLogger

	// initBaseLoggerOnce ensures the base logger is only configured a single time.
	initBaseLoggerOnce sync.Once
)

// Init configures the global logger at the given minimum level
// (e.g. "debug", "info", "warn", "error"). It logs JSON to stdout, and if an
// OpenTelemetry LoggerProvider is registered via telemetry.LoggerProvider(),
// adds an OTEL bridge core to forward logs to the telemetry backend.
// Calling Init multiple times has no effect after the first successful
// initialization.
//
// Returns an error if parsing the log level fails.
func Init(level string) error {
	parsedLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	initBaseLoggerOnce.Do(func() {
		cores := []zapcore.Core{
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				parsedLevel,
			),
		}

		if lp := telemetry.LoggerProvider(); lp != nil {
			cores = append(cores, otelzap.NewCore("", otelzap.WithLoggerProvider(lp)))
		}

		baseLogger = zap.New(zapcore.NewTee(cores...)).Sugar()
	})

	return nil
}

// Sync flushes any buffered log entries. It should be called on application
// shutdown to ensure all logs are written out.
func Sync() error {
	return baseLogger.Sync()
}

// deriveFromCtx returns the logger stored in ctx (or the base logger if none
// is stored), enriched with the given key/value pairs. When ctx carries a
// valid OpenTelemetry span, trace and span IDs are attached as well.
func deriveFromCtx(ctx context.Context, keysAndValues ...any) *zap.SugaredLogger {
	derived, ok := ctx.Value(ctxKey).(*zap.SugaredLogger)
	if !ok {
		derived = baseLogger
	}

	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.IsValid() {
		keysAndValues = append(keysAndValues,
			"trace.id", spanCtx.TraceID().String(),
			"span.id", spanCtx.SpanID().String(),
		)
	}

	return derived.With(keysAndValues...)
}

// Derive returns a copy of ctx carrying a logger enriched with the given
// key/value pairs. All subsequent log calls using the returned context will
// include those fields.
func Derive(ctx context.Context, keysAndValues ...any) context.Context {
	return context.WithValue(ctx, ctxKey, deriveFromCtx(ctx, keysAndValues...))
}

// log emits a single entry at the given level using the context's logger.
func log(ctx context.Context, level zapcore.Level, msg string, keysAndValues ...any) {
	deriveFromCtx(ctx).Logw(level, msg, keysAndValues...)
}

// Debug logs a debug-level message with optional key/value context.
func Debug(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.DebugLevel, msg, keysAndValues...)
}

// Info logs an info-level message with optional key/value context.
func Info(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.InfoLevel, msg, keysAndValues...)
}

// Warn logs a warn-level message with optional key/value context.
func Warn(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.WarnLevel, msg, keysAndValues...)
}

// Error logs an error-level message with optional key/value context.
func Error(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.ErrorLevel, msg, keysAndValues...)
}

// Panic logs a panic-level message (and then panics) with optional key/value context.
func Panic(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.PanicLevel, msg, keysAndValues...)
}

// Fatal logs a fatal-level message (and then exits) with optional key/value context.
func Fatal(ctx context.Context, msg string, keysAndValues ...any) {
	log(ctx, zapcore.FatalLevel, msg, keysAndValues...)
}
