package log

import (
	"context"
	"fmt"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Logger is the facade used by usecases and repositories. Handlers hold the
// *otelzap.Logger directly so they can attach the request context.
type Logger interface {
	Debug(ctx context.Context, message string, args ...interface{})
	Info(ctx context.Context, message string, args ...interface{})
	Warn(ctx context.Context, message string, args ...interface{})
	Error(ctx context.Context, message string, args ...interface{})
}

var logger *otelzap.Logger

func SetupLogger() *otelzap.Logger {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return otelzap.New(zapLogger)
}

// Setup builds a logger for tests without touching the package-level instance.
func Setup() *otelzap.Logger {
	return otelzap.New(zap.NewNop())
}

func Init(l *otelzap.Logger) {
	logger = l
}

func GetLogger() Logger {
	return &otelzapLogger{logger: logger}
}

type otelzapLogger struct {
	logger *otelzap.Logger
}

func (l *otelzapLogger) Debug(ctx context.Context, message string, args ...interface{}) {
	l.logger.Ctx(ctx).Debug(format(message, args...))
}

func (l *otelzapLogger) Info(ctx context.Context, message string, args ...interface{}) {
	l.logger.Ctx(ctx).Info(format(message, args...))
}

func (l *otelzapLogger) Warn(ctx context.Context, message string, args ...interface{}) {
	l.logger.Ctx(ctx).Warn(format(message, args...))
}

func (l *otelzapLogger) Error(ctx context.Context, message string, args ...interface{}) {
	l.logger.Ctx(ctx).Error(format(message, args...))
}

func format(message string, args ...interface{}) string {
	if len(args) == 0 {
		return message
	}
	return fmt.Sprintf("%s: %v", message, args)
}
