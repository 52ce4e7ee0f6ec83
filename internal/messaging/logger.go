package messaging

import (
	"github.com/ThreeDotsLabs/watermill"
	"go.uber.org/zap"
)

// ZapLoggerAdapter routes watermill logs to zap.
type ZapLoggerAdapter struct {
	logger *zap.Logger
}

// NewZapLoggerAdapter wraps logger for watermill components.
func NewZapLoggerAdapter(logger *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{logger: logger.Named("watermill")}
}

func (a *ZapLoggerAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.logger.Error(msg, append(zapFields(fields), zap.Error(err))...)
}

func (a *ZapLoggerAdapter) Info(msg string, fields watermill.LogFields) {
	a.logger.Info(msg, zapFields(fields)...)
}

func (a *ZapLoggerAdapter) Debug(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

// Trace is logged at debug level; zap has no trace level.
func (a *ZapLoggerAdapter) Trace(msg string, fields watermill.LogFields) {
	a.logger.Debug(msg, zapFields(fields)...)
}

func (a *ZapLoggerAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &ZapLoggerAdapter{logger: a.logger.With(zapFields(fields)...)}
}

func zapFields(fields watermill.LogFields) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}

	return out
}

// Compile-time check.
var _ watermill.LoggerAdapter = (*ZapLoggerAdapter)(nil)
