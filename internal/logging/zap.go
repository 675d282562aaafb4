package logging

import (
	"context"

	"go.uber.org/zap"
)

// ZapLogger adapts a zap.SugaredLogger to Logger. Key-value args, plus the
// request id from ctx, are passed to the *w family of methods.
type ZapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger builds a development (console, debug level) or production
// (JSON, info level) zap logger.
func NewZapLogger(development bool) (*ZapLogger, error) {
	var (
		z   *zap.Logger
		err error
	)
	if development {
		z, err = zap.NewDevelopmentConfig().Build()
	} else {
		z, err = zap.NewProduction()
	}
	if err != nil {
		return nil, err
	}
	return &ZapLogger{s: z.Sugar()}, nil
}

func NewZapLoggerFrom(z *zap.Logger) *ZapLogger {
	return &ZapLogger{s: z.Sugar()}
}

func (z *ZapLogger) Debug(ctx context.Context, msg string, args ...any) {
	z.s.Debugw(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) Info(ctx context.Context, msg string, args ...any) {
	z.s.Infow(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) Warn(ctx context.Context, msg string, args ...any) {
	z.s.Warnw(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) Error(ctx context.Context, msg string, args ...any) {
	z.s.Errorw(msg, withContextFields(ctx, args)...)
}

func (z *ZapLogger) With(args ...any) Logger {
	return &ZapLogger{s: z.s.With(args...)}
}

// Sync flushes buffered log entries.
func (z *ZapLogger) Sync() error {
	return z.s.Sync()
}
