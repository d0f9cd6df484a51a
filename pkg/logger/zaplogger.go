package logger

import "go.uber.org/zap"

// ZapLogger wraps a sugared zap logger. Package level helpers add one stack
// frame, child loggers from With do not, so the caller skip differs.
type ZapLogger struct {
	log *zap.SugaredLogger
}

var zapLogger *ZapLogger

func NewLogger(config zap.Config) (*ZapLogger, error) {
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return SetLogger(logger), nil
}

// SetLogger installs base as the process logger. Tests use it with an
// observer core to assert on log output.
func SetLogger(base *zap.Logger) *ZapLogger {
	zapLogger = &ZapLogger{log: base.WithOptions(zap.AddCallerSkip(2)).Sugar()}
	return zapLogger
}

func GetLogger() *ZapLogger {
	if zapLogger == nil {
		panic("logger not initialized")
	}
	return zapLogger
}

// With returns a child logger that attaches the given key/value pairs to
// every entry, e.g. the user and customer a ledger write belongs to.
func (l *ZapLogger) With(values ...any) *ZapLogger {
	return &ZapLogger{log: l.log.WithOptions(zap.AddCallerSkip(-1)).With(values...)}
}

// Named scopes entries to a component such as "sms" or "notify".
func (l *ZapLogger) Named(name string) *ZapLogger {
	return &ZapLogger{log: l.log.Named(name)}
}

func (l *ZapLogger) Panic(message string, values ...any) {
	l.log.Panicw(message, values...)
}

func (l *ZapLogger) Fatal(error error, values ...any) {
	l.log.Fatalw(error.Error(), values...)
}

func (l *ZapLogger) Info(message string, values ...any) {
	l.log.Infow(message, values...)
}

func (l *ZapLogger) Warn(message string, values ...any) {
	l.log.Warnw(message, values...)
}

func (l *ZapLogger) Error(message string, values ...any) {
	l.log.Errorw(message, values...)
}

func (l *ZapLogger) Debug(message string, values ...any) {
	l.log.Debugw(message, values...)
}

// Printf lets fasthttp servers log through zap.
func (l *ZapLogger) Printf(format string, args ...interface{}) {
	l.log.Infof(format, args...)
}
