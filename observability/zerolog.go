package observability

import "github.com/rs/zerolog"

// ZerologLogger adapts a zerolog.Logger to the Logger interface.
type ZerologLogger struct {
	logger zerolog.Logger
}

// NewZerologLogger wraps the given zerolog logger.
//
// Example:
//
//	zl := zerolog.New(os.Stderr).With().Timestamp().Logger()
//	client, err := cpapi.NewWithConfig(&cpapi.ClientConfig{
//		Server:   "mgmt.example.net",
//		User:     "api-user",
//		Password: password,
//		Logger:   observability.NewZerologLogger(zl),
//	})
func NewZerologLogger(logger zerolog.Logger) *ZerologLogger {
	return &ZerologLogger{logger: logger}
}

func (l *ZerologLogger) Debug(msg string, fields ...Field) {
	withFields(l.logger.Debug(), fields).Msg(msg)
}

func (l *ZerologLogger) Info(msg string, fields ...Field) {
	withFields(l.logger.Info(), fields).Msg(msg)
}

func (l *ZerologLogger) Warn(msg string, fields ...Field) {
	withFields(l.logger.Warn(), fields).Msg(msg)
}

func (l *ZerologLogger) Error(msg string, fields ...Field) {
	withFields(l.logger.Error(), fields).Msg(msg)
}

//nolint:ireturn // Method must return interface to satisfy Logger interface
func (l *ZerologLogger) With(fields ...Field) Logger {
	ctx := l.logger.With()
	for _, f := range fields {
		ctx = ctx.Interface(f.Key, f.Value)
	}

	return &ZerologLogger{logger: ctx.Logger()}
}

func withFields(event *zerolog.Event, fields []Field) *zerolog.Event {
	for _, f := range fields {
		if err, ok := f.Value.(error); ok {
			event = event.AnErr(f.Key, err)
			continue
		}
		event = event.Interface(f.Key, f.Value)
	}

	return event
}
