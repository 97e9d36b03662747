package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	log zerolog.Logger
	mu  sync.RWMutex
)

func init() {
	log = newLogger(os.Stderr, "development")
}

// Init configures the global logger for the given environment.
// "production" writes JSON at info level; anything else writes console output at debug level.
func Init(env string) {
	mu.Lock()
	defer mu.Unlock()
	log = newLogger(os.Stderr, env)
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	log = log.Output(w)
}

func newLogger(w io.Writer, env string) zerolog.Logger {
	if env == "production" {
		return zerolog.New(w).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(out).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func Debug(msg string, args ...any) { emit(current().Debug(), msg, args) }

func Info(msg string, args ...any) { emit(current().Info(), msg, args) }

func Warn(msg string, args ...any) { emit(current().Warn(), msg, args) }

func Error(msg string, args ...any) { emit(current().Error(), msg, args) }

// Fatal logs and exits the process.
func Fatal(msg string, args ...any) { emit(current().Fatal(), msg, args) }

func current() *zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	l := log
	return &l
}

// emit accepts key/value pairs. A bare error anywhere in args is attached as the error field.
func emit(e *zerolog.Event, msg string, args []any) {
	if e == nil {
		return
	}
	for i := 0; i < len(args); i++ {
		if err, ok := args[i].(error); ok {
			e = e.Err(err)
			continue
		}
		key, ok := args[i].(string)
		if !ok || i+1 >= len(args) {
			e = e.Interface(fmt.Sprintf("arg%d", i), args[i])
			continue
		}
		if err, ok := args[i+1].(error); ok {
			e = e.AnErr(key, err)
		} else {
			e = e.Interface(key, args[i+1])
		}
		i++
	}
	e.Msg(msg)
}
