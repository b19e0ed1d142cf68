package log

import (
	"io"
	"os"

	"github.com/op/go-logging"
)

// Level selects the minimum severity that reaches the sink.
type Level logging.Level

// Verbosity levels. Notice is the default; the -v flag raises it to
// Info and -vv to Debug.
const (
	Debug Level = iota
	Info
	Notice
)

var format = logging.MustStringFormatter(
	`%{color}%{time:15:04:05.000} %{module} %{level:.4s}%{color:reset} %{message}`,
)

var backend logging.LeveledBackend

// Logger is the leveled logger handed to the renderer and tracer
// implementations.
type Logger interface {
	Debug(v ...interface{})
	Debugf(format string, v ...interface{})

	Info(v ...interface{})
	Infof(format string, v ...interface{})

	Notice(v ...interface{})
	Noticef(format string, v ...interface{})

	Warning(v ...interface{})
	Warningf(format string, v ...interface{})
}

// New returns a named logger backed by the shared sink.
func New(name string) Logger {
	return logging.MustGetLogger(name)
}

// SetSink redirects all logger output and resets verbosity to Notice.
func SetSink(sink io.Writer) {
	formatted := logging.NewBackendFormatter(logging.NewLogBackend(sink, "", 0), format)
	backend = logging.AddModuleLevel(formatted)
	backend.SetLevel(logging.NOTICE, "")
	logging.SetBackend(backend)
}

// SetLevel adjusts verbosity for all modules.
func SetLevel(level Level) {
	switch level {
	case Debug:
		backend.SetLevel(logging.DEBUG, "")
	case Info:
		backend.SetLevel(logging.INFO, "")
	default:
		backend.SetLevel(logging.NOTICE, "")
	}
}

func init() {
	SetSink(os.Stderr)
}
