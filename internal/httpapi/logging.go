package httpapi

import (
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is the structured logger used by the HTTP layer.
var zlog = zerolog.New(os.Stderr).With().Timestamp().Logger()

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

var defaultLogLevel = LevelInfo

// SetRequestLogLevel sets the level used when a request carries no override.
func SetRequestLogLevel(s string) { defaultLogLevel = parseLevel(s) }

func requestLogLevel(r *http.Request) LogLevel {
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// reqLog carries the per-request logging state for one handler.
type reqLog struct {
	r     *http.Request
	lvl   LogLevel
	op    string
	model string
	start time.Time
}

func startLog(r *http.Request, op, model string) *reqLog {
	l := &reqLog{r: r, lvl: requestLogLevel(r), op: op, model: model, start: time.Now()}
	if l.lvl >= LevelDebug {
		l.event(zlog.Debug()).Msg(op + " start")
	}
	return l
}

func (l *reqLog) event(e *zerolog.Event) *zerolog.Event {
	e = e.Str("path", l.r.URL.Path)
	if l.model != "" {
		e = e.Str("model", l.model)
	}
	if rid := middleware.GetReqID(l.r.Context()); rid != "" {
		e = e.Str("request_id", rid)
	}
	return e
}

// end logs the outcome. Failures are logged at LevelError and above,
// successes at LevelInfo and above.
func (l *reqLog) end(status int, err error) {
	if err != nil {
		if l.lvl < LevelError {
			return
		}
		e := zlog.Warn()
		if status >= http.StatusInternalServerError {
			e = zlog.Error()
		}
		l.event(e).Int("status", status).Dur("dur", time.Since(l.start)).Err(err).Msg(l.op + " end")
		return
	}
	if l.lvl >= LevelInfo {
		l.event(zlog.Info()).Int("status", status).Dur("dur", time.Since(l.start)).Msg(l.op + " end")
	}
}
