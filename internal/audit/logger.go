package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Entry represents a single audit log entry with structured fields
type Entry struct {
	Timestamp    time.Time
	Action       string
	Actor        string
	ResourceType string
	ResourceID   string
	IPAddress    string
	Status       string // "success" or "failure"
	Details      map[string]string
}

// Logger writes security-relevant actions (signups, logins, event ownership
// changes) as structured zerolog entries tagged component=audit.
type Logger struct {
	logger zerolog.Logger
}

// NewLogger creates an audit logger on top of the application logger.
func NewLogger(base zerolog.Logger) *Logger {
	return &Logger{
		logger: base.With().Str("component", "audit").Logger(),
	}
}

// Nop returns a logger that discards every entry.
func Nop() *Logger {
	return &Logger{logger: zerolog.Nop()}
}

// Log writes an audit entry. A missing IP address is filled in from ctx.
func (l *Logger) Log(ctx context.Context, entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	if entry.IPAddress == "" {
		entry.IPAddress = ClientIPFromContext(ctx)
	}

	event := l.logger.Info()
	if entry.Status == "failure" {
		event = l.logger.Warn()
	}
	event = event.
		Time("at", entry.Timestamp).
		Str("action", entry.Action).
		Str("status", entry.Status)
	if entry.Actor != "" {
		event = event.Str("actor", entry.Actor)
	}
	if entry.ResourceType != "" {
		event = event.Str("resource_type", entry.ResourceType)
	}
	if entry.ResourceID != "" {
		event = event.Str("resource_id", entry.ResourceID)
	}
	if entry.IPAddress != "" {
		event = event.Str("ip", entry.IPAddress)
	}
	if len(entry.Details) > 0 {
		dict := zerolog.Dict()
		for k, v := range entry.Details {
			dict = dict.Str(k, v)
		}
		event = event.Dict("details", dict)
	}
	event.Msg("audit")
}

// LogSuccess logs a successful operation
func (l *Logger) LogSuccess(ctx context.Context, action, actor, resourceType, resourceID string, details map[string]string) {
	l.Log(ctx, Entry{
		Action:       action,
		Actor:        actor,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Status:       "success",
		Details:      details,
	})
}

// LogFailure logs a failed operation
func (l *Logger) LogFailure(ctx context.Context, action, actor string, details map[string]string) {
	l.Log(ctx, Entry{
		Action:  action,
		Actor:   actor,
		Status:  "failure",
		Details: details,
	})
}

type contextKey string

const clientIPKey contextKey = "auditClientIP"

// WithClientIP stores the caller's address for later audit entries.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey, ip)
}

// ClientIPFromContext returns the address stored by WithClientIP.
func ClientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ip, ok := ctx.Value(clientIPKey).(string); ok {
		return ip
	}
	return ""
}

// ClientIP gets the client IP from proxy headers or RemoteAddr
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// Middleware records the client IP on the request context so domain services
// can attribute audit entries without seeing the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := WithClientIP(r.Context(), ClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
