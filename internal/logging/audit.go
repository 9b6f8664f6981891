package logging

import (
	"time"

	"go.uber.org/zap"
)

// AuditEventType names a user-visible state transition worth keeping a trail of.
type AuditEventType string

const (
	AuditNavigate      AuditEventType = "navigate"       // render cycle started for a path
	AuditNavigateDeny  AuditEventType = "navigate_deny"  // protected path without a session
	AuditNotFound      AuditEventType = "not_found"      // no route matched
	AuditStaleDiscard  AuditEventType = "stale_discard"  // result from a superseded generation
	AuditSessionStart  AuditEventType = "session_start"  // login persisted
	AuditSessionEnd    AuditEventType = "session_end"    // logout cleared the store
	AuditRemoteCall    AuditEventType = "remote_call"    // API request finished
	AuditConfigReload  AuditEventType = "config_reload"  // config file changed on disk
)

// AuditEvent is one structured audit entry.
type AuditEvent struct {
	EventType  AuditEventType
	Target     string // path, endpoint or user id
	Generation int
	Success    bool
	Duration   time.Duration
	Error      string
}

// AuditLogger writes audit events to the "audit" named zap logger.
type AuditLogger struct{}

// Audit returns the audit logger.
func Audit() AuditLogger { return AuditLogger{} }

// Log writes an audit event. Disabled categories and production mode make it a no-op.
func (AuditLogger) Log(e AuditEvent) {
	mu.RLock()
	l := base
	enabled := opts.DebugMode || opts.Stderr
	mu.RUnlock()
	if !enabled {
		return
	}

	fields := []zap.Field{
		zap.String("event", string(e.EventType)),
		zap.String("target", e.Target),
		zap.Bool("success", e.Success),
	}
	if e.Generation != 0 {
		fields = append(fields, zap.Int("gen", e.Generation))
	}
	if e.Duration != 0 {
		fields = append(fields, zap.Duration("dur", e.Duration))
	}
	if e.Error != "" {
		fields = append(fields, zap.String("error", e.Error))
	}
	l.Named("audit").Info("audit", fields...)
}

func (a AuditLogger) Navigate(path string, gen int) {
	a.Log(AuditEvent{EventType: AuditNavigate, Target: path, Generation: gen, Success: true})
}

func (a AuditLogger) NavigateDenied(path string) {
	a.Log(AuditEvent{EventType: AuditNavigateDeny, Target: path})
}

func (a AuditLogger) StaleDiscard(gen, current int) {
	a.Log(AuditEvent{EventType: AuditStaleDiscard, Generation: gen, Target: "current", Success: gen == current})
}

func (a AuditLogger) RemoteCall(endpoint string, d time.Duration, err error) {
	e := AuditEvent{EventType: AuditRemoteCall, Target: endpoint, Duration: d, Success: err == nil}
	if err != nil {
		e.Error = err.Error()
	}
	a.Log(e)
}
