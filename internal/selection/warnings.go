package selection

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/inferloop/bats/pkg/models"
)

// NopSink discards all warnings
type NopSink struct{}

// Record implements interfaces.WarningSink
func (NopSink) Record(models.Warning) {}

// CollectorSink accumulates warnings in memory. Safe for concurrent use
// by parallel fit workers.
type CollectorSink struct {
	mu       sync.Mutex
	warnings []models.Warning
}

// NewCollectorSink creates an empty collector
func NewCollectorSink() *CollectorSink {
	return &CollectorSink{}
}

// Record implements interfaces.WarningSink
func (c *CollectorSink) Record(warning models.Warning) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, warning)
}

// Warnings returns a copy of everything recorded so far
func (c *CollectorSink) Warnings() []models.Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Warning, len(c.warnings))
	copy(out, c.warnings)
	return out
}

// LoggerSink forwards each warning to a logrus logger as it arrives
type LoggerSink struct {
	logger *logrus.Logger
}

// NewLoggerSink creates a sink writing to the given logger
func NewLoggerSink(logger *logrus.Logger) *LoggerSink {
	if logger == nil {
		logger = logrus.New()
	}
	return &LoggerSink{logger: logger}
}

// Record implements interfaces.WarningSink
func (l *LoggerSink) Record(warning models.Warning) {
	l.logger.WithFields(logrus.Fields{
		"kind": warning.Kind,
		"spec": warning.Spec.String(),
	}).Warn(warning.Detail)
}
