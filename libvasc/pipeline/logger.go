package pipeline

import (
	"github.com/plan-systems/klog"
)

// Logger is the only logging sink the pipeline writes to.
type Logger interface {
	Infof(format string, args ...interface{})
	Warningf(format string, args ...interface{})
	Errorf(format string, args ...interface{})

	// V returns true if messages at the given verbosity should be emitted.
	V(level int) bool
}

// KlogLogger forwards to klog.
type KlogLogger struct{}

func (KlogLogger) Infof(format string, args ...interface{})    { klog.Infof(format, args...) }
func (KlogLogger) Warningf(format string, args ...interface{}) { klog.Warningf(format, args...) }
func (KlogLogger) Errorf(format string, args ...interface{})   { klog.Errorf(format, args...) }
func (KlogLogger) V(level int) bool                            { return bool(klog.V(klog.Level(level))) }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Infof(format string, args ...interface{})    {}
func (NopLogger) Warningf(format string, args ...interface{}) {}
func (NopLogger) Errorf(format string, args ...interface{})   {}
func (NopLogger) V(level int) bool                            { return false }
