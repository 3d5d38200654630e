package planner

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/sirupsen/logrus"
)

// Context is the small per-call wrapper the planner threads through every
// layer, analogous to the teacher's sql.Context: a context.Context plus a
// structured logger and a tracer, so callers never have to thread three
// separate parameters through every function signature.
type Context struct {
	context.Context
	Logger *logrus.Entry
	Tracer opentracing.Tracer
}

// NewContext builds a planner Context. A nil logger falls back to the
// standard logrus logger; tracing defaults to opentracing's global tracer,
// which is a no-op until a caller installs a real one.
func NewContext(ctx context.Context, logger *logrus.Entry) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Context{Context: ctx, Logger: logger, Tracer: opentracing.GlobalTracer()}
}

// StartSpan opens a child span named operationName, or a no-op span if no
// real tracer was installed.
func (c *Context) StartSpan(operationName string) opentracing.Span {
	return c.Tracer.StartSpan(operationName)
}
