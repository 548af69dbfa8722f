package native

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/agbru/magcalc/internal/native"

// Recorder observes completed invocations. metrics.OperationMetrics
// implements it.
type Recorder interface {
	ObserveInvocation(method string, elapsed time.Duration, err error)
}

// Invoker dispatches native calls through a method table.
type Invoker struct {
	table    *MethodTable
	tracer   trace.Tracer
	recorder Recorder
	logger   zerolog.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithRecorder reports every invocation to r.
func WithRecorder(r Recorder) InvokerOption {
	return func(inv *Invoker) { inv.recorder = r }
}

// WithTracer replaces the global tracer.
func WithTracer(t trace.Tracer) InvokerOption {
	return func(inv *Invoker) { inv.tracer = t }
}

// WithLogger logs failed invocations at debug level.
func WithLogger(l zerolog.Logger) InvokerOption {
	return func(inv *Invoker) { inv.logger = l }
}

// NewInvoker creates an Invoker over table; a nil table selects
// DefaultMethodTable.
func NewInvoker(table *MethodTable, opts ...InvokerOption) *Invoker {
	if table == nil {
		table = DefaultMethodTable()
	}
	inv := &Invoker{
		table:  table,
		tracer: otel.Tracer(tracerName),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	return inv
}

// Table returns the method table of inv.
func (inv *Invoker) Table() *MethodTable { return inv.table }

// Invoke runs the native method name+descriptor on e. Runtime exceptions
// (bad ranges, null sources, division by zero, out of memory) are returned
// as typed errors from the errors package; on any error the operand stack is
// left as it was before the call.
func (inv *Invoker) Invoke(ctx context.Context, e *Execution, name, descriptor string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	method, err := inv.table.Lookup(name, descriptor)
	if err != nil {
		return err
	}

	_, span := inv.tracer.Start(ctx, "native."+name,
		trace.WithAttributes(
			attribute.String("native.descriptor", descriptor),
			attribute.Int("native.stack_depth", e.Depth()),
		))
	defer span.End()

	mark := e.mark()
	start := time.Now()
	err = method.Handler(e)
	elapsed := time.Since(start)

	if err != nil {
		e.restore(mark)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		inv.logger.Debug().Err(err).Str("method", method.Signature()).Msg("native call raised")
	}
	if inv.recorder != nil {
		inv.recorder.ObserveInvocation(name, elapsed, err)
	}
	return err
}

// Call pushes args onto e, invokes the method and pops its single result.
func (inv *Invoker) Call(ctx context.Context, e *Execution, name, descriptor string, args ...Value) (Value, error) {
	mark := e.mark()
	for _, a := range args {
		e.Push(a)
	}
	if err := inv.Invoke(ctx, e, name, descriptor); err != nil {
		e.restore(mark)
		return Value{}, err
	}
	return e.Pop()
}
