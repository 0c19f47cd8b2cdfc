package restyutil

import (
	"context"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/semconv/v1.13.0/httpconv"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentOutput receives the full text of http messages, keyed by a
// sequence number that is unique per instrumented client.
type InstrumentOutput interface {
	Write(id string, contents string)
}

type instrumenter struct {
	tracer  trace.Tracer
	output  InstrumentOutput
	counter *atomic.Uint64
}

// InstrumentClient wraps every request of the client in a span.
//
// When `output` is set and debug logging is enabled, each request/response pair
// is also written to `output`. `tracer` defaults to "refuel.lib.restyutil".
func InstrumentClient(client *resty.Client, tracer trace.Tracer, output InstrumentOutput) {
	if tracer == nil {
		tracer = otel.Tracer("refuel.lib.restyutil")
	}
	i := instrumenter{
		tracer:  tracer,
		output:  output,
		counter: &atomic.Uint64{},
	}
	client.OnBeforeRequest(i.onBeforeRequest)
	client.OnAfterResponse(i.onAfterResponse)
	client.OnError(i.onError)
}

type messageIdKey struct{}

func (i instrumenter) onBeforeRequest(_ *resty.Client, req *resty.Request) error {
	ctx, _ := i.tracer.Start(req.Context(), "http "+req.Method)

	if i.output != nil && slog.Default().Enabled(ctx, slog.LevelDebug) {
		id := strconv.FormatUint(i.counter.Add(1), 10)
		ctx = context.WithValue(ctx, messageIdKey{}, id)
	}

	req.SetContext(ctx)
	return nil
}

func (i instrumenter) onAfterResponse(_ *resty.Client, res *resty.Response) error {
	ctx := res.Request.Context()
	span := trace.SpanFromContext(ctx)
	defer span.End()

	// the raw request only exists once the request was sent
	span.SetAttributes(httpconv.ClientRequest(res.Request.RawRequest)...)
	span.SetAttributes(httpconv.ClientResponse(res.RawResponse)...)
	span.SetAttributes(attribute.Int("http.response.body.size", len(res.Body())))
	if res.IsError() {
		span.SetStatus(codes.Error, res.Status())
	}

	id, ok := ctx.Value(messageIdKey{}).(string)
	if ok {
		i.output.Write(id, formatHttpMessage(res))
		slog.DebugContext(
			ctx, "http message saved",
			"method", res.Request.Method,
			"url", res.Request.URL,
			"status", res.StatusCode(),
			"message_id", id,
		)
	}
	return nil
}

func (i instrumenter) onError(req *resty.Request, err error) {
	span := trace.SpanFromContext(req.Context())
	defer span.End()

	span.RecordError(err)
	span.SetStatus(codes.Error, "request failed")
	if req.RawRequest != nil {
		span.SetAttributes(httpconv.ClientRequest(req.RawRequest)...)
	}
}
