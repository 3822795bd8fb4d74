package bootstrap

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"
)

// TraceHandler: 컨텍스트에 유효한 span 이 있으면 trace_id/span_id 를 레코드에 붙이는 slog.Handler
type TraceHandler struct {
	slog.Handler
}

// WithTrace: inner 를 TraceHandler 로 감싼다. 이미 감싸져 있으면 그대로 반환한다.
func WithTrace(inner slog.Handler) slog.Handler {
	if _, ok := inner.(*TraceHandler); ok {
		return inner
	}
	return &TraceHandler{Handler: inner}
}

// Handle: span 정보를 추가한 뒤 내부 핸들러로 넘긴다.
func (h *TraceHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	//nolint:wrapcheck // slog.Handler 구현
	return h.Handler.Handle(ctx, record)
}

func (h *TraceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *TraceHandler) WithGroup(name string) slog.Handler {
	return &TraceHandler{Handler: h.Handler.WithGroup(name)}
}
