package httpserver

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ServerOptions: http.Server 생성 옵션입니다.
type ServerOptions struct {
	UseH2C            bool
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int

	// TraceOperation: 비어있지 않으면 otelhttp 로 핸들러를 감싸 요청 span 을 만든다.
	TraceOperation string
}

// Middleware: http.Handler 데코레이터
type Middleware func(http.Handler) http.Handler

// Chain: 미들웨어를 바깥쪽부터 순서대로 적용합니다. Chain(h, a, b) == a(b(h))
func Chain(handler http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		if middlewares[i] != nil {
			handler = middlewares[i](handler)
		}
	}
	return handler
}

// NewServer: 옵션을 적용한 http.Server 를 생성합니다.
func NewServer(addr string, handler http.Handler, opts ServerOptions) *http.Server {
	if handler == nil {
		handler = http.NewServeMux()
	}

	finalHandler := handler
	if opts.TraceOperation != "" {
		finalHandler = otelhttp.NewHandler(finalHandler, opts.TraceOperation)
	}
	if opts.UseH2C {
		finalHandler = WrapH2C(finalHandler)
	}

	readHeaderTimeout := opts.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 5 * time.Second
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           finalHandler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	if opts.IdleTimeout > 0 {
		server.IdleTimeout = opts.IdleTimeout
	}
	if opts.MaxHeaderBytes > 0 {
		server.MaxHeaderBytes = opts.MaxHeaderBytes
	}

	return server
}
