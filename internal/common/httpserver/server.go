package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// Serve: server.Addr 에 바인딩한 뒤 ctx 가 끝날 때까지 서빙하고, 종료 시 shutdownTimeout 안에 graceful shutdown 한다.
// 바인딩 실패는 서빙을 시작하기 전에 바로 반환된다.
func Serve(ctx context.Context, server *http.Server, shutdownTimeout time.Duration) error {
	addr := server.Addr
	if addr == "" {
		addr = ":http"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("http server listen %s failed: %w", addr, err)
	}
	return ServeListener(ctx, server, ln, shutdownTimeout)
}

// ServeListener: 이미 열린 listener 로 서빙한다. listener 는 서버 종료와 함께 닫힌다.
func ServeListener(ctx context.Context, server *http.Server, ln net.Listener, shutdownTimeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- server.Serve(ln)
	}()

	select {
	case err := <-done:
		return serveResult(err, "http server stopped")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return serveResult(<-done, "http server stopped after shutdown")
}

func serveResult(err error, msg string) error {
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
