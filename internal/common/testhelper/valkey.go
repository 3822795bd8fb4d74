// Package testhelper 는 테스트용 인메모리 Valkey/DB 인스턴스를 제공한다.
package testhelper

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/valkey-io/valkey-go"

	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/valkeyx"
)

// NewMiniredisClient: miniredis 인스턴스와 연결된 클라이언트를 생성합니다. 테스트 종료 시 정리됩니다.
func NewMiniredisClient(t *testing.T) (valkey.Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := valkeyx.NewClient(valkeyx.Config{
		Addr:              mr.Addr(),
		DisableCache:      true,
		ForceSingleClient: true,
	})
	if err != nil {
		t.Fatalf("create valkey client failed: %v", err)
	}
	t.Cleanup(client.Close)

	if err := valkeyx.Ping(context.Background(), client); err != nil {
		t.Fatalf("miniredis ping failed: %v", err)
	}
	return client, mr
}
