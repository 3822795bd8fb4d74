// Package valkeyx 는 Redis/Valkey 클라이언트 공통 유틸리티를 제공한다.
// 키 생성, 연결, nil 체크, 기본 명령 헬퍼를 포함한다.
package valkeyx

import "strings"

// BuildKey 는 prefix 뒤에 공백을 제거한 세그먼트들을 ':' 로 이어 키를 생성한다.
// 형식: {prefix}:{part1}:{part2}...
func BuildKey(prefix string, parts ...string) string {
	var b strings.Builder
	b.WriteString(prefix)
	for _, part := range parts {
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(part))
	}
	return b.String()
}
