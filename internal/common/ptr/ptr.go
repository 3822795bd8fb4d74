// Package ptr 는 선택 필드(optional) 처리를 위한 포인터 헬퍼를 제공한다.
package ptr

// To: 값의 포인터를 만든다.
func To[T any](v T) *T { return &v }

// Deref: 포인터가 nil 이면 fallback 을 반환한다.
func Deref[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}
	return *p
}

// String: 문자열 포인터를 만든다.
func String(v string) *string { return &v }

// Int: int 포인터를 만든다.
func Int(v int) *int { return &v }
