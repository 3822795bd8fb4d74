package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// lookupEnv: 값이 비어있지 않은 환경 변수만 반환합니다. (공백 제거)
func lookupEnv(key string) (string, bool) {
	rawValue, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	rawValue = strings.TrimSpace(rawValue)
	if rawValue == "" {
		return "", false
	}
	return rawValue, true
}

// lookupFirstEnv: 여러 키 중 첫 번째로 값이 존재하는 키와 값을 반환합니다.
func lookupFirstEnv(keys []string) (string, string, bool) {
	for _, key := range keys {
		if rawValue, ok := lookupEnv(key); ok {
			return key, rawValue, true
		}
	}
	return "", "", false
}

func parseInt(key, rawValue string) (int, error) {
	value, err := strconv.Atoi(rawValue)
	if err != nil {
		return 0, fmt.Errorf("invalid int env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

func parseInt64(key, rawValue string) (int64, error) {
	value, err := strconv.ParseInt(rawValue, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int64 env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

func parseBool(key, rawValue string) (bool, error) {
	switch strings.ToLower(rawValue) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool env %s=%q", key, rawValue)
	}
}

// splitList: 콤마/공백/개행으로 구분된 문자열을 목록으로 분리합니다.
func splitList(rawValue string) []string {
	parts := strings.FieldsFunc(rawValue, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

// IntFromEnv: 환경 변수에서 정수 값을 읽어옵니다.
func IntFromEnv(key string, defaultValue int) (int, error) {
	return IntFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// Int64FromEnv: 환경 변수에서 64비트 정수 값을 읽어옵니다.
func Int64FromEnv(key string, defaultValue int64) (int64, error) {
	return Int64FromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// Float64FromEnv: 환경 변수에서 64비트 실수 값을 읽어옵니다.
func Float64FromEnv(key string, defaultValue float64) (float64, error) {
	rawValue, ok := lookupEnv(key)
	if !ok {
		return defaultValue, nil
	}

	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float64 env %s=%q: %w", key, rawValue, err)
	}
	return value, nil
}

// DurationSecondsFromEnv: 환경 변수에서 초 단위 시간을 읽어 Duration으로 변환합니다.
func DurationSecondsFromEnv(key string, defaultSeconds int64) (time.Duration, error) {
	return durationFromEnv(key, defaultSeconds, time.Second, "seconds")
}

// DurationMillisFromEnv: 환경 변수에서 밀리초 단위 시간을 읽어 Duration으로 변환합니다.
func DurationMillisFromEnv(key string, defaultMillis int64) (time.Duration, error) {
	return durationFromEnv(key, defaultMillis, time.Millisecond, "millis")
}

func durationFromEnv(key string, defaultValue int64, unit time.Duration, unitName string) (time.Duration, error) {
	value, err := Int64FromEnv(key, defaultValue)
	if err != nil {
		return 0, err
	}
	if value < 0 {
		return 0, fmt.Errorf("invalid duration %s env %s=%d", unitName, key, value)
	}
	return time.Duration(value) * unit, nil
}

// BoolFromEnv: 환경 변수에서 불리언 값을 읽어옵니다. (true/1/yes/y, false/0/no/n)
func BoolFromEnv(key string, defaultValue bool) (bool, error) {
	return BoolFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringFromEnv: 환경 변수에서 문자열 값을 읽어옵니다.
func StringFromEnv(key string, defaultValue string) string {
	return StringFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringListFromEnv: 환경 변수에서 구분자(공백, 콤마 등)로 분리된 문자열 목록을 읽어옵니다.
func StringListFromEnv(key string, defaultValue []string) []string {
	return StringListFromEnvFirstNonEmpty([]string{key}, defaultValue)
}

// StringFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 것을 반환합니다.
func StringFromEnvFirstNonEmpty(keys []string, defaultValue string) string {
	if _, rawValue, ok := lookupFirstEnv(keys); ok {
		return rawValue
	}
	return defaultValue
}

// IntFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 정수를 반환합니다.
func IntFromEnvFirstNonEmpty(keys []string, defaultValue int) (int, error) {
	key, rawValue, ok := lookupFirstEnv(keys)
	if !ok {
		return defaultValue, nil
	}
	return parseInt(key, rawValue)
}

// Int64FromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 64비트 정수를 반환합니다.
func Int64FromEnvFirstNonEmpty(keys []string, defaultValue int64) (int64, error) {
	key, rawValue, ok := lookupFirstEnv(keys)
	if !ok {
		return defaultValue, nil
	}
	return parseInt64(key, rawValue)
}

// BoolFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 불리언을 반환합니다.
func BoolFromEnvFirstNonEmpty(keys []string, defaultValue bool) (bool, error) {
	key, rawValue, ok := lookupFirstEnv(keys)
	if !ok {
		return defaultValue, nil
	}
	return parseBool(key, rawValue)
}

// StringListFromEnvFirstNonEmpty: 여러 환경 변수 키 중 첫 번째로 값이 존재하는 문자열 목록을 반환합니다.
// 구분자만 있는 값은 건너뜁니다.
func StringListFromEnvFirstNonEmpty(keys []string, defaultValue []string) []string {
	for _, key := range keys {
		rawValue, ok := lookupEnv(key)
		if !ok {
			continue
		}
		if items := splitList(rawValue); len(items) > 0 {
			return items
		}
	}
	return defaultValue
}
