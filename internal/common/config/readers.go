package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ReadServerConfigFromEnv: HTTP 서버 호스트와 포트 설정을 환경 변수에서 읽어옵니다.
func ReadServerConfigFromEnv(defaultPort int) (ServerConfig, error) {
	serverPort, err := IntFromEnv("SERVER_PORT", defaultPort)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read SERVER_PORT failed: %w", err)
	}
	if serverPort <= 0 || serverPort > 65535 {
		return ServerConfig{}, fmt.Errorf("invalid SERVER_PORT: %d", serverPort)
	}

	return ServerConfig{
		Host: StringFromEnv("SERVER_HOST", "0.0.0.0"),
		Port: serverPort,
	}, nil
}

// ReadServerTuningConfigFromEnv: HTTP 서버 튜닝 설정(Timeouts, Limits)을 환경 변수에서 읽어옵니다.
func ReadServerTuningConfigFromEnv() (ServerTuningConfig, error) {
	readHeaderTimeout, err := DurationSecondsFromEnv("SERVER_READ_HEADER_TIMEOUT_SECONDS", 5)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_READ_HEADER_TIMEOUT_SECONDS failed: %w", err)
	}

	// 명시적으로 0을 주면 비활성화
	idleTimeout, err := DurationSecondsFromEnv("SERVER_IDLE_TIMEOUT_SECONDS", 90)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_IDLE_TIMEOUT_SECONDS failed: %w", err)
	}

	maxHeaderBytes, err := IntFromEnv("SERVER_MAX_HEADER_BYTES", 1<<20)
	if err != nil {
		return ServerTuningConfig{}, fmt.Errorf("read SERVER_MAX_HEADER_BYTES failed: %w", err)
	}
	if maxHeaderBytes < 0 {
		return ServerTuningConfig{}, fmt.Errorf("invalid SERVER_MAX_HEADER_BYTES: %d", maxHeaderBytes)
	}

	return ServerTuningConfig{
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
		MaxHeaderBytes:    maxHeaderBytes,
	}, nil
}

// ReadRedisConfigFromEnv: Redis(Valkey) 연결 설정을 환경 변수에서 읽어옵니다.
// 각 항목은 여러 키 중 첫 번째로 값이 존재하는 것을 사용합니다.
func ReadRedisConfigFromEnv(
	hostKeys []string,
	portKeys []string,
	passwordKeys []string,
	defaultHost string,
	defaultPort int,
) (RedisConfig, error) {
	port, err := IntFromEnvFirstNonEmpty(portKeys, defaultPort)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read redis port failed: %w", err)
	}

	poolSize, err := IntFromEnv("REDIS_POOL_SIZE", 32)
	if err != nil {
		return RedisConfig{}, fmt.Errorf("read REDIS_POOL_SIZE failed: %w", err)
	}

	return RedisConfig{
		Host:     StringFromEnvFirstNonEmpty(hostKeys, defaultHost),
		Port:     port,
		Password: StringFromEnvFirstNonEmpty(passwordKeys, ""),

		DialTimeout:  10 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     poolSize,
	}, nil
}

// ReadPostgresConfigFromEnv: PostgreSQL 연결 설정을 환경 변수에서 읽어옵니다.
func ReadPostgresConfigFromEnv(defaultName string, defaultUser string) (PostgresConfig, error) {
	port, err := IntFromEnv("DB_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, fmt.Errorf("read DB_PORT failed: %w", err)
	}

	return PostgresConfig{
		Host:       StringFromEnv("DB_HOST", "localhost"),
		Port:       port,
		SocketPath: StringFromEnv("DB_SOCKET_PATH", ""),
		Name:       StringFromEnv("DB_NAME", defaultName),
		User:       StringFromEnv("DB_USER", defaultUser),
		Password:   StringFromEnv("DB_PASSWORD", ""),
		SSLMode:    StringFromEnv("DB_SSLMODE", "disable"),
	}, nil
}

// ReadDBRetryConfigFromEnv: DB 연결 재시도 설정을 환경 변수에서 읽어옵니다.
func ReadDBRetryConfigFromEnv() (DBRetryConfig, error) {
	maxAttempts, err := IntFromEnv("DB_CONNECT_MAX_ATTEMPTS", 5)
	if err != nil {
		return DBRetryConfig{}, fmt.Errorf("read DB_CONNECT_MAX_ATTEMPTS failed: %w", err)
	}
	baseDelay, err := DurationSecondsFromEnv("DB_CONNECT_BASE_DELAY_SECONDS", 2)
	if err != nil {
		return DBRetryConfig{}, fmt.Errorf("read DB_CONNECT_BASE_DELAY_SECONDS failed: %w", err)
	}
	maxDelay, err := DurationSecondsFromEnv("DB_CONNECT_MAX_DELAY_SECONDS", 30)
	if err != nil {
		return DBRetryConfig{}, fmt.Errorf("read DB_CONNECT_MAX_DELAY_SECONDS failed: %w", err)
	}

	return DBRetryConfig{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		MaxDelay:    maxDelay,
	}, nil
}

// ReadLogConfigFromEnv: 로그 레벨과 파일 출력 설정(디렉터리, 크기, 백업 수)을 환경 변수에서 읽어옵니다.
func ReadLogConfigFromEnv() (LogConfig, error) {
	level := strings.ToLower(strings.TrimSpace(StringFromEnv("LOG_LEVEL", "info")))
	var parsed slog.Level
	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return LogConfig{}, fmt.Errorf("invalid LOG_LEVEL=%q", level)
	}

	dir := StringFromEnv("LOG_DIR", "")
	if strings.TrimSpace(dir) == "" {
		return LogConfig{Level: level}, nil
	}

	maxSizeMB, err := positiveIntFromEnv("LOG_FILE_MAX_SIZE_MB", 1)
	if err != nil {
		return LogConfig{}, err
	}
	maxBackups, err := positiveIntFromEnv("LOG_FILE_MAX_BACKUPS", 30)
	if err != nil {
		return LogConfig{}, err
	}
	maxAgeDays, err := positiveIntFromEnv("LOG_FILE_MAX_AGE_DAYS", 7)
	if err != nil {
		return LogConfig{}, err
	}

	compress, err := BoolFromEnv("LOG_FILE_COMPRESS", true)
	if err != nil {
		return LogConfig{}, fmt.Errorf("read LOG_FILE_COMPRESS failed: %w", err)
	}

	return LogConfig{
		Level:      level,
		Dir:        dir,
		MaxSizeMB:  maxSizeMB,
		MaxBackups: maxBackups,
		MaxAgeDays: maxAgeDays,
		Compress:   compress,
	}, nil
}

// ReadTelemetryConfigFromEnv: OpenTelemetry 설정을 환경 변수에서 읽어옵니다.
func ReadTelemetryConfigFromEnv(defaultServiceName string, version string) (TelemetryConfig, error) {
	enabled, err := BoolFromEnv("OTEL_ENABLED", false)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_ENABLED failed: %w", err)
	}
	insecure, err := BoolFromEnv("OTEL_EXPORTER_OTLP_INSECURE", true)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_EXPORTER_OTLP_INSECURE failed: %w", err)
	}
	sampleRate, err := Float64FromEnv("OTEL_SAMPLE_RATE", 1.0)
	if err != nil {
		return TelemetryConfig{}, fmt.Errorf("read OTEL_SAMPLE_RATE failed: %w", err)
	}
	if sampleRate < 0 || sampleRate > 1 {
		return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %v", sampleRate)
	}

	return TelemetryConfig{
		Enabled:        enabled,
		ServiceName:    StringFromEnv("OTEL_SERVICE_NAME", defaultServiceName),
		ServiceVersion: version,
		Environment:    StringFromEnv("OTEL_ENVIRONMENT", "production"),
		OTLPEndpoint:   StringFromEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPInsecure:   insecure,
		SampleRate:     sampleRate,
	}, nil
}

func positiveIntFromEnv(key string, defaultValue int) (int, error) {
	value, err := IntFromEnv(key, defaultValue)
	if err != nil {
		return 0, fmt.Errorf("read %s failed: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("invalid %s: %d", key, value)
	}
	return value, nil
}
