package config

import (
	"fmt"
	"time"

	commonconfig "github.com/park285/llm-kakao-bots/arcade-go/internal/common/config"
)

// Version: 빌드 시 -ldflags 로 주입된다.
var Version = "dev"

// ServerConfig: HTTP 서버 설정 alias
type ServerConfig = commonconfig.ServerConfig

// ServerTuningConfig: 서버 튜닝 설정 alias
type ServerTuningConfig = commonconfig.ServerTuningConfig

// RedisConfig: Valkey 연결 설정 alias
type RedisConfig = commonconfig.RedisConfig

// PostgresConfig: PostgreSQL 설정 alias
type PostgresConfig = commonconfig.PostgresConfig

// DBRetryConfig: DB 최초 연결 재시도 설정 alias
type DBRetryConfig = commonconfig.DBRetryConfig

// LogConfig: 로깅 설정 alias
type LogConfig = commonconfig.LogConfig

// SessionConfig: 브라우저 세션/프로필 저장 설정
type SessionConfig struct {
	TTL      time.Duration // 세션 KV 만료 (접근 시 갱신)
	LockTTL  time.Duration // 프로필 락 최대 보유 시간
	LockWait time.Duration // 프로필 락 획득 대기
}

// LeaderboardConfig: 리더보드 캐시/집계 설정
type LeaderboardConfig struct {
	CacheTTL        time.Duration
	CacheSize       int
	CategoryWorkers int
}

// SubmissionConfig: 점수 제출 설정
type SubmissionConfig struct {
	RatePerSecond         float64
	Burst                 int
	DefaultSessionMinutes int
}

// DataSourceConfig: 저장소 호출 타임아웃/재시도 설정
type DataSourceConfig struct {
	Timeout    time.Duration
	MaxRetries int
}

// SeasonsConfig: 시즌 스케줄러 설정
type SeasonsConfig struct {
	SweepInterval time.Duration
}

// AdminConfig: 관리자 API 설정
type AdminConfig struct {
	APIKey string
}

// Config: 전체 애플리케이션 설정 구조체
type Config struct {
	Server       ServerConfig
	ServerTuning ServerTuningConfig
	Redis        RedisConfig
	Postgres     PostgresConfig
	DBRetry      DBRetryConfig
	Log          LogConfig
	Telemetry    commonconfig.TelemetryConfig
	Session      SessionConfig
	Leaderboard  LeaderboardConfig
	Submission   SubmissionConfig
	DataSource   DataSourceConfig
	Seasons      SeasonsConfig
	Admin        AdminConfig
}

// LoadFromEnv: 환경 변수로부터 전체 애플리케이션 설정을 로드합니다.
func LoadFromEnv() (*Config, error) {
	server, err := commonconfig.ReadServerConfigFromEnv(40260)
	if err != nil {
		return nil, fmt.Errorf("read server config failed: %w", err)
	}
	serverTuning, err := commonconfig.ReadServerTuningConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read server tuning config failed: %w", err)
	}
	redisCfg, err := commonconfig.ReadRedisConfigFromEnv(
		[]string{"CACHE_HOST", "REDIS_HOST"},
		[]string{"CACHE_PORT", "REDIS_PORT"},
		[]string{"CACHE_PASSWORD", "REDIS_PASSWORD"},
		"localhost",
		6379,
	)
	if err != nil {
		return nil, fmt.Errorf("read redis config failed: %w", err)
	}
	postgres, err := commonconfig.ReadPostgresConfigFromEnv("arcade", "arcade_app")
	if err != nil {
		return nil, fmt.Errorf("read postgres config failed: %w", err)
	}
	dbRetry, err := commonconfig.ReadDBRetryConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read db retry config failed: %w", err)
	}
	logCfg, err := commonconfig.ReadLogConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("read log config failed: %w", err)
	}
	telemetry, err := commonconfig.ReadTelemetryConfigFromEnv(ServiceName, Version)
	if err != nil {
		return nil, fmt.Errorf("read telemetry config: %w", err)
	}
	session, err := readSessionConfig()
	if err != nil {
		return nil, err
	}
	leaderboard, err := readLeaderboardConfig()
	if err != nil {
		return nil, err
	}
	submission, err := readSubmissionConfig()
	if err != nil {
		return nil, err
	}
	dataSource, err := readDataSourceConfig()
	if err != nil {
		return nil, err
	}
	seasons, err := readSeasonsConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:       server,
		ServerTuning: serverTuning,
		Redis:        redisCfg,
		Postgres:     postgres,
		DBRetry:      dbRetry,
		Log:          logCfg,
		Telemetry:    telemetry,
		Session:      session,
		Leaderboard:  leaderboard,
		Submission:   submission,
		DataSource:   dataSource,
		Seasons:      seasons,
		Admin:        AdminConfig{APIKey: commonconfig.StringFromEnv("ADMIN_API_KEY", "")},
	}, nil
}

func readSessionConfig() (SessionConfig, error) {
	ttl, err := commonconfig.DurationSecondsFromEnv("SESSION_TTL_SECONDS", 30*24*60*60)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("read SESSION_TTL_SECONDS failed: %w", err)
	}
	lockTTL, err := commonconfig.DurationSecondsFromEnv("PROFILE_LOCK_TTL_SECONDS", 10)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("read PROFILE_LOCK_TTL_SECONDS failed: %w", err)
	}
	lockWait, err := commonconfig.DurationMillisFromEnv("PROFILE_LOCK_WAIT_MS", 2000)
	if err != nil {
		return SessionConfig{}, fmt.Errorf("read PROFILE_LOCK_WAIT_MS failed: %w", err)
	}
	if lockTTL <= 0 {
		return SessionConfig{}, fmt.Errorf("invalid PROFILE_LOCK_TTL_SECONDS: %v", lockTTL)
	}
	return SessionConfig{TTL: ttl, LockTTL: lockTTL, LockWait: lockWait}, nil
}

func readLeaderboardConfig() (LeaderboardConfig, error) {
	cacheTTL, err := commonconfig.DurationMillisFromEnv("LEADERBOARD_CACHE_TTL_MS", 2000)
	if err != nil {
		return LeaderboardConfig{}, fmt.Errorf("read LEADERBOARD_CACHE_TTL_MS failed: %w", err)
	}
	cacheSize, err := commonconfig.IntFromEnv("LEADERBOARD_CACHE_SIZE", 256)
	if err != nil {
		return LeaderboardConfig{}, fmt.Errorf("read LEADERBOARD_CACHE_SIZE failed: %w", err)
	}
	workers, err := commonconfig.IntFromEnv("LEADERBOARD_CATEGORY_WORKERS", 4)
	if err != nil {
		return LeaderboardConfig{}, fmt.Errorf("read LEADERBOARD_CATEGORY_WORKERS failed: %w", err)
	}
	if workers <= 0 {
		return LeaderboardConfig{}, fmt.Errorf("invalid LEADERBOARD_CATEGORY_WORKERS: %d", workers)
	}
	return LeaderboardConfig{CacheTTL: cacheTTL, CacheSize: cacheSize, CategoryWorkers: workers}, nil
}

func readSubmissionConfig() (SubmissionConfig, error) {
	rate, err := commonconfig.Float64FromEnv("SUBMIT_RATE_PER_SECOND", 2)
	if err != nil {
		return SubmissionConfig{}, fmt.Errorf("read SUBMIT_RATE_PER_SECOND failed: %w", err)
	}
	burst, err := commonconfig.IntFromEnv("SUBMIT_RATE_BURST", 5)
	if err != nil {
		return SubmissionConfig{}, fmt.Errorf("read SUBMIT_RATE_BURST failed: %w", err)
	}
	minutes, err := commonconfig.IntFromEnv("DEFAULT_SESSION_MINUTES", 10)
	if err != nil {
		return SubmissionConfig{}, fmt.Errorf("read DEFAULT_SESSION_MINUTES failed: %w", err)
	}
	if rate < 0 || burst < 0 || minutes < 0 {
		return SubmissionConfig{}, fmt.Errorf("invalid submission config: rate=%v burst=%d minutes=%d", rate, burst, minutes)
	}
	return SubmissionConfig{RatePerSecond: rate, Burst: burst, DefaultSessionMinutes: minutes}, nil
}

func readDataSourceConfig() (DataSourceConfig, error) {
	timeout, err := commonconfig.DurationMillisFromEnv("DATA_SOURCE_TIMEOUT_MS", 3000)
	if err != nil {
		return DataSourceConfig{}, fmt.Errorf("read DATA_SOURCE_TIMEOUT_MS failed: %w", err)
	}
	retries, err := commonconfig.IntFromEnv("DATA_SOURCE_MAX_RETRIES", 3)
	if err != nil {
		return DataSourceConfig{}, fmt.Errorf("read DATA_SOURCE_MAX_RETRIES failed: %w", err)
	}
	if retries < 0 {
		return DataSourceConfig{}, fmt.Errorf("invalid DATA_SOURCE_MAX_RETRIES: %d", retries)
	}
	return DataSourceConfig{Timeout: timeout, MaxRetries: retries}, nil
}

func readSeasonsConfig() (SeasonsConfig, error) {
	interval, err := commonconfig.DurationSecondsFromEnv("SEASON_SWEEP_INTERVAL_SECONDS", 60)
	if err != nil {
		return SeasonsConfig{}, fmt.Errorf("read SEASON_SWEEP_INTERVAL_SECONDS failed: %w", err)
	}
	if interval <= 0 {
		return SeasonsConfig{}, fmt.Errorf("invalid SEASON_SWEEP_INTERVAL_SECONDS: %v", interval)
	}
	return SeasonsConfig{SweepInterval: interval}, nil
}
