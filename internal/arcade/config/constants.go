package config

// ServiceName: 로그 파일/metrics namespace/OTel 기본 서비스명
const ServiceName = "arcade"

// RedisKeyPrefix 는 Valkey 키 상수 목록이다.
const (
	RedisKeyPrefix         = "arcade"
	RedisKeySessionPrefix  = RedisKeyPrefix + ":session"
	RedisKeySnapshotPrefix = RedisKeyPrefix + ":rank-snapshot"
	RedisKeyLockPrefix     = RedisKeyPrefix + ":lock:profile"
)

// SessionUserKey: 세션 KV 안에서 사용자 프로필이 저장되는 고정 키
const SessionUserKey = "user"

// RedisSnapshotTTLSeconds 는 Valkey TTL 상수 목록이다.
const (
	RedisSnapshotTTLSeconds = 7 * 24 * 60 * 60
)

// MaxRecentGames 는 프로필 갱신 상수 목록이다.
const (
	MaxRecentGames        = 5
	MaxAppliedSubmissions = 50   // 재시도 판별용으로 세션에 남기는 SubmissionID 수
	ExperiencePerScore    = 100  // score 100 당 경험치 1
	ExperiencePerLevel    = 1000 // 레벨당 필요 경험치
	MaxRequestBodyBytes   = 64 << 10
)

// HTTP 타임아웃 상수
const (
	ShutdownTimeoutSeconds = 10
)
