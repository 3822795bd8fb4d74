package bootstrap

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"gopkg.in/natefinch/lumberjack.v2"

	commonconfig "github.com/park285/llm-kakao-bots/arcade-go/internal/common/config"
)

// combinedLogName: 모든 서비스 로그가 함께 쌓이는 파일
const combinedLogName = "combined.log"

// ParseLevel: debug/info/warn/error (대소문자 무관). 빈 값이나 알 수 없는 값은 info.
func ParseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func newTintHandler(w io.Writer, level slog.Level, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
		AddSource:  true,
		NoColor:    noColor,
	})
}

// NewLogger: stdout tint 로거 (info)
func NewLogger() *slog.Logger {
	return NewConsoleLogger(slog.LevelInfo, false)
}

// NewConsoleLogger: stdout 전용 로거. withTrace 면 trace_id/span_id 를 붙인다.
func NewConsoleLogger(level slog.Level, withTrace bool) *slog.Logger {
	handler := newTintHandler(os.Stdout, level, false)
	if withTrace {
		handler = WithTrace(handler)
	}
	return slog.New(handler)
}

func rotatingFile(dir, name string, sizeMB int, cfg commonconfig.LogConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filepath.Join(dir, name),
		MaxSize:    sizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
}

// EnableFileLogging: stdout, 서비스 로그 파일, combined.log 에 동시에 기록하는 로거를 기본 로거로 설정한다.
// cfg.Dir 가 비어 있으면 (nil, nil).
func EnableFileLogging(cfg commonconfig.LogConfig, fileName string, withTrace bool) (*slog.Logger, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		return nil, nil
	}
	if cfg.MaxSizeMB <= 0 || cfg.MaxBackups <= 0 || cfg.MaxAgeDays <= 0 {
		return nil, fmt.Errorf("invalid log config: size=%d backups=%d age_days=%d", cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir failed: %w", err)
	}

	service := rotatingFile(dir, fileName, cfg.MaxSizeMB, cfg)
	// 여러 서비스가 공유하므로 용량을 넉넉히 잡는다
	combined := rotatingFile(dir, combinedLogName, cfg.MaxSizeMB*3, cfg)

	handler := newTintHandler(io.MultiWriter(os.Stdout, service, combined), ParseLevel(cfg.Level), true)
	if withTrace {
		handler = WithTrace(handler)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	logger.Info("file_logging_enabled",
		slog.String("path", service.Filename),
		slog.String("combined", combined.Filename),
		slog.String("level", ParseLevel(cfg.Level).String()),
		slog.Bool("trace_correlation", withTrace),
	)
	return logger, nil
}
