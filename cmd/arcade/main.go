package main

import (
	"context"
	"log/slog"
	"os"

	aapp "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/app"
	aconfig "github.com/park285/llm-kakao-bots/arcade-go/internal/arcade/config"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/bootstrap"
	"github.com/park285/llm-kakao-bots/arcade-go/internal/common/health"
)

// Version: 빌드 시 ldflags로 주입됨 (예: -ldflags="-X main.Version=1.0.0")
var Version = "dev"

func main() {
	health.Init(Version)
	aconfig.Version = Version

	logger := bootstrap.NewLogger()
	slog.SetDefault(logger)

	finalLogger, err := bootstrap.RunEntrypoint(
		context.Background(),
		logger,
		"arcade.log",
		aconfig.LoadFromEnv,
		func(cfg *aconfig.Config) aconfig.LogConfig { return cfg.Log },
		func(cfg *aconfig.Config) bool { return cfg.Telemetry.Enabled },
		aapp.Initialize,
	)
	if err != nil {
		logger = finalLogger
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
