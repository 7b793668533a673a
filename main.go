// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package main

import (
	"context"
	"os"

	"github.com/AccelByte/extend-creator-nudge/internal/app"
	"github.com/AccelByte/extend-creator-nudge/internal/config"
	"github.com/AccelByte/extend-creator-nudge/pkg/common"
	"github.com/sirupsen/logrus"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.Infof("starting creator nudge service..")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	level, err := logrus.ParseLevel(common.NormalizeLogLevel(cfg.LogLevel))
	if err != nil {
		logrus.Fatalf("invalid LOG_LEVEL %q: %v", cfg.LogLevel, err)
	}
	logrus.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("invalid config: %v", err)
	}

	ctx := context.Background()

	application, err := app.New(ctx, cfg)
	if err != nil {
		logrus.Fatalf("failed to initialize application: %v", err)
	}

	if err := application.Run(ctx); err != nil {
		logrus.Errorf("application exited with error: %v", err)
		os.Exit(1)
	}
}
