// Copyright (c) 2023 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package common

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	"github.com/sirupsen/logrus"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("CREATOR_NUDGE_TEST_VALUE", "set")

	if got := GetEnv("CREATOR_NUDGE_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("GetEnv() = %q, expected set", got)
	}
	if got := GetEnv("CREATOR_NUDGE_TEST_MISSING", "fallback"); got != "fallback" {
		t.Errorf("GetEnv() = %q, expected fallback", got)
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := map[string]string{
		"":        "info",
		" DEBUG ": "debug",
		"warning": "warn",
		"error":   "error",
	}
	for in, want := range tests {
		if got := NormalizeLogLevel(in); got != want {
			t.Errorf("NormalizeLogLevel(%q) = %q, expected %q", in, got, want)
		}
	}
}

func TestInterceptorLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	InterceptorLogger(logger).Log(context.Background(), logging.LevelInfo, "finished call", "grpc.method", "OnMessage")

	out := buf.String()
	if !strings.Contains(out, `"msg":"finished call"`) || !strings.Contains(out, `"grpc.method":"OnMessage"`) {
		t.Errorf("unexpected log output: %s", out)
	}
}

func TestScope(t *testing.T) {
	scope := GetScopeFromContext(context.Background(), "test")
	defer scope.Finish()

	if scope.Ctx == nil || scope.Log == nil {
		t.Fatal("scope not initialised")
	}

	scope.SetLogger(logrus.WithField("component", "test"))
	if scope.Log.Data["component"] != "test" {
		t.Error("expected the new logger fields")
	}
	if _, ok := scope.Log.Data[traceIdLogField]; !ok {
		t.Error("expected the trace id field to survive SetLogger")
	}

	scope.TraceTag("nudge_key", "first_request")
	scope.SetAttributes("count", 3)
	scope.TraceEvent("evaluated")
}
