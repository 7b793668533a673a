// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

//go:build integration
// +build integration

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/common"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
	"github.com/sirupsen/logrus"
)

// Manual smoke run of the Redis stores against a real server.
// Run with: go run -tags integration test_redis_integration.go
// Requires: Redis reachable at REDIS_HOST:REDIS_PORT (default localhost:6379)

func main() {
	logrus.SetLevel(logrus.DebugLevel)
	logrus.Infof("Starting Redis integration run...")

	ctx := context.Background()

	client, err := state.InitRedisClient(ctx, state.RedisOptions{
		Host:       common.GetEnv("REDIS_HOST", "localhost"),
		Port:       common.GetEnv("REDIS_PORT", "6379"),
		MaxRetries: 3,
		RetryDelay: 500 * time.Millisecond,
	})
	if err != nil {
		logrus.Fatalf("Failed to initialize Redis: %v", err)
	}
	defer client.Close()

	rs, err := service.NewRedisService(client, service.RedisServiceConfig{})
	if err != nil {
		logrus.Fatalf("Failed to build stores: %v", err)
	}
	deps := rs.Dependencies()

	creatorID := fmt.Sprintf("smoke-creator-%d", time.Now().Unix())
	now := time.Now().UTC()
	logrus.Infof("Testing with creator ID: %s", creatorID)

	// Creator state round trip
	s, err := deps.StateStore.GetCreatorState(ctx, creatorID)
	if err != nil {
		logrus.Fatalf("GetCreatorState failed: %v", err)
	}
	state.ApplySignUp(s, now)
	state.ApplyBrandVisit(s, now)
	if err := deps.StateStore.UpdateCreatorState(ctx, creatorID, s); err != nil {
		logrus.Fatalf("UpdateCreatorState failed: %v", err)
	}
	s, err = deps.StateStore.GetCreatorState(ctx, creatorID)
	if err != nil {
		logrus.Fatalf("GetCreatorState failed: %v", err)
	}
	if s.Visits.Lifetime != 1 {
		logrus.Fatalf("Visits.Lifetime = %d, expected 1", s.Visits.Lifetime)
	}
	logrus.Infof("state round trip ok")

	// Scheduler
	if err := deps.Scheduler.Schedule(ctx, creatorID, service.Candidate{
		Key: "first_brand_visit", TriggeredAt: now, DueAt: now,
	}); err != nil {
		logrus.Fatalf("Schedule failed: %v", err)
	}
	due, err := deps.Scheduler.Due(ctx, creatorID, now)
	if err != nil || len(due) != 1 {
		logrus.Fatalf("Due = %v, %v; expected one candidate", due, err)
	}
	logrus.Infof("scheduler ok")

	// History claim and conflict
	if err := deps.HistoryStore.ClaimSend(ctx, creatorID, "first_brand_visit", nil, now); err != nil {
		logrus.Fatalf("ClaimSend failed: %v", err)
	}
	err = deps.HistoryStore.ClaimSend(ctx, creatorID, "first_brand_visit", nil, now)
	if !errors.Is(err, service.ErrConcurrentSend) {
		logrus.Fatalf("second ClaimSend = %v, expected ErrConcurrentSend", err)
	}
	logrus.Infof("history claim ok")

	// Channel tracker and inbox
	if err := deps.ChannelTracker.Increment(ctx, creatorID, "whatsapp", now); err != nil {
		logrus.Fatalf("Increment failed: %v", err)
	}
	counts, err := deps.ChannelTracker.CountLast7d(ctx, creatorID, now)
	if err != nil || counts["whatsapp"] != 1 {
		logrus.Fatalf("CountLast7d = %v, %v; expected whatsapp=1", counts, err)
	}
	if err := deps.Inbox.Push(ctx, creatorID, service.InboxItem{ID: "smoke", Key: "first_brand_visit", CreatedAt: now}); err != nil {
		logrus.Fatalf("Inbox push failed: %v", err)
	}
	logrus.Infof("channel tracker and inbox ok")

	// Clean up
	if err := deps.Scheduler.Remove(ctx, creatorID, "first_brand_visit"); err != nil {
		logrus.Errorf("Remove failed: %v", err)
	}
	if err := state.DeleteCreatorState(ctx, client, creatorID); err != nil {
		logrus.Errorf("DeleteCreatorState failed: %v", err)
	}

	logrus.Infof("All Redis integration checks passed")
}
