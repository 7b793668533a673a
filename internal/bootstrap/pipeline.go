// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	"github.com/sirupsen/logrus"
)

// InitPipeline creates the pipeline manager after checking that every
// channel the catalog can use routes to a registered, enabled action.
//
// Channel routing comes from the `channels` block of config/nudges.yaml:
//
//	channels:
//	  in_app: in_app_banner
//	  whatsapp: whatsapp_template
func InitPipeline(
	processor *signal.Processor,
	engine *nudge.Engine,
	actionExecutor *action.Executor,
	actionRegistry *action.Registry,
	deps *service.Dependencies,
	pipelineConfig *pipeline.Config,
) (*pipeline.Manager, error) {
	if err := pipeline.ValidateWiring(engine.Catalog(), actionRegistry, pipelineConfig); err != nil {
		return nil, err
	}
	logrus.Info("pipeline wiring validation passed")

	routes := pipelineConfig.Routes()
	logrus.Infof("configured %d channel routes: %v", len(routes), pipelineConfig.ChannelNames())

	manager := pipeline.NewManager(processor, engine, actionExecutor, deps, routes, pipelineConfig.Scheduler.MaxPendingAge)
	logrus.Infof("initialized pipeline manager (max pending age: %s)", pipelineConfig.Scheduler.MaxPendingAge)

	return manager, nil
}

// InitSweeper creates the background sweeper for delayed candidates.
func InitSweeper(manager *pipeline.Manager, scheduler service.Scheduler, interval time.Duration, batchSize int64) (*pipeline.Sweeper, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
	}
	return pipeline.NewSweeper(manager, scheduler, interval, batchSize), nil
}
