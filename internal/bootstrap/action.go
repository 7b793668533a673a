// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	actionBuiltin "github.com/AccelByte/extend-creator-nudge/pkg/action/builtin"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/sirupsen/logrus"
)

// InitActionExecutor creates an action executor with the actions defined in
// pipeline config.
//
// Actions deliver a nudge on one channel. Builtin types are in_app_banner,
// whatsapp_template and log_only; new types are registered in
// pkg/action/builtin/init.go and then referenced from config/nudges.yaml.
func InitActionExecutor(
	pipelineConfig *pipeline.Config,
	deps *actionBuiltin.Dependencies,
) (*action.Executor, *action.Registry, error) {
	actionBuiltin.RegisterActions(deps)

	actionConfigs := pipelineConfig.ActionConfigs()

	registry := action.NewRegistry()
	if err := action.RegisterActions(registry, actionConfigs); err != nil {
		return nil, nil, fmt.Errorf("failed to register actions: %w", err)
	}

	logrus.Infof("registered %d actions: %v", registry.Count(), registry.IDs())

	executor := action.NewExecutor(registry)
	logrus.Infof("initialized action executor")

	return executor, registry, nil
}
