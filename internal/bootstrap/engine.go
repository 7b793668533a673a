// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/sirupsen/logrus"
)

// InitDecisionEngine builds the nudge catalog from the built-in rules plus
// the overrides in pipeline config, and wraps it in an engine using the
// configured limits and ranking.
func InitDecisionEngine(pipelineConfig *pipeline.Config, opts ...nudge.Option) (*nudge.Engine, error) {
	catalog, err := pipelineConfig.BuildCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to build nudge catalog: %w", err)
	}

	options := []nudge.Option{
		nudge.WithLimits(pipelineConfig.Limits),
		nudge.WithResolver(pipelineConfig.BuildResolver()),
	}
	options = append(options, opts...)

	engine := nudge.NewEngine(catalog, options...)

	logrus.Infof("initialized decision engine with %d nudge rules (channels: %v)",
		catalog.Len(), catalog.Channels())

	return engine, nil
}
