// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package bootstrap

import (
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-creator-nudge/pkg/signal/builtin"
	"github.com/sirupsen/logrus"
)

// InitSignalProcessor creates a signal processor with the builtin lifecycle
// event processors registered.
//
// To handle a new lifecycle event, implement signal.EventProcessor in
// pkg/signal/builtin/ and add it to RegisterEventProcessors.
func InitSignalProcessor(stateStore service.StateStore) *signal.Processor {
	registry := signal.NewEventProcessorRegistry()
	signalBuiltin.RegisterEventProcessors(registry)

	processor := signal.NewProcessor(stateStore, registry)

	logrus.Infof("initialized signal processor with %d event processors: %v",
		registry.Count(), registry.EventTypes())

	return processor
}
