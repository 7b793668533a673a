package handler

import (
	"context"

	"github.com/AccelByte/extend-creator-nudge/pkg/common"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// Lifecycle listens for creator lifecycle events
type Lifecycle struct {
	UnimplementedLifecycleEventServiceServer

	pipelineManager *pipeline.Manager
}

// NewLifecycle creates a new lifecycle event listener
func NewLifecycle(pipelineManager *pipeline.Manager) *Lifecycle {
	return &Lifecycle{
		pipelineManager: pipelineManager,
	}
}

// OnMessage decodes the event and runs it through the pipeline.
// A malformed payload is rejected with InvalidArgument.
func (s *Lifecycle) OnMessage(
	ctx context.Context,
	msg *structpb.Struct,
) (*emptypb.Empty, error) {
	scope := common.GetScopeFromContext(ctx, "Lifecycle.OnMessage")
	defer scope.Finish()

	event, err := signal.DecodeEvent(msg.AsMap(), s.pipelineManager.Engine().Now())
	if err != nil {
		scope.Log.Warnf("rejecting lifecycle event: %v", err)
		return &emptypb.Empty{}, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	scope.SetAttributes("creator_id", event.CreatorID)
	scope.SetAttributes("event_type", event.Type)
	scope.Log.Infof("received lifecycle event: type=%s creatorId=%s", event.Type, event.CreatorID)

	outcome, err := s.pipelineManager.ProcessEvent(scope.Ctx, event)
	if err != nil {
		scope.TraceError(err)
		scope.Log.Errorf("pipeline processing failed for creator %s: %v", event.CreatorID, err)
		return &emptypb.Empty{}, status.Errorf(codes.Internal,
			"pipeline processing failed: %v", err)
	}

	if outcome.Sent != nil {
		scope.TraceEvent("nudge dispatched")
		scope.Log.Infof("dispatched %s to creator %s on %v", outcome.Sent.Key, event.CreatorID, outcome.Delivered)
	}
	return &emptypb.Empty{}, nil
}
