package handler

import (
	"context"
	"fmt"

	"github.com/AccelByte/extend-creator-nudge/pkg/common"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// Decision serves dry-run evaluations against the engine. It never
// touches stores or dispatches anything.
type Decision struct {
	UnimplementedNudgeDecisionServiceServer

	engine *nudge.Engine
}

func NewDecision(engine *nudge.Engine) *Decision {
	return &Decision{engine: engine}
}

// Evaluate runs ShouldSend, CanSend and Resolve over the posted context.
func (s *Decision) Evaluate(ctx context.Context, msg *structpb.Struct) (*structpb.Struct, error) {
	scope := common.GetScopeFromContext(ctx, "Decision.Evaluate")
	defer scope.Finish()

	out, err := evaluate(s.engine, msg.AsMap())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%v", err)
	}

	res, err := structpb.NewStruct(out)
	if err != nil {
		scope.TraceError(err)
		return nil, status.Errorf(codes.Internal, "failed to encode decision: %v", err)
	}
	return res, nil
}

// evaluate is shared with the HTTP dry-run route.
func evaluate(engine *nudge.Engine, payload map[string]interface{}) (map[string]interface{}, error) {
	c := nudge.DecodeContext(payload)
	if c.EventKey == "" {
		return nil, fmt.Errorf("eventKey is required")
	}
	return nudge.EncodeDecision(c, engine.Evaluate(c), engine.ShouldSend(c)), nil
}
