package handler

// Fully-qualified gRPC service names.
const (
	LifecycleEventServiceName = "creatornudge.lifecycle.v1.LifecycleEventService"
	NudgeDecisionServiceName  = "creatornudge.decision.v1.NudgeDecisionService"
)

// DefaultInboxLimit bounds inbox listings when the caller gives no limit.
const DefaultInboxLimit = 20
