package handler

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/AccelByte/extend-creator-nudge/pkg/action"
	actionBuiltin "github.com/AccelByte/extend-creator-nudge/pkg/action/builtin"
	"github.com/AccelByte/extend-creator-nudge/pkg/nudge"
	"github.com/AccelByte/extend-creator-nudge/pkg/pipeline"
	"github.com/AccelByte/extend-creator-nudge/pkg/service"
	"github.com/AccelByte/extend-creator-nudge/pkg/service/mock"
	"github.com/AccelByte/extend-creator-nudge/pkg/signal"
	signalBuiltin "github.com/AccelByte/extend-creator-nudge/pkg/signal/builtin"
	"github.com/AccelByte/extend-creator-nudge/pkg/state"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

var baseTime = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type testPipeline struct {
	manager *pipeline.Manager
	engine  *nudge.Engine
	deps    *service.Dependencies
	inbox   *service.RedisInbox
}

// setupTestPipeline creates a complete test pipeline with Redis backend
func setupTestPipeline(t *testing.T, customize func(*service.Dependencies)) *testPipeline {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rs, err := service.NewRedisService(client, service.RedisServiceConfig{})
	require.NoError(t, err)

	deps := rs.Dependencies().WithWhatsApp(mock.NewWhatsAppSender())
	if customize != nil {
		customize(deps)
	}

	registry := signal.NewEventProcessorRegistry()
	signalBuiltin.RegisterEventProcessors(registry)
	processor := signal.NewProcessor(deps.StateStore, registry)

	engine := nudge.NewEngine(nudge.DefaultCatalog(), nudge.WithClock(func() time.Time { return baseTime }))

	actions := action.NewRegistry()
	require.NoError(t, actions.Register(actionBuiltin.NewInAppBannerAction(
		action.ActionConfig{ID: "banner", Type: actionBuiltin.InAppBannerActionType, Enabled: true}, deps.Inbox)))

	manager := pipeline.NewManager(processor, engine, action.NewExecutor(actions), deps,
		map[nudge.Channel]string{nudge.ChannelInApp: "banner"}, pipeline.DefaultMaxPendingAge)

	return &testPipeline{manager: manager, engine: engine, deps: deps, inbox: rs.Inbox()}
}

// dialBufconn serves both gRPC services in memory and returns a client conn
func dialBufconn(t *testing.T, tp *testPipeline) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	s := grpc.NewServer()
	RegisterLifecycleEventServiceServer(s, NewLifecycle(tp.manager))
	RegisterNudgeDecisionServiceServer(s, NewDecision(tp.engine))

	go func() { _ = s.Serve(lis) }()
	t.Cleanup(s.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// failingStateStore fails every write
type failingStateStore struct {
	service.StateStore
}

func (failingStateStore) UpdateCreatorState(context.Context, string, *state.CreatorState) error {
	return errors.New("redis unavailable")
}
