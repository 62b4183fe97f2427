package grpc_control

import (
	"context"
	"encoding/json"

	"monitor-dashboard/src/interfaces"
	"monitor-dashboard/src/logger"
	"monitor-dashboard/src/store"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// ControlService implements IDashboardControlServer
type ControlService struct {
	Store   *store.RealtimeStore
	Channel interfaces.IRealtimeChannel
	History interfaces.IHistoryFetcher
	Logger  *logger.Logger
}

// NewControlService creates a new instance of ControlService
func NewControlService(
	st *store.RealtimeStore,
	ch interfaces.IRealtimeChannel,
	history interfaces.IHistoryFetcher,
	log *logger.Logger,
) *ControlService {
	return &ControlService{
		Store:   st,
		Channel: ch,
		History: history,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	resp := map[string]any{
		"keys":       s.Store.Len(),
		"updated_at": int64(0),
	}
	if t := s.Store.UpdatedAt(); !t.IsZero() {
		resp["updated_at"] = t.UnixMilli()
	}
	if s.Channel != nil {
		realtime, err := toMap(s.Channel.Status())
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode status: %v", err)
		}
		resp["realtime"] = realtime
	}
	return newStruct(resp)
}

// -----------------------------------------------------------------------------

// GetState returns the store snapshot, optionally narrowed by a "keys" list
func (s *ControlService) GetState(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	snapshot := s.Store.Snapshot()

	keys := req.GetFields()["keys"].GetListValue().GetValues()
	if len(keys) == 0 {
		return newStruct(map[string]any{"values": snapshot})
	}

	values := make(map[string]any, len(keys))
	for _, k := range keys {
		name := k.GetStringValue()
		if v, ok := snapshot[name]; ok {
			values[name] = v
		}
	}
	return newStruct(map[string]any{"values": values})
}

// -----------------------------------------------------------------------------

func (s *ControlService) GetHistory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	entity := req.GetFields()["entity"].GetStringValue()
	timeframe := req.GetFields()["timeframe"].GetStringValue()
	if entity == "" || timeframe == "" {
		return nil, status.Error(codes.InvalidArgument, "entity and timeframe are required")
	}
	if s.History == nil {
		return nil, status.Error(codes.Unavailable, "history unavailable")
	}

	series, ok := s.History.Fetch(ctx, entity, timeframe)
	if !ok {
		return nil, status.Errorf(codes.NotFound, "no history for %s/%s", entity, timeframe)
	}

	resp, err := toMap(series)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode history: %v", err)
	}
	return newStruct(resp)
}

// -----------------------------------------------------------------------------

// Reconnect drops the realtime connection and dials again immediately
func (s *ControlService) Reconnect(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error) {
	if s.Channel == nil {
		return nil, status.Error(codes.Unavailable, "realtime channel unavailable")
	}

	s.Logger.Info("gRPC: reconnect requested")
	s.Channel.Disconnect()
	s.Channel.Connect()

	resp, err := toMap(s.Channel.Status())
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode status: %v", err)
	}
	return newStruct(resp)
}

// -----------------------------------------------------------------------------

// toMap round-trips v through JSON so structpb sees only plain types
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// -----------------------------------------------------------------------------

func newStruct(m map[string]any) (*structpb.Struct, error) {
	// Store values may hold types structpb rejects
	plain, err := toMap(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	st, err := structpb.NewStruct(plain)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return st, nil
}

var _ IDashboardControlServer = (*ControlService)(nil)
