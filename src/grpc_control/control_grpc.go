package grpc_control

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// -----------------------------------------------------------------------------
// monitor.DashboardControl service descriptor. Messages are well-known
// types, so no generated code is needed.
// -----------------------------------------------------------------------------

const ServiceName = "monitor.DashboardControl"

const (
	methodGetStatus  = "/" + ServiceName + "/GetStatus"
	methodGetState   = "/" + ServiceName + "/GetState"
	methodGetHistory = "/" + ServiceName + "/GetHistory"
	methodReconnect  = "/" + ServiceName + "/Reconnect"
)

type IDashboardControlServer interface {
	GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetState(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Reconnect(context.Context, *emptypb.Empty) (*structpb.Struct, error)
}

// -----------------------------------------------------------------------------

func RegisterDashboardControlServer(s grpc.ServiceRegistrar, srv IDashboardControlServer) {
	s.RegisterService(&DashboardControlServiceDesc, srv)
}

// -----------------------------------------------------------------------------

var DashboardControlServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*IDashboardControlServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "GetStatus",
			Handler: unaryHandler(methodGetStatus, func() any { return new(emptypb.Empty) },
				func(srv IDashboardControlServer, ctx context.Context, req any) (any, error) {
					return srv.GetStatus(ctx, req.(*emptypb.Empty))
				}),
		},
		{
			MethodName: "GetState",
			Handler: unaryHandler(methodGetState, func() any { return new(structpb.Struct) },
				func(srv IDashboardControlServer, ctx context.Context, req any) (any, error) {
					return srv.GetState(ctx, req.(*structpb.Struct))
				}),
		},
		{
			MethodName: "GetHistory",
			Handler: unaryHandler(methodGetHistory, func() any { return new(structpb.Struct) },
				func(srv IDashboardControlServer, ctx context.Context, req any) (any, error) {
					return srv.GetHistory(ctx, req.(*structpb.Struct))
				}),
		},
		{
			MethodName: "Reconnect",
			Handler: unaryHandler(methodReconnect, func() any { return new(emptypb.Empty) },
				func(srv IDashboardControlServer, ctx context.Context, req any) (any, error) {
					return srv.Reconnect(ctx, req.(*emptypb.Empty))
				}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "monitor/dashboard_control.proto",
}

// -----------------------------------------------------------------------------

func unaryHandler(
	fullMethod string,
	newReq func() any,
	call func(IDashboardControlServer, context.Context, any) (any, error),
) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := newReq()
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(IDashboardControlServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(IDashboardControlServer), ctx, req)
		}
		return interceptor(ctx, in, info, handler)
	}
}

// -----------------------------------------------------------------------------
// DashboardControlClient
// -----------------------------------------------------------------------------

type DashboardControlClient struct {
	cc grpc.ClientConnInterface
}

func NewDashboardControlClient(cc grpc.ClientConnInterface) *DashboardControlClient {
	return &DashboardControlClient{cc: cc}
}

func (c *DashboardControlClient) GetStatus(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetStatus, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) GetState(ctx context.Context, keys []string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	list := make([]any, len(keys))
	for i, k := range keys {
		list[i] = k
	}
	in, err := structpb.NewStruct(map[string]any{"keys": list})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetState, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) GetHistory(ctx context.Context, entity, timeframe string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(map[string]any{"entity": entity, "timeframe": timeframe})
	if err != nil {
		return nil, err
	}

	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodGetHistory, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *DashboardControlClient) Reconnect(ctx context.Context, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, methodReconnect, &emptypb.Empty{}, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
