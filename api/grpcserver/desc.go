package grpcserver

import (
	"context"

	"google.golang.org/grpc"
)

// OrderAPI is the service contract backing the descriptor below.
type OrderAPI interface {
	PlaceLimit(context.Context, *PlaceLimitRequest) (*PlaceLimitResponse, error)
	Cancel(context.Context, *CancelRequest) (*CancelResponse, error)
	ExecuteMarket(context.Context, *ExecuteMarketRequest) (*ExecuteMarketResponse, error)
	Best(context.Context, *BestRequest) (*BestResponse, error)
	Depth(context.Context, *DepthRequest) (*DepthResponse, error)
}

const fullService = "bulkbook.OrderAPI"

// Register attaches the order API to a gRPC server. The server must be
// constructed with grpc.ForceServerCodec(JSONCodec{}).
func Register(s *grpc.Server, srv OrderAPI) {
	s.RegisterService(&serviceDesc, srv)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: fullService,
	HandlerType: (*OrderAPI)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceLimit", Handler: placeLimitHandler},
		{MethodName: "Cancel", Handler: cancelHandler},
		{MethodName: "ExecuteMarket", Handler: executeMarketHandler},
		{MethodName: "Best", Handler: bestHandler},
		{MethodName: "Depth", Handler: depthHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "api/grpcserver",
}

func placeLimitHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(PlaceLimitRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderAPI).PlaceLimit(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + fullService + "/PlaceLimit"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderAPI).PlaceLimit(ctx, req.(*PlaceLimitRequest))
	})
}

func cancelHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(CancelRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderAPI).Cancel(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + fullService + "/Cancel"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderAPI).Cancel(ctx, req.(*CancelRequest))
	})
}

func executeMarketHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ExecuteMarketRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderAPI).ExecuteMarket(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + fullService + "/ExecuteMarket"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderAPI).ExecuteMarket(ctx, req.(*ExecuteMarketRequest))
	})
}

func bestHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(BestRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderAPI).Best(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + fullService + "/Best"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderAPI).Best(ctx, req.(*BestRequest))
	})
}

func depthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(DepthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderAPI).Depth(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + fullService + "/Depth"}
	return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
		return srv.(OrderAPI).Depth(ctx, req.(*DepthRequest))
	})
}
