package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

const serviceName = "bookings.BookingsService"

// BookingsServiceServer is the read-only gRPC mirror of the HTTP API. Messages
// are google.protobuf.Struct values shaped like the HTTP JSON bodies.
type BookingsServiceServer interface {
	Health(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAvailability(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetHistory(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetTransaction(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(BookingsServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

var BookingsServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*BookingsServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Health", Handler: unaryHandler("Health", BookingsServiceServer.Health)},
		{MethodName: "GetAvailability", Handler: unaryHandler("GetAvailability", BookingsServiceServer.GetAvailability)},
		{MethodName: "GetHistory", Handler: unaryHandler("GetHistory", BookingsServiceServer.GetHistory)},
		{MethodName: "GetTransaction", Handler: unaryHandler("GetTransaction", BookingsServiceServer.GetTransaction)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "bookings.proto",
}

func RegisterBookingsServiceServer(registrar grpc.ServiceRegistrar, srv BookingsServiceServer) {
	registrar.RegisterService(&BookingsServiceDesc, srv)
}

func FullMethod(method string) string {
	return "/" + serviceName + "/" + method
}

func unaryHandler(method string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingsServiceServer), ctx, in)
		}

		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(BookingsServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
