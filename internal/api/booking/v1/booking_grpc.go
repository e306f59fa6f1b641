// Package bookingv1 описывает gRPC-сервис roombooking.booking.v1.BookingService.
// Сообщения — google.protobuf.Struct и google.protobuf.Empty, поля Struct
// совпадают с JSON HTTP API.
package bookingv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const ServiceName = "roombooking.booking.v1.BookingService"

const (
	BookingService_ListWeeks_FullMethodName            = "/" + ServiceName + "/ListWeeks"
	BookingService_GetWeekGrid_FullMethodName          = "/" + ServiceName + "/GetWeekGrid"
	BookingService_ConfirmBooking_FullMethodName       = "/" + ServiceName + "/ConfirmBooking"
	BookingService_CancelBooking_FullMethodName        = "/" + ServiceName + "/CancelBooking"
	BookingService_GetPastStatistics_FullMethodName    = "/" + ServiceName + "/GetPastStatistics"
	BookingService_ListUpcomingBookings_FullMethodName = "/" + ServiceName + "/ListUpcomingBookings"
	BookingService_ListAllBookings_FullMethodName      = "/" + ServiceName + "/ListAllBookings"
	BookingService_ListWeekBookings_FullMethodName     = "/" + ServiceName + "/ListWeekBookings"
	BookingService_WatchBookings_FullMethodName        = "/" + ServiceName + "/WatchBookings"
)

// BookingServiceClient — клиент сервиса бронирования.
type BookingServiceClient interface {
	ListWeeks(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetWeekGrid(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ConfirmBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	CancelBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error)
	GetPastStatistics(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListUpcomingBookings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListAllBookings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListWeekBookings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	WatchBookings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type bookingServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewBookingServiceClient(cc grpc.ClientConnInterface) BookingServiceClient {
	return &bookingServiceClient{cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, append([]grpc.CallOption{grpc.StaticMethod()}, opts...)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *bookingServiceClient) ListWeeks(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, BookingService_ListWeeks_FullMethodName, in, opts)
}

func (c *bookingServiceClient) GetWeekGrid(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, BookingService_GetWeekGrid_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ConfirmBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, BookingService_ConfirmBooking_FullMethodName, in, opts)
}

func (c *bookingServiceClient) CancelBooking(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, BookingService_CancelBooking_FullMethodName, in, opts)
}

func (c *bookingServiceClient) GetPastStatistics(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, BookingService_GetPastStatistics_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ListUpcomingBookings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, BookingService_ListUpcomingBookings_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ListAllBookings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, BookingService_ListAllBookings_FullMethodName, in, opts)
}

func (c *bookingServiceClient) ListWeekBookings(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, BookingService_ListWeekBookings_FullMethodName, in, opts)
}

func (c *bookingServiceClient) WatchBookings(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &BookingService_ServiceDesc.Streams[0], BookingService_WatchBookings_FullMethodName,
		append([]grpc.CallOption{grpc.StaticMethod()}, opts...)...)
	if err != nil {
		return nil, err
	}
	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.ClientStream.SendMsg(in); err != nil {
		return nil, err
	}
	if err := x.ClientStream.CloseSend(); err != nil {
		return nil, err
	}
	return x, nil
}

// BookingServiceServer — серверная часть. Реализации встраивают
// UnimplementedBookingServiceServer.
type BookingServiceServer interface {
	ListWeeks(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	GetWeekGrid(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConfirmBooking(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CancelBooking(context.Context, *structpb.Struct) (*emptypb.Empty, error)
	GetPastStatistics(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListUpcomingBookings(context.Context, *emptypb.Empty) (*structpb.Struct, error)
	ListAllBookings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListWeekBookings(context.Context, *structpb.Struct) (*structpb.Struct, error)
	WatchBookings(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error
	mustEmbedUnimplementedBookingServiceServer()
}

type UnimplementedBookingServiceServer struct{}

func (UnimplementedBookingServiceServer) ListWeeks(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListWeeks not implemented")
}
func (UnimplementedBookingServiceServer) GetWeekGrid(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetWeekGrid not implemented")
}
func (UnimplementedBookingServiceServer) ConfirmBooking(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ConfirmBooking not implemented")
}
func (UnimplementedBookingServiceServer) CancelBooking(context.Context, *structpb.Struct) (*emptypb.Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelBooking not implemented")
}
func (UnimplementedBookingServiceServer) GetPastStatistics(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPastStatistics not implemented")
}
func (UnimplementedBookingServiceServer) ListUpcomingBookings(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListUpcomingBookings not implemented")
}
func (UnimplementedBookingServiceServer) ListAllBookings(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListAllBookings not implemented")
}
func (UnimplementedBookingServiceServer) ListWeekBookings(context.Context, *structpb.Struct) (*structpb.Struct, error) {
	return nil, status.Error(codes.Unimplemented, "method ListWeekBookings not implemented")
}
func (UnimplementedBookingServiceServer) WatchBookings(*emptypb.Empty, grpc.ServerStreamingServer[structpb.Struct]) error {
	return status.Error(codes.Unimplemented, "method WatchBookings not implemented")
}
func (UnimplementedBookingServiceServer) mustEmbedUnimplementedBookingServiceServer() {}

func RegisterBookingServiceServer(s grpc.ServiceRegistrar, srv BookingServiceServer) {
	s.RegisterService(&BookingService_ServiceDesc, srv)
}

// unary собирает обработчик унарного метода.
func unary[Req, Resp any](method string, call func(BookingServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(BookingServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(BookingServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

func _BookingService_WatchBookings_Handler(srv any, stream grpc.ServerStream) error {
	m := new(emptypb.Empty)
	if err := stream.RecvMsg(m); err != nil {
		return err
	}
	return srv.(BookingServiceServer).WatchBookings(m, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

var BookingService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*BookingServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ListWeeks",
			Handler:    unary(BookingService_ListWeeks_FullMethodName, BookingServiceServer.ListWeeks),
		},
		{
			MethodName: "GetWeekGrid",
			Handler:    unary(BookingService_GetWeekGrid_FullMethodName, BookingServiceServer.GetWeekGrid),
		},
		{
			MethodName: "ConfirmBooking",
			Handler:    unary(BookingService_ConfirmBooking_FullMethodName, BookingServiceServer.ConfirmBooking),
		},
		{
			MethodName: "CancelBooking",
			Handler:    unary(BookingService_CancelBooking_FullMethodName, BookingServiceServer.CancelBooking),
		},
		{
			MethodName: "GetPastStatistics",
			Handler:    unary(BookingService_GetPastStatistics_FullMethodName, BookingServiceServer.GetPastStatistics),
		},
		{
			MethodName: "ListUpcomingBookings",
			Handler:    unary(BookingService_ListUpcomingBookings_FullMethodName, BookingServiceServer.ListUpcomingBookings),
		},
		{
			MethodName: "ListAllBookings",
			Handler:    unary(BookingService_ListAllBookings_FullMethodName, BookingServiceServer.ListAllBookings),
		},
		{
			MethodName: "ListWeekBookings",
			Handler:    unary(BookingService_ListWeekBookings_FullMethodName, BookingServiceServer.ListWeekBookings),
		},
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    "WatchBookings",
			Handler:       _BookingService_WatchBookings_Handler,
			ServerStreams: true,
		},
	},
	Metadata: "booking/v1/booking.proto",
}
