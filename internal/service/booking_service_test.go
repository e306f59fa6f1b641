package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	bookingpb "github.com/Leganyst/room-booking/internal/api/booking/v1"
	"github.com/Leganyst/room-booking/internal/booking"
)

func newBookingClient(t *testing.T) (bookingpb.BookingServiceClient, *Scheduler) {
	t.Helper()
	sched, _ := newLocalScheduler(t)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	bookingpb.RegisterBookingServiceServer(srv, NewBookingService(sched))
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return bookingpb.NewBookingServiceClient(conn), sched
}

func mustStruct(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	if err != nil {
		t.Fatalf("struct: %v", err)
	}
	return s
}

func confirmArgs(t *testing.T, week, day, period int) *structpb.Struct {
	return mustStruct(t, map[string]any{
		"week": week, "dayIndex": day, "period": period,
		"teacherName": "أحمد", "subject": "Math", "lesson": "Fractions", "grade": "10 أ",
	})
}

func TestBookingService_ConfirmAndCancel(t *testing.T) {
	client, sched := newBookingClient(t)
	ctx := context.Background()

	resp, err := client.ConfirmBooking(ctx, confirmArgs(t, 5, 4, 2))
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	key := resp.GetFields()["slotKey"].GetStringValue()
	if key != "2025-9-9-2" {
		t.Fatalf("expected slot key 2025-9-9-2, got %q", key)
	}
	if got := resp.GetFields()["summary"].GetStringValue(); got != "الخميس 9/10، الحصة 2 (ID: 2025-9-9-2)" {
		t.Fatalf("unexpected summary %q", got)
	}

	_, err = client.ConfirmBooking(ctx, confirmArgs(t, 5, 4, 2))
	if status.Code(err) != codes.AlreadyExists {
		t.Fatalf("expected AlreadyExists, got %v", err)
	}

	_, err = client.CancelBooking(ctx, mustStruct(t, map[string]any{"slotKey": key, "secret": "nope"}))
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
	if _, err := client.CancelBooking(ctx, mustStruct(t, map[string]any{"slotKey": key, "secret": booking.DefaultCancelSecret})); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if len(sched.Snapshot()) != 0 {
		t.Fatalf("expected empty snapshot after cancel")
	}
	_, err = client.CancelBooking(ctx, mustStruct(t, map[string]any{"slotKey": key, "secret": booking.DefaultCancelSecret}))
	if status.Code(err) != codes.NotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestBookingService_ValidationCodes(t *testing.T) {
	client, _ := newBookingClient(t)
	ctx := context.Background()

	_, err := client.ConfirmBooking(ctx, confirmArgs(t, 6, 0, 1))
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("expected FailedPrecondition for closed week, got %v", err)
	}

	args := confirmArgs(t, 5, 1, 1)
	args.Fields["subject"] = structpb.NewStringValue("")
	_, err = client.ConfirmBooking(ctx, args)
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument, got %v", err)
	}

	_, err = client.ConfirmBooking(ctx, mustStruct(t, map[string]any{"week": 5}))
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("expected InvalidArgument without dayIndex, got %v", err)
	}
}

func TestBookingService_Views(t *testing.T) {
	client, _ := newBookingClient(t)
	ctx := context.Background()

	weeks, err := client.ListWeeks(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("list weeks: %v", err)
	}
	if got := weeks.GetFields()["defaultWeek"].GetNumberValue(); got != 5 {
		t.Fatalf("expected default week 5, got %v", got)
	}
	if n := len(weeks.GetFields()["weeks"].GetListValue().GetValues()); n != 38 {
		t.Fatalf("expected 38 weeks, got %d", n)
	}

	grid, err := client.GetWeekGrid(ctx, &structpb.Struct{})
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	if days := grid.GetFields()["days"].GetListValue().GetValues(); len(days) != 5 {
		t.Fatalf("expected 5 days, got %d", len(days))
	}

	for p := 1; p <= 3; p++ {
		if _, err := client.ConfirmBooking(ctx, confirmArgs(t, 5, 0, p)); err != nil {
			t.Fatalf("confirm: %v", err)
		}
	}

	page, err := client.ListAllBookings(ctx, mustStruct(t, map[string]any{"page": 1, "pageSize": 2}))
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	f := page.GetFields()
	if f["total"].GetNumberValue() != 3 || !f["hasNext"].GetBoolValue() || len(f["items"].GetListValue().GetValues()) != 2 {
		t.Fatalf("unexpected page: %v", page)
	}

	stats, err := client.GetPastStatistics(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.GetFields()["totalBookings"].GetNumberValue() != 3 {
		t.Fatalf("expected 3 past bookings, got %v", stats)
	}

	week, err := client.ListWeekBookings(ctx, mustStruct(t, map[string]any{"week": 5}))
	if err != nil {
		t.Fatalf("week bookings: %v", err)
	}
	if n := len(week.GetFields()["items"].GetListValue().GetValues()); n != 3 {
		t.Fatalf("expected 3 week bookings, got %d", n)
	}

	if _, err := client.ListUpcomingBookings(ctx, &emptypb.Empty{}); err != nil {
		t.Fatalf("upcoming: %v", err)
	}
}

func TestBookingService_ListingsMarkPastBookings(t *testing.T) {
	client, _ := newBookingClient(t)
	ctx := context.Background()

	// Воскресенье 5 октября уже прошло, четверг 9 октября впереди.
	for _, args := range []*structpb.Struct{confirmArgs(t, 5, 0, 1), confirmArgs(t, 5, 4, 2)} {
		if _, err := client.ConfirmBooking(ctx, args); err != nil {
			t.Fatalf("confirm: %v", err)
		}
	}

	page, err := client.ListAllBookings(ctx, &structpb.Struct{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	past := map[string]bool{}
	for _, v := range page.GetFields()["items"].GetListValue().GetValues() {
		f := v.GetStructValue().GetFields()
		past[f["slotKey"].GetStringValue()] = f["past"].GetBoolValue()
	}
	if len(past) != 2 || !past["2025-9-5-1"] || past["2025-9-9-2"] {
		t.Fatalf("unexpected past flags: %v", past)
	}
}

func TestBookingService_CancelRejectsMalformedKey(t *testing.T) {
	client, _ := newBookingClient(t)

	for _, key := range []string{"abc", "2025-12-1-1", "2025-9-9-0"} {
		_, err := client.CancelBooking(context.Background(), mustStruct(t, map[string]any{"slotKey": key, "secret": booking.DefaultCancelSecret}))
		if status.Code(err) != codes.InvalidArgument {
			t.Fatalf("%s: expected InvalidArgument, got %v", key, err)
		}
	}
}

func TestBookingService_WatchBookings(t *testing.T) {
	client, _ := newBookingClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := client.WatchBookings(ctx, &emptypb.Empty{})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	first, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv initial: %v", err)
	}
	if n := len(first.GetFields()["bookings"].GetStructValue().GetFields()); n != 0 {
		t.Fatalf("expected empty initial set, got %d", n)
	}

	if _, err := client.ConfirmBooking(ctx, confirmArgs(t, 5, 4, 1)); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	next, err := stream.Recv()
	if err != nil {
		t.Fatalf("recv update: %v", err)
	}
	if _, ok := next.GetFields()["bookings"].GetStructValue().GetFields()["2025-9-9-1"]; !ok {
		t.Fatalf("expected streamed booking, got %v", next)
	}
}

func TestToStatus(t *testing.T) {
	cases := []struct {
		err  error
		want codes.Code
	}{
		{booking.ErrIncompleteBooking, codes.InvalidArgument},
		{booking.ErrInvalidBooking, codes.InvalidArgument},
		{booking.ErrWeekNotBookable, codes.FailedPrecondition},
		{booking.ErrSlotOccupied, codes.AlreadyExists},
		{booking.ErrUnauthorized, codes.PermissionDenied},
		{booking.ErrNotFound, codes.NotFound},
		{fmt.Errorf("%w: %w", booking.ErrStoreUnavailable, errors.New("eof")), codes.Unavailable},
		{errors.New("boom"), codes.Internal},
	}
	for _, tc := range cases {
		if got := status.Code(toStatus(tc.err)); got != tc.want {
			t.Fatalf("%v: expected %v, got %v", tc.err, tc.want, got)
		}
	}
}
