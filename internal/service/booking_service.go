package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/goccy/go-json"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	bookingpb "github.com/Leganyst/room-booking/internal/api/booking/v1"
	"github.com/Leganyst/room-booking/internal/booking"
	"github.com/Leganyst/room-booking/internal/calendar"
	"github.com/Leganyst/room-booking/internal/model"
)

// BookingService — gRPC-обёртка над Scheduler.
type BookingService struct {
	bookingpb.UnimplementedBookingServiceServer

	scheduler *Scheduler
}

func NewBookingService(scheduler *Scheduler) *BookingService {
	return &BookingService{scheduler: scheduler}
}

func (s *BookingService) ListWeeks(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	now := s.scheduler.Now()
	def, ok := s.scheduler.DefaultWeek(now)
	resp := map[string]any{
		"weeks":       s.scheduler.Weeks(now),
		"currentWeek": calendar.WeekNumberOf(now),
	}
	if ok {
		resp["defaultWeek"] = def
	}
	return toStruct(resp)
}

func (s *BookingService) GetWeekGrid(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	now := s.scheduler.Now()
	week, err := weekArg(req, s.scheduler, now)
	if err != nil {
		return nil, err
	}
	return toStruct(s.scheduler.WeekGrid(week, now))
}

func (s *BookingService) ConfirmBooking(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	now := s.scheduler.Now()
	week, err := weekArg(req, s.scheduler, now)
	if err != nil {
		return nil, err
	}
	day, ok := intField(req, "dayIndex")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "dayIndex is required")
	}
	period, ok := intField(req, "period")
	if !ok {
		return nil, status.Error(codes.InvalidArgument, "period is required")
	}

	entry, err := s.scheduler.Confirm(ctx, ConfirmRequest{
		Week:     week,
		DayIndex: day,
		Period:   period,
		Details: model.BookingDetails{
			TeacherName: stringField(req, "teacherName"),
			Subject:     stringField(req, "subject"),
			Lesson:      stringField(req, "lesson"),
			Grade:       stringField(req, "grade"),
		},
	}, now)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(map[string]any{
		"slotKey": entry.SlotKey,
		"booking": entry.Booking,
		"summary": calendar.FormatSlot(entry.Booking, true, entry.SlotKey),
	})
}

func (s *BookingService) CancelBooking(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	key := stringField(req, "slotKey")
	if key == "" {
		return nil, status.Error(codes.InvalidArgument, "slotKey is required")
	}
	if _, _, err := calendar.ParseSlotKey(key, s.scheduler.Location()); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if err := s.scheduler.Cancel(ctx, key, stringField(req, "secret")); err != nil {
		return nil, toStatus(err)
	}
	return &emptypb.Empty{}, nil
}

func (s *BookingService) GetPastStatistics(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(s.scheduler.PastStats(s.scheduler.Now()))
}

func (s *BookingService) ListUpcomingBookings(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return toStruct(map[string]any{"items": s.scheduler.Upcoming(s.scheduler.Now())})
}

func (s *BookingService) ListAllBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	page, _ := intField(req, "page")
	size, _ := intField(req, "pageSize")
	all := s.scheduler.AllBookings(s.scheduler.Now())
	return toStruct(calendar.Paginate(all, page, size))
}

func (s *BookingService) ListWeekBookings(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	now := s.scheduler.Now()
	week, err := weekArg(req, s.scheduler, now)
	if err != nil {
		return nil, err
	}
	return toStruct(map[string]any{"week": week, "items": s.scheduler.WeekBookings(week, now)})
}

// WatchBookings шлёт текущий набор и каждый следующий, пока клиент не отключится.
func (s *BookingService) WatchBookings(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	ctx := stream.Context()
	for set := range s.scheduler.Watch(ctx) {
		msg, err := toStruct(map[string]any{"bookings": set})
		if err != nil {
			return err
		}
		if err := stream.Send(msg); err != nil {
			return err
		}
	}
	if err := ctx.Err(); err != nil {
		return status.FromContextError(err).Err()
	}
	return nil
}

// toStatus переводит ошибки бронирования в коды gRPC.
func toStatus(err error) error {
	switch {
	case errors.Is(err, booking.ErrIncompleteBooking), errors.Is(err, booking.ErrInvalidBooking):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, booking.ErrWeekNotBookable):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, booking.ErrSlotOccupied):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, booking.ErrUnauthorized):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, booking.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, booking.ErrStoreUnavailable):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Errorf(codes.Internal, "internal error: %v", err)
	}
}

// toStruct кодирует значение через JSON, чтобы поля совпадали с HTTP API.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// weekArg берёт неделю из запроса, без неё — неделю по умолчанию.
func weekArg(req *structpb.Struct, s *Scheduler, now time.Time) (int, error) {
	if week, ok := intField(req, "week"); ok {
		return week, nil
	}
	if week, ok := s.DefaultWeek(now); ok {
		return week, nil
	}
	return 0, status.Error(codes.FailedPrecondition, "no bookable week in the academic year")
}

func intField(req *structpb.Struct, name string) (int, bool) {
	v, ok := req.GetFields()[name]
	if !ok {
		return 0, false
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, false
	}
	return int(n.NumberValue), true
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}
