package grpc

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/vibast-solutions/ms-go-bike-bookings/app/mapper"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/service"
	"github.com/vibast-solutions/ms-go-bike-bookings/app/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

type Server struct {
	bookingService *service.BookingService
}

func NewServer(bookingService *service.BookingService) *Server {
	return &Server{bookingService: bookingService}
}

func (s *Server) Health(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	return toStruct(&types.HealthResponse{Status: "ok"})
}

func (s *Server) GetAvailability(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := &types.GetAvailabilityRequest{Date: stringField(in, "date")}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.bookingService.Availability(ctx, req.GetDate())
	if err != nil {
		return nil, mapError(ctx, err, "Availability failed")
	}

	return toStruct(mapper.AvailabilityToResponse(item))
}

func (s *Server) GetHistory(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	req := &types.GetHistoryRequest{
		Tab:    strings.ToLower(stringField(in, "tab")),
		Sender: stringField(in, "sender"),
	}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.bookingService.History(ctx, service.HistoryQuery{Tab: req.GetTab(), Sender: req.GetSender()})
	if err != nil {
		return nil, mapError(ctx, err, "History failed")
	}

	if item.Tab != "" {
		return toStruct(mapper.HistoryTabToResponse(item, s.bookingService.Catalog()))
	}
	return toStruct(mapper.HistoryToResponse(item, s.bookingService.Catalog()))
}

func (s *Server) GetTransaction(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	chainID, err := int64Field(in, "chainId")
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "chainId must be a number")
	}
	req := &types.GetTransactionRequest{TxHash: stringField(in, "txHash"), ChainId: chainID}
	if err := req.Validate(); err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	item, err := s.bookingService.GetTransaction(ctx, req.GetTxHash(), req.GetChainId())
	if err != nil {
		return nil, mapError(ctx, err, "Get transaction failed")
	}

	return toStruct(mapper.TransactionToResponse(item))
}

func mapError(ctx context.Context, err error, message string) error {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrPaymentNotFound):
		return status.Error(codes.NotFound, "payment not found")
	default:
		loggerWithContext(ctx).WithError(err).Error(message)
		return status.Error(codes.Internal, "internal server error")
	}
}

func toStruct(v interface{}) (*structpb.Struct, error) {
	out, err := mapper.ToStruct(v)
	if err != nil {
		return nil, status.Error(codes.Internal, "internal server error")
	}
	return out, nil
}

func stringField(in *structpb.Struct, name string) string {
	return strings.TrimSpace(in.GetFields()[name].GetStringValue())
}

// int64Field accepts both number and string values; JSON clients tend to send
// chain ids either way.
func int64Field(in *structpb.Struct, name string) (int64, error) {
	value, ok := in.GetFields()[name]
	if !ok || value == nil {
		return 0, nil
	}
	switch kind := value.GetKind().(type) {
	case *structpb.Value_NumberValue:
		return int64(kind.NumberValue), nil
	case *structpb.Value_StringValue:
		raw := strings.TrimSpace(kind.StringValue)
		if raw == "" {
			return 0, nil
		}
		return strconv.ParseInt(raw, 10, 64)
	default:
		return 0, errors.New("unsupported value")
	}
}
