package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/adamanr/shift_service/internal/controllers"
	"github.com/adamanr/shift_service/internal/entity"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

var errMissingRequestID = errors.New("request_id is required")

// grpcError maps controller sentinels to status codes.
func grpcError(err error) error {
	switch {
	case errors.Is(err, controllers.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, controllers.ErrInvalidState):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, controllers.ErrValidation), errors.Is(err, errMissingRequestID):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

// ToStruct converts a JSON-tagged entity into a protobuf Struct.
func ToStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}

	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	return structpb.NewStruct(m)
}

// ProtoToTimeOffPatch splits request_id off the struct and decodes the
// remaining fields as a patch. Explicit nulls stay null.
func ProtoToTimeOffPatch(req *structpb.Struct) (int64, entity.TimeOffPatch, error) {
	var patch entity.TimeOffPatch

	fields := req.AsMap()

	rawID, ok := fields["request_id"].(float64)
	if !ok || rawID <= 0 || rawID != float64(int64(rawID)) {
		return 0, patch, errMissingRequestID
	}
	delete(fields, "request_id")

	raw, err := json.Marshal(fields)
	if err != nil {
		return 0, patch, fmt.Errorf("%w: %w", controllers.ErrValidation, err)
	}
	if err := json.Unmarshal(raw, &patch); err != nil {
		return 0, patch, fmt.Errorf("%w: %w", controllers.ErrValidation, err)
	}

	return int64(rawID), patch, nil
}

// UnaryLogger logs every call with its code and duration.
func UnaryLogger(logger *slog.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)

		logger.InfoContext(ctx, "gRPC request",
			slog.String("method", info.FullMethod),
			slog.String("code", status.Code(err).String()),
			slog.Duration("duration", time.Since(start)),
		)

		return resp, err
	}
}
