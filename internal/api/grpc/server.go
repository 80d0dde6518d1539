package api

import (
	"context"
	"log/slog"

	"github.com/adamanr/shift_service/internal/controllers"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type Server struct {
	deps        *controllers.Dependens
	Controllers *controllers.Controllers
}

// NewServer create new server.
func NewServer(deps *controllers.Dependens) *Server {
	return &Server{
		deps:        deps,
		Controllers: controllers.NewControllers(deps),
	}
}

var _ ShiftServiceServer = &Server{}

// ApproveCoverRequest approves a cover request and reassigns its shift.
func (s *Server) ApproveCoverRequest(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	result, err := s.Controllers.CoverRequestController.Approve(ctx, req.GetValue())
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "Error approving cover request", slog.String("error", err.Error()))
		return nil, grpcError(err)
	}

	return s.grpcResponse(ctx, result)
}

// DenyCoverRequest denies a single open cover request.
func (s *Server) DenyCoverRequest(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	scr, err := s.Controllers.CoverRequestController.Deny(ctx, req.GetValue())
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "Error denying cover request", slog.String("error", err.Error()))
		return nil, grpcError(err)
	}

	return s.grpcResponse(ctx, scr)
}

// UpdateTimeOffRequest takes request_id plus the patch fields in one struct.
func (s *Server) UpdateTimeOffRequest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, patch, err := ProtoToTimeOffPatch(req)
	if err != nil {
		s.deps.Logger.WarnContext(ctx, "Invalid time off patch", slog.String("error", err.Error()))
		return nil, grpcError(err)
	}

	tor, err := s.Controllers.TimeOffController.Update(ctx, id, patch)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "Error updating time off request", slog.String("error", err.Error()))
		return nil, grpcError(err)
	}

	return s.grpcResponse(ctx, tor)
}

func (s *Server) grpcResponse(ctx context.Context, v any) (*structpb.Struct, error) {
	data, err := ToStruct(v)
	if err != nil {
		s.deps.Logger.ErrorContext(ctx, "Error convert to structpb", slog.String("error", err.Error()))
		return nil, grpcError(err)
	}

	return data, nil
}
