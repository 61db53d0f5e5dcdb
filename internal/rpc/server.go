package rpc

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/wishcalc/internal/api"
)

// Server adapts api.Service to SimulatorServer.
type Server struct {
	svc *api.Service
	log *zap.Logger
}

var _ SimulatorServer = (*Server)(nil)

func NewServer(svc *api.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{svc: svc, log: log}
}

func (s *Server) Simulate(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.SimulateRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Simulate(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(resp)
}

func (s *Server) Optimize(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.OptimizeRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.Optimize(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(resp)
}

func (s *Server) TopUp(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	var req api.TopUpRequest
	if err := decode(in, &req); err != nil {
		return nil, err
	}
	resp, err := s.svc.TopUp(ctx, req)
	if err != nil {
		return nil, toStatus(err)
	}
	return encode(resp)
}

// LoggingInterceptor logs every unary call with its duration and code.
func (s *Server) LoggingInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	s.log.Info("grpc call",
		zap.String("method", info.FullMethod),
		zap.Stringer("code", status.Code(err)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return resp, err
}

// decode converts a Struct into a request DTO through its JSON form.
func decode(in *structpb.Struct, v any) error {
	b, err := protojson.Marshal(in)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "encode request: %v", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode request: %v", err)
	}
	return nil
}

func encode(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	out := new(structpb.Struct)
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

func toStatus(err error) error {
	switch api.Classify(err) {
	case api.KindInvalid:
		return status.Error(codes.InvalidArgument, err.Error())
	case api.KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case api.KindCanceled:
		return status.FromContextError(err).Err()
	case api.KindUnavailable:
		return status.Error(codes.Unavailable, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}
