// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcserver exposes a local agent to remote CLIs over the same
// Struct-based unary method the grpcclient package calls.
package grpcserver

import (
	"context"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"sqlagent/cli/internal/bridge/model"
)

// Handler answers one remote question.
type Handler interface {
	Ask(ctx context.Context, req model.AskRequest) (model.AskResponse, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req model.AskRequest) (model.AskResponse, error)

// Ask calls f.
func (f HandlerFunc) Ask(ctx context.Context, req model.AskRequest) (model.AskResponse, error) {
	return f(ctx, req)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: model.ServiceName,
	HandlerType: (*Handler)(nil),
	Methods: []grpc.MethodDesc{{
		MethodName: model.MethodName,
		Handler:    askHandler,
	}},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog_agent.proto",
}

// Register installs h on s.
func Register(s *grpc.Server, h Handler) {
	s.RegisterService(&serviceDesc, h)
}

func askHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := &structpb.Struct{}
	if err := dec(in); err != nil {
		return nil, err
	}
	call := func(ctx context.Context, req any) (any, error) {
		return serve(ctx, srv.(Handler), req.(*structpb.Struct))
	}
	if interceptor == nil {
		return call(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: model.MethodAsk}
	return interceptor(ctx, in, info, call)
}

func serve(ctx context.Context, h Handler, in *structpb.Struct) (*structpb.Struct, error) {
	req, err := model.RequestFromStruct(in)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	if req.TurnID == "" {
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if v := md.Get("x-turn-id"); len(v) > 0 {
				req.TurnID = v[0]
			}
		}
	}

	resp, err := h.Ask(ctx, req)
	if err != nil {
		log.Error().Err(err).Str("turn_id", req.TurnID).Msg("remote ask failed")
		if ctx.Err() != nil {
			return nil, status.FromContextError(ctx.Err()).Err()
		}
		return nil, status.Error(codes.Internal, err.Error())
	}
	return resp.ToStruct()
}
