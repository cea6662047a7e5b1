// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package bridge connects the CLI to an agent running in another process.
// A remote agent is reached over gRPC and satisfies the same agent.Agent
// contract as the local SQL agent, so the assistant does not care where
// the reasoning happens. Serve does the reverse and publishes a local agent.
package bridge

import (
	"context"

	"google.golang.org/grpc"

	"sqlagent/cli/internal/agent"
	"sqlagent/cli/internal/bridge/grpcclient"
	"sqlagent/cli/internal/bridge/grpcserver"
	"sqlagent/cli/internal/bridge/model"
)

// Remote is an agent.Agent backed by a gRPC connection.
type Remote struct {
	client *grpcclient.Client
}

var _ agent.Agent = (*Remote)(nil)

// New returns a remote agent for addr. See grpcclient.Target for the
// accepted address forms.
func New(addr string, opts ...grpc.DialOption) (*Remote, error) {
	c, err := grpcclient.Dial(addr, opts...)
	if err != nil {
		return nil, err
	}
	return &Remote{client: c}, nil
}

// Invoke forwards the question to the remote agent.
func (r *Remote) Invoke(ctx context.Context, input string) (*agent.Response, error) {
	resp, err := r.client.Ask(ctx, model.AskRequest{Input: input, TurnID: agent.TurnID(ctx)})
	if err != nil {
		return nil, err
	}
	out := &agent.Response{Output: resp.Output}
	for _, s := range resp.Steps {
		out.Steps = append(out.Steps, agent.Step(s))
	}
	return out, nil
}

// Close releases the connection.
func (r *Remote) Close() error {
	return r.client.Close()
}

// Serve registers a on s so that remote CLIs can use it.
func Serve(s *grpc.Server, a agent.Agent) {
	grpcserver.Register(s, grpcserver.HandlerFunc(func(ctx context.Context, req model.AskRequest) (model.AskResponse, error) {
		if req.TurnID != "" {
			ctx = agent.WithTurnID(ctx, req.TurnID)
		}
		resp, err := a.Invoke(ctx, req.Input)
		if err != nil {
			return model.AskResponse{}, err
		}
		out := model.AskResponse{Output: resp.Output}
		for _, s := range resp.Steps {
			out.Steps = append(out.Steps, model.Step{
				Thought:     s.Thought,
				Action:      s.Action,
				ActionInput: s.ActionInput,
				Observation: s.Observation,
			})
		}
		return out, nil
	}))
}
