// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcclient calls a remote catalog agent over gRPC. It uses a unary
// call carrying protobuf Struct messages, so no generated stubs are needed.
package grpcclient

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"sqlagent/cli/internal/bridge/model"
)

// Client is a connection to a remote agent.
type Client struct {
	conn *grpc.ClientConn
}

// Target resolves an agent address. "grpc://host:port" selects plaintext;
// anything else ("grpcs://host", "host", "host:port") uses TLS with SNI set
// from the host and port 443 when none is given.
func Target(addr string) (target string, creds credentials.TransportCredentials) {
	if rest, ok := strings.CutPrefix(addr, "grpc://"); ok {
		return rest, insecure.NewCredentials()
	}
	addr = strings.TrimPrefix(addr, "grpcs://")

	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	} else {
		addr = net.JoinHostPort(addr, "443")
	}
	return addr, credentials.NewTLS(&tls.Config{ServerName: host, MinVersion: tls.VersionTLS12})
}

// Dial prepares a client for addr. The connection is established lazily on
// the first call. Extra options are appended, e.g. a custom dialer in tests.
func Dial(addr string, opts ...grpc.DialOption) (*Client, error) {
	target, creds := Target(addr)
	all := append([]grpc.DialOption{grpc.WithTransportCredentials(creds)}, opts...)
	// passthrough hands the address to the dialer as is, like grpc.Dial did.
	conn, err := grpc.NewClient("passthrough:///"+target, all...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn}, nil
}

// Ask sends one question and waits for the answer.
func (c *Client) Ask(ctx context.Context, req model.AskRequest) (model.AskResponse, error) {
	in, err := req.ToStruct()
	if err != nil {
		return model.AskResponse{}, err
	}
	if req.TurnID != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "x-turn-id", req.TurnID)
	}

	out := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, model.MethodAsk, in, out); err != nil {
		if st, ok := status.FromError(err); ok {
			return model.AskResponse{}, fmt.Errorf("remote agent: %s: %s", strings.ToLower(st.Code().String()), st.Message())
		}
		return model.AskResponse{}, err
	}
	return model.ResponseFromStruct(out)
}

// Close releases the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
