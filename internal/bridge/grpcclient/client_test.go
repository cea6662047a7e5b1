package grpcclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTarget(t *testing.T) {
	cases := []struct {
		addr, target, proto string
	}{
		{"grpc://localhost:50051", "localhost:50051", "insecure"},
		{"agent.example.com", "agent.example.com:443", "tls"},
		{"grpcs://agent.example.com:8443", "agent.example.com:8443", "tls"},
	}
	for _, c := range cases {
		target, creds := Target(c.addr)
		assert.Equal(t, c.target, target, c.addr)
		assert.Equal(t, c.proto, creds.Info().SecurityProtocol, c.addr)
	}
}
