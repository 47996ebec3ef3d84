package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestPoolReusesConnectionPerTarget(t *testing.T) {
	p := NewPool()
	defer p.Close()

	a, err := p.GetConnection("passthrough:///svc-a")
	require.NoError(t, err)
	again, err := p.GetConnection("passthrough:///svc-a")
	require.NoError(t, err)
	assert.Same(t, a, again)

	b, err := p.GetConnection("passthrough:///svc-b")
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, p.Len())
}

func TestPoolReplacesClosedConnection(t *testing.T) {
	p := NewPool()
	defer p.Close()

	first, err := p.GetConnection("passthrough:///svc")
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := p.GetConnection("passthrough:///svc")
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 1, p.Len())
}

func TestPoolClose(t *testing.T) {
	noop := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		return invoker(ctx, method, req, reply, cc, opts...)
	}
	p := NewPool(WithInterceptor(noop), WithInterceptor(noop))

	_, err := p.GetConnection("passthrough:///svc")
	require.NoError(t, err)
	require.NoError(t, p.Close())
	assert.Equal(t, 0, p.Len())
}
