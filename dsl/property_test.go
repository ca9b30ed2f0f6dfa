package dsl

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type gateway struct {
	upstream *Endpoint
}

type gatewayBuilder struct {
	Errors
	g gateway
}

func (b *gatewayBuilder) Upstream(e *Endpoint) *gatewayBuilder {
	b.g.upstream = e
	return b
}

// TestProperty_WithAndBuild verifies both the prebuilt and the procedure path reach the setter.
func TestProperty_WithAndBuild(t *testing.T) {
	t.Parallel()

	_, k := newEndpointKind(t)
	upstream := Property[*gatewayBuilder, *Endpoint, *EndpointBuilder]{
		Kind: k,
		Set:  (*gatewayBuilder).Upstream,
	}

	prebuilt := k.MustBuild(func(b *EndpointBuilder) { b.Host("api") })

	gb := &gatewayBuilder{}
	require.Same(t, gb, upstream.With(gb, prebuilt))
	assert.Same(t, prebuilt, gb.g.upstream)

	gb2 := &gatewayBuilder{}
	ret, err := upstream.Build(gb2, func(b *EndpointBuilder) { b.Host("api") })
	require.NoError(t, err)
	require.Same(t, gb2, ret)
	assert.Equal(t, prebuilt, gb2.g.upstream)
}

// TestProperty_BuildErrorSkipsSetter verifies a failed build leaves the container untouched.
func TestProperty_BuildErrorSkipsSetter(t *testing.T) {
	t.Parallel()

	_, k := newEndpointKind(t)
	upstream := Property[*gatewayBuilder, *Endpoint, *EndpointBuilder]{Kind: k, Set: (*gatewayBuilder).Upstream}

	gb := &gatewayBuilder{}
	ret, err := upstream.Build(gb, func(b *EndpointBuilder) { b.Port(-5) })
	require.Error(t, err)
	assert.Same(t, gb, ret)
	assert.Nil(t, gb.g.upstream)

	_, err = upstream.Build(gb)
	assert.ErrorIs(t, err, ErrNoProcedure)
}

// TestErrors_Accumulates verifies nil errors are dropped and the rest are joined.
func TestErrors_Accumulates(t *testing.T) {
	t.Parallel()

	var e Errors
	require.NoError(t, e.Err())

	e1, e2 := errors.New("first"), errors.New("second")
	e.Fail(nil)
	e.Fail(e1)
	e.Fail(e2)

	err := e.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, e1)
	assert.ErrorIs(t, err, e2)
	assert.Equal(t, "first\nsecond", err.Error())
}
