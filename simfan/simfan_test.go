package simfan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
)

func TestPropGetSet(t *testing.T) {
	ctx := context.Background()
	p := NewProp(10)

	v, err := p.Set(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = p.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	gets, sets := p.Calls()
	assert.Equal(t, 1, gets)
	assert.Equal(t, 1, sets)
}

func TestPropFail(t *testing.T) {
	ctx := context.Background()
	p := NewProp(true)
	boom := errors.New("boom")

	p.Fail(boom)
	_, err := p.Set(ctx, false)
	assert.ErrorIs(t, err, boom)
	_, err = p.Get(ctx)
	assert.ErrorIs(t, err, boom)
	assert.True(t, p.Value(), "failed set must not change the value")

	p.Fail(nil)
	_, err = p.Set(ctx, false)
	assert.NoError(t, err)
	assert.False(t, p.Value())
}

func TestPropCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewProp("x").Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadyFiresRegisteredAndLateCallbacks(t *testing.T) {
	f := NewFan(Capabilities{Fan: true}, "3.1.0")

	var early, late int
	f.OnReady(func(baf.Fan) { early++ })
	f.Ready()
	f.OnReady(func(baf.Fan) { late++ })

	assert.Equal(t, 1, early)
	assert.Equal(t, 1, late)

	f.Ready()
	assert.Equal(t, 2, early)
	assert.Equal(t, 2, late)
}

func TestDescriptionAutoReady(t *testing.T) {
	d := NewDescription("Porch", "Haiku H/I Series", "20:F8:5E:00:00:01", "3.1.0", Capabilities{Fan: true, Eco: true})
	d.ReadyDelay = 10 * time.Millisecond

	h := d.Initialize()
	require.NotNil(t, d.Handle())

	ready := make(chan baf.Fan, 1)
	h.OnReady(func(f baf.Fan) { ready <- f })

	select {
	case f := <-ready:
		assert.True(t, f.HasFan())
		assert.True(t, f.HasEco())
		assert.False(t, f.HasLight())
		v, err := f.Version().Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "3.1.0", v)
	case <-time.After(time.Second):
		t.Fatal("ready never fired")
	}
}

func TestDiscoverer(t *testing.T) {
	s := &Discoverer{Devices: []*Description{
		NewDescription("A", "m", "1", "", Capabilities{}),
		NewDescription("B", "m", "2", "", Capabilities{}),
	}}

	ds, err := s.Discover(context.Background())
	require.NoError(t, err)
	require.Len(t, ds, 2)
	assert.Equal(t, "2", ds[1].DeviceID())
}
