package bafhkbridge

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/brutella/hap/characteristic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/baf"
	"github.com/cloudkucooland/HomeKitBridges/BAFHKBridge/simfan"
)

type MockProperty[T any] struct {
	mock.Mock
}

func (m *MockProperty[T]) Get(ctx context.Context) (T, error) {
	args := m.Called(ctx)
	return args.Get(0).(T), args.Error(1)
}

func (m *MockProperty[T]) Set(ctx context.Context, v T) (T, error) {
	args := m.Called(ctx, v)
	return args.Get(0).(T), args.Error(1)
}

// mockedFan is a simulated fan whose fan properties are mocks
type mockedFan struct {
	*simfan.Fan
	mode  *MockProperty[baf.OperatingMode]
	speed *MockProperty[int]
}

func newMockedFan() *mockedFan {
	return &mockedFan{
		Fan:   simfan.NewFan(simfan.Capabilities{Fan: true}, "1.0"),
		mode:  new(MockProperty[baf.OperatingMode]),
		speed: new(MockProperty[int]),
	}
}

func (m *mockedFan) FanMode() baf.Property[baf.OperatingMode] { return m.mode }
func (m *mockedFan) FanSpeedPercent() baf.Property[int]       { return m.speed }

func bindingNamed(t *testing.T, bs []binding, name string) binding {
	t.Helper()
	for _, b := range bs {
		if b.name == name {
			return b
		}
	}
	require.Failf(t, "missing binding", "%s", name)
	return binding{}
}

func TestActiveSetReturnsConfirmedValue(t *testing.T) {
	f := newMockedFan()
	// the device refuses to turn on and reports Off
	f.mode.On("Set", mock.Anything, baf.On).Return(baf.Off, nil)

	active := bindingNamed(t, fanBindings(f), "Active")
	v, err := active.set(context.Background(), characteristic.ActiveActive)
	require.NoError(t, err)
	assert.Equal(t, characteristic.ActiveInactive, v)
	f.mode.AssertExpectations(t)
}

func TestActiveGetPassesDeviceErrorThrough(t *testing.T) {
	f := newMockedFan()
	boom := errors.New("timeout")
	f.mode.On("Get", mock.Anything).Return(baf.Off, boom)

	active := bindingNamed(t, fanBindings(f), "Active")
	_, err := active.get(context.Background())
	assert.Same(t, boom, err, "device errors are not wrapped")
}

func TestActiveGetUnknownDeviceMode(t *testing.T) {
	f := newMockedFan()
	f.mode.On("Get", mock.Anything).Return(baf.OperatingMode(9), nil)

	active := bindingNamed(t, fanBindings(f), "Active")
	_, err := active.get(context.Background())
	assert.ErrorIs(t, err, ErrUnmappedValue)
	assert.Equal(t, statusCommunicationFailure, hapStatus(err))
}

func TestRotationSpeedUsageErrorMakesNoDeviceCall(t *testing.T) {
	f := newMockedFan()

	speed := bindingNamed(t, fanBindings(f), "RotationSpeed")
	for _, v := range []interface{}{"50", nil, true, []int{50}} {
		_, err := speed.set(context.Background(), v)
		assert.ErrorIs(t, err, ErrInvalidValue, "%#v", v)
	}
	f.speed.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestRotationSpeedRounds(t *testing.T) {
	f := newMockedFan()
	f.speed.On("Set", mock.Anything, 67).Return(67, nil)

	speed := bindingNamed(t, fanBindings(f), "RotationSpeed")
	v, err := speed.set(context.Background(), float32(66.5))
	require.NoError(t, err)
	assert.Equal(t, 67.0, v)
	f.speed.AssertExpectations(t)
}

func TestSetterTypeChecks(t *testing.T) {
	f := simfan.NewFan(simfan.Capabilities{Fan: true, Light: true}, "")
	ctx := context.Background()

	on := boolBinding("Whoosh", characteristic.TypeOn, newOn, f.Whoosh())
	_, err := on.set(ctx, "yes")
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = on.set(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, f.Props.Whoosh.Value())

	brightness := intBinding("Brightness", characteristic.TypeBrightness, newBrightness, f.LightPercent())
	_, err = brightness.set(ctx, 12.5)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = brightness.set(ctx, 12.0)
	assert.NoError(t, err)
	assert.Equal(t, 12, f.Props.LightPercent.Value())

	direction := bindingNamed(t, fanBindings(f), "RotationDirection")
	_, err = direction.set(ctx, 2)
	assert.ErrorIs(t, err, ErrInvalidValue)
}

func TestConversions(t *testing.T) {
	f, ok := toFloat(uint8(7))
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	_, ok = toFloat("7")
	assert.False(t, ok)

	i, ok := toInt(int64(42))
	assert.True(t, ok)
	assert.Equal(t, 42, i)

	_, ok = toInt(math.NaN())
	assert.False(t, ok)
	_, ok = toInt(1.5)
	assert.False(t, ok)

	b, ok := toBool(0)
	assert.True(t, ok)
	assert.False(t, b)
	_, ok = toBool(2)
	assert.False(t, ok)
}

func TestHAPStatus(t *testing.T) {
	assert.Equal(t, statusSuccess, hapStatus(nil))
	assert.Equal(t, statusInvalidValue, hapStatus(invalid("RotationSpeed", "x")))
	assert.Equal(t, statusCommunicationFailure, hapStatus(errors.New("offline")))
	assert.Equal(t, statusCommunicationFailure, hapStatus(context.DeadlineExceeded))
}

func TestAttachReadOnly(t *testing.T) {
	c := characteristic.NewFirmwareRevision().C
	attach(c, versionBinding(simfan.NewFan(simfan.Capabilities{}, "9.9")), "test")

	assert.Nil(t, c.SetValueRequestFunc)
	v, code := c.ValueRequestFunc(nil)
	assert.Equal(t, statusSuccess, code)
	assert.Equal(t, "9.9", v)
	// the server's cached value follows the device
	assert.Equal(t, "9.9", c.Val)
}
