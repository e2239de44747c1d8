package gateway_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigbridge/zigbridge-go/pkg/gateway"
)

func newTestSubDevice(t *testing.T, cfg gateway.Config, modelYAML string) (*gateway.SubDevice, *fakeTransport) {
	t.Helper()
	gw, transport := newTestGateway(t, cfg)
	dev := gw.NewSubDevice(gateway.SubDeviceInfo{SID: "lumi.158d0001234567", FWVersion: 145}, loadModel(t, modelYAML))
	return dev, transport
}

func TestSubDeviceConstruction(t *testing.T) {
	dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)

	assert.Zero(t, transport.callCount())
	assert.Equal(t, "lumi.sensor_ht.v1", dev.Model())
	assert.Equal(t, "lumi.sensor_ht", dev.ZigbeeModel())
	assert.Equal(t, "Sensor", dev.DeviceType())
	assert.Equal(t, "Temperature sensor (lumi.158d0001234567)", dev.Name())
	assert.Equal(t, 145, dev.FirmwareVersion())

	// Cache seeded from configured defaults; no default means nil.
	status := dev.Status()
	require.Len(t, status, 3)
	assert.Nil(t, status["temperature"])
	assert.Nil(t, status["humidity"])
	assert.Equal(t, false, status["battery_low"])
}

func TestSubDeviceUpdate(t *testing.T) {
	t.Run("PositionalZipWithDivisor", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		transport.respond = func(command string, params any) ([]any, error) {
			require.Equal(t, "get_device_prop_exp", command)
			// One positional batch: [[sid, temperature, humidity]].
			require.Equal(t, []any{[]any{"lumi.158d0001234567", "temperature", "humidity"}}, params)
			return []any{[]any{5, 100}}, nil
		}

		require.NoError(t, dev.Update(context.Background()))

		value, _ := dev.Property("temperature")
		assert.Equal(t, 5, value)
		value, _ = dev.Property("humidity")
		assert.Equal(t, 10.0, value, "divisor must scale the raw value")
	})

	t.Run("ShortResponse", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		transport.respond = func(string, any) ([]any, error) {
			return []any{[]any{5}}, nil
		}

		err := dev.Update(context.Background())
		var devErr *gateway.DeviceError
		require.ErrorAs(t, err, &devErr)
		assert.Contains(t, devErr.Error(), "temperature")
		assert.Contains(t, devErr.Error(), "lumi.sensor_ht.v1")
	})

	t.Run("NonNumericWithDivisor", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		transport.respond = func(string, any) ([]any, error) {
			return []any{[]any{5, "garbage"}}, nil
		}

		err := dev.Update(context.Background())
		var devErr *gateway.DeviceError
		require.ErrorAs(t, err, &devErr)
	})

	t.Run("NoBatchedProperties", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, "model: lumi.magnet\n")
		require.NoError(t, dev.Update(context.Background()))
		assert.Zero(t, transport.callCount())
	})
}

func TestSubDeviceSend(t *testing.T) {
	t.Run("ScopedToSID", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)

		_, err := dev.Send(context.Background(), "get_battery")
		require.NoError(t, err)

		call := transport.lastCall()
		assert.Equal(t, "get_battery", call.command)
		assert.Equal(t, []any{"lumi.158d0001234567"}, call.params)
		assert.Nil(t, call.extra)
	})

	t.Run("WrapsTransportFailure", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		cause := errors.New("timeout")
		transport.respond = func(string, any) ([]any, error) { return nil, cause }

		_, err := dev.Send(context.Background(), "get_battery")
		var devErr *gateway.DeviceError
		require.ErrorAs(t, err, &devErr)
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, devErr.Error(), "get_battery")
		assert.Contains(t, devErr.Error(), "lumi.sensor_ht.v1")
	})
}

func TestSubDeviceSendArg(t *testing.T) {
	dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)

	_, err := dev.SendArg(context.Background(), "toggle_ctrl_neutral", []any{"channel_0", "toggle"})
	require.NoError(t, err)

	call := transport.lastCall()
	assert.Equal(t, "toggle_ctrl_neutral", call.command)
	assert.Equal(t, []any{"channel_0", "toggle"}, call.params)
	assert.Equal(t, map[string]any{"sid": "lumi.158d0001234567"}, call.extra)

	cause := errors.New("nope")
	transport.respond = func(string, any) ([]any, error) { return nil, cause }
	_, err = dev.SendArg(context.Background(), "toggle_ctrl_neutral", []any{"x"})
	assert.ErrorIs(t, err, cause)
}

func TestSubDeviceGetProperty(t *testing.T) {
	t.Run("RelaysSingleFetch", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		transport.respond = func(string, any) ([]any, error) { return []any{3005}, nil }

		response, err := dev.GetProperty(context.Background(), "voltage")
		require.NoError(t, err)
		assert.Equal(t, []any{3005}, response)

		call := transport.lastCall()
		assert.Equal(t, "get_device_prop", call.command)
		assert.Equal(t, []any{"lumi.158d0001234567", "voltage"}, call.params)
	})

	t.Run("EmptyResponseIsAnError", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		transport.respond = func(string, any) ([]any, error) { return []any{}, nil }

		_, err := dev.GetProperty(context.Background(), "voltage")
		var devErr *gateway.DeviceError
		require.ErrorAs(t, err, &devErr)
		assert.Contains(t, devErr.Error(), `"voltage"`)
	})
}

func TestSubDeviceGetPropertyExpLengthMismatch(t *testing.T) {
	dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
	transport.respond = func(string, any) ([]any, error) {
		return []any{[]any{7}}, nil
	}

	_, err := dev.GetPropertyExp(context.Background(), []string{"a", "b"})
	var devErr *gateway.DeviceError
	require.ErrorAs(t, err, &devErr)
	// The error names both the requested properties and the received values.
	assert.Contains(t, devErr.Error(), "[a b]")
	assert.Contains(t, devErr.Error(), "[7]")
}

func TestSubDeviceSetProperty(t *testing.T) {
	dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)

	_, err := dev.SetProperty(context.Background(), "channel_0", "on")
	require.NoError(t, err)

	call := transport.lastCall()
	assert.Equal(t, "set_device_prop", call.command)
	assert.Equal(t, map[string]any{"sid": "lumi.158d0001234567", "channel_0": "on"}, call.params)

	cause := errors.New("rejected")
	transport.respond = func(string, any) ([]any, error) { return nil, cause }
	_, err = dev.SetProperty(context.Background(), "channel_0", "off")
	var devErr *gateway.DeviceError
	require.ErrorAs(t, err, &devErr)
	assert.Contains(t, devErr.Error(), "off", "error must include the attempted value")
}

func TestSubDeviceUnpair(t *testing.T) {
	dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)

	require.NoError(t, dev.Unpair(context.Background()))
	call := transport.lastCall()
	assert.Equal(t, "remove_device", call.command)

	// The cache is untouched; discarding the proxy is the caller's job.
	assert.Equal(t, false, dev.Status()["battery_low"])
}

func TestSubDeviceGetBattery(t *testing.T) {
	t.Run("MainsPowered", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{},
			"model: lumi.plug\nbattery_powered: false\n")

		level, err := dev.GetBattery(context.Background())
		require.NoError(t, err)
		assert.Nil(t, level)
		assert.Zero(t, transport.callCount(), "no transport call for mains-powered devices")
	})

	t.Run("Supported", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{Model: "lumi.gateway.v3"}, sensorModelYAML)
		transport.respond = func(string, any) ([]any, error) { return []any{26}, nil }

		level, err := dev.GetBattery(context.Background())
		require.NoError(t, err)
		require.NotNil(t, level)
		assert.Equal(t, 26, *level)
	})

	t.Run("UnsupportedGatewayModelReturnsCache", func(t *testing.T) {
		transport := &fakeTransport{}
		gw, err := gateway.New(transport, gateway.Config{Model: gateway.ModelEU})
		require.NoError(t, err)
		dev := gw.NewSubDevice(gateway.SubDeviceInfo{SID: "lumi.a"}, loadModel(t, sensorModelYAML))

		level, err := dev.GetBattery(context.Background())
		require.NoError(t, err)
		assert.Nil(t, level, "nothing cached yet")
		assert.Zero(t, transport.callCount())
	})
}

func TestSubDeviceGetVoltage(t *testing.T) {
	t.Run("SupportedGatewayModel", func(t *testing.T) {
		transport := &fakeTransport{}
		gw, err := gateway.New(transport, gateway.Config{Model: gateway.ModelZig3})
		require.NoError(t, err)
		dev := gw.NewSubDevice(gateway.SubDeviceInfo{SID: "lumi.a"}, loadModel(t, sensorModelYAML))
		transport.respond = func(string, any) ([]any, error) { return []any{3005}, nil }

		volts, err := dev.GetVoltage(context.Background())
		require.NoError(t, err)
		require.NotNil(t, volts)
		assert.InDelta(t, 3.005, *volts, 1e-9)
	})

	t.Run("UnsupportedGatewayModelReturnsCache", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{Model: "lumi.gateway.v3"}, sensorModelYAML)

		volts, err := dev.GetVoltage(context.Background())
		require.NoError(t, err)
		assert.Nil(t, volts)
		assert.Zero(t, transport.callCount())
	})

	t.Run("MainsPowered", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{Model: gateway.ModelEU},
			"model: lumi.plug\nbattery_powered: false\n")

		volts, err := dev.GetVoltage(context.Background())
		require.NoError(t, err)
		assert.Nil(t, volts)
		assert.Zero(t, transport.callCount())
	})
}

func TestSubDeviceGetFirmwareVersion(t *testing.T) {
	t.Run("ReadsAndCaches", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		transport.respond = func(string, any) ([]any, error) { return []any{152}, nil }

		assert.Equal(t, 152, dev.GetFirmwareVersion(context.Background()))
		assert.Equal(t, 152, dev.FirmwareVersion())
	})

	t.Run("DegradesToDiscoveryVersion", func(t *testing.T) {
		dev, transport := newTestSubDevice(t, gateway.Config{}, sensorModelYAML)
		transport.respond = func(string, any) ([]any, error) { return nil, errors.New("offline") }

		assert.Equal(t, 145, dev.GetFirmwareVersion(context.Background()),
			"failure must fall back to the discovery-time version, not error")
	})
}
