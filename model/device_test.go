package model

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDevice() Device {
	return Device{
		DeviceID:   "probe001",
		EntityName: "urn:ngsi-ld:SoilProbe:001",
		EntityType: "SoilProbe",
		Transport:  TransportMQTT,
		Protocol:   "PDI-IoTA-UltraLight",
		APIKey:     "plantation",
		Commands: []Command{
			{Name: "valve", Type: CommandType},
		},
	}
}

func TestDeviceValidate(t *testing.T) {
	require.NoError(t, validDevice().Validate())

	// commands may be empty
	noCommands := validDevice()
	noCommands.Commands = nil
	require.NoError(t, noCommands.Validate())

	// an unset command type defaults on the agent side
	untyped := validDevice()
	untyped.Commands = []Command{{Name: "valve"}}
	require.NoError(t, untyped.Validate())

	testCases := []struct {
		name   string
		mutate func(*Device)
		field  string
	}{
		{"missing device id", func(d *Device) { d.DeviceID = "" }, "device_id"},
		{"missing entity name", func(d *Device) { d.EntityName = "" }, "entity_name"},
		{"missing entity type", func(d *Device) { d.EntityType = "" }, "entity_type"},
		{"missing transport", func(d *Device) { d.Transport = "" }, "transport"},
		{"bogus transport", func(d *Device) { d.Transport = "CARRIER-PIGEON" }, "transport"},
		{"lowercase transport", func(d *Device) { d.Transport = "mqtt" }, "transport"},
		{"missing protocol", func(d *Device) { d.Protocol = "" }, "protocol"},
		{"missing apikey", func(d *Device) { d.APIKey = "" }, "apikey"},
		{"unnamed command", func(d *Device) { d.Commands = []Command{{Type: CommandType}} }, "commands.name"},
		{"bogus command type", func(d *Device) { d.Commands = []Command{{Name: "valve", Type: "lambda"}} }, "commands.type"},
		{"duplicate command", func(d *Device) {
			d.Commands = []Command{{Name: "valve"}, {Name: "valve"}}
		}, "commands"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDevice()
			tc.mutate(&d)
			err := d.Validate()
			require.Error(t, err)
			var v *ValidationError
			require.ErrorAs(t, err, &v)
			assert.Equal(t, tc.field, v.Field)
		})
	}
}

func TestDeviceWireForm(t *testing.T) {
	d := validDevice()
	d.Attributes = []DeviceAttribute{{ObjectID: "m", Name: "moisture", Type: "Number"}}

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"device_id": "probe001",
		"entity_name": "urn:ngsi-ld:SoilProbe:001",
		"entity_type": "SoilProbe",
		"transport": "MQTT",
		"protocol": "PDI-IoTA-UltraLight",
		"apikey": "plantation",
		"commands": [{"name": "valve", "type": "command"}],
		"attributes": [{"object_id": "m", "name": "moisture", "type": "Number"}]
	}`, string(data))

	var parsed Device
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.Equal(t, d, parsed)
}

func TestDeviceUpdateValidate(t *testing.T) {
	require.NoError(t, DeviceUpdate{}.Validate())
	require.NoError(t, DeviceUpdate{Transport: TransportHTTP}.Validate())

	err := DeviceUpdate{Transport: "SMOKE-SIGNAL"}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	err = DeviceUpdate{Commands: []Command{{}}}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// same uniqueness rule as on full devices
	err = DeviceUpdate{Commands: []Command{{Name: "valve"}, {Name: "valve"}}}.Validate()
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "duplicate command name")
}
