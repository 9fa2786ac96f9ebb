// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

package model

import "fmt"

// Transport is the channel a device uses to reach the IoT Agent.
type Transport string

// The transports the IoT Agent understands.
const (
	TransportHTTP Transport = "HTTP"
	TransportMQTT Transport = "MQTT"
)

func (t Transport) valid() bool {
	return t == TransportHTTP || t == TransportMQTT
}

// CommandType is the only command type the IoT Agent accepts.
const CommandType = "command"

// Command is an actuation endpoint exposed by a device. Commands are
// pure values embedded in a Device.
type Command struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Validate checks the command invariants.
func (c Command) Validate() error {
	if c.Name == "" {
		return &ValidationError{Field: "commands.name", Reason: "must not be empty"}
	}
	if c.Type != "" && c.Type != CommandType {
		return &ValidationError{Field: "commands.type", Reason: fmt.Sprintf("must be %q", CommandType)}
	}
	return nil
}

// DeviceAttribute declares an active attribute reported by a device.
type DeviceAttribute struct {
	ObjectID string `json:"object_id,omitempty"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

// Device is a provisioned device registration. The apikey must
// reference a ServiceGroup created earlier in the same tenant scope;
// that link is enforced by the IoT Agent, not locally, but the field
// is always sent.
type Device struct {
	DeviceID   string            `json:"device_id"`
	EntityName string            `json:"entity_name"`
	EntityType string            `json:"entity_type"`
	Transport  Transport         `json:"transport"`
	Protocol   string            `json:"protocol"`
	APIKey     string            `json:"apikey"`
	Commands   []Command         `json:"commands"`
	Attributes []DeviceAttribute `json:"attributes,omitempty"`
}

// Validate checks the device invariants.
func (d Device) Validate() error {
	if d.DeviceID == "" {
		return &ValidationError{Field: "device_id", Reason: "must not be empty"}
	}
	if d.EntityName == "" {
		return &ValidationError{Field: "entity_name", Reason: "must not be empty"}
	}
	if d.EntityType == "" {
		return &ValidationError{Field: "entity_type", Reason: "must not be empty"}
	}
	if !d.Transport.valid() {
		return &ValidationError{
			Field:  "transport",
			Reason: fmt.Sprintf("must be %q or %q, got %q", TransportHTTP, TransportMQTT, d.Transport),
		}
	}
	if d.Protocol == "" {
		return &ValidationError{Field: "protocol", Reason: "must not be empty"}
	}
	if d.APIKey == "" {
		return &ValidationError{Field: "apikey", Reason: "must not be empty"}
	}
	return validateCommands(d.Commands)
}

// validateCommands checks each command and rejects duplicate names.
func validateCommands(commands []Command) error {
	seen := make(map[string]bool, len(commands))
	for _, cmd := range commands {
		if err := cmd.Validate(); err != nil {
			return err
		}
		if seen[cmd.Name] {
			return &ValidationError{
				Field:  "commands",
				Reason: fmt.Sprintf("duplicate command name %q", cmd.Name),
			}
		}
		seen[cmd.Name] = true
	}
	return nil
}

// DeviceUpdate carries the fields of a partial device update. Zero
// fields are left untouched by the IoT Agent. The device id itself
// cannot change.
type DeviceUpdate struct {
	EntityName string            `json:"entity_name,omitempty"`
	EntityType string            `json:"entity_type,omitempty"`
	Transport  Transport         `json:"transport,omitempty"`
	Protocol   string            `json:"protocol,omitempty"`
	APIKey     string            `json:"apikey,omitempty"`
	Commands   []Command         `json:"commands,omitempty"`
	Attributes []DeviceAttribute `json:"attributes,omitempty"`
}

// Validate checks the invariants of the fields that are set.
func (u DeviceUpdate) Validate() error {
	if u.Transport != "" && !u.Transport.valid() {
		return &ValidationError{
			Field:  "transport",
			Reason: fmt.Sprintf("must be %q or %q, got %q", TransportHTTP, TransportMQTT, u.Transport),
		}
	}
	return validateCommands(u.Commands)
}
