// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

/*
Package iota is the client for the FIWARE IoT Agent provisioning API.

It covers the service group and device lifecycle. The client is a
stateless request issuer: every call is a single round trip, and the
remote agent owns all provisioning state.
*/
package iota

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/go-querystring/query"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/fiware-tools/fiware-go/core/client"
	"github.com/fiware-tools/fiware-go/core/logger"
	"github.com/fiware-tools/fiware-go/core/schema"
	"github.com/fiware-tools/fiware-go/core/settings"
	"github.com/fiware-tools/fiware-go/model"
)

const (
	aboutPath    = "/iot/about"
	servicesPath = "/iot/services"
	devicesPath  = "/iot/devices"
)

// Client talks to an IoT Agent. Safe for concurrent use.
type Client struct {
	rest      client.Client
	log       *logrus.Entry
	validator *schema.Validator
}

// New creates a client for the IoT Agent at baseURL, scoped to the
// given tenant. All arguments are required; a missing one is a
// construction-time error.
func New(baseURL, service, servicePath string, timeout time.Duration) (*Client, error) {
	if err := validateConfig(baseURL, service, servicePath, timeout); err != nil {
		return nil, err
	}
	return &Client{
		rest: client.NewWithURL(baseURL).WithTenant(service, servicePath).WithTimeout(timeout),
		log:  logger.Default().WithField("component", "iota"),
	}, nil
}

// NewWithRouter creates a client that talks to a mux router
// in-process instead of a live agent. Used by tests and embedded mock
// services.
func NewWithRouter(router *mux.Router, service, servicePath string) (*Client, error) {
	if service == "" || servicePath == "" {
		return nil, errors.New("iota: tenant service and service path are required")
	}
	return &Client{
		rest: client.NewWithRouter(router).WithTenant(service, servicePath),
		log:  logger.Default().WithField("component", "iota"),
	}, nil
}

// FromSettings creates a client from decoded settings.
func FromSettings(s settings.Settings) (*Client, error) {
	c, err := New(s.IotaURL, s.FiwareService, s.FiwareServicePath, s.Timeout())
	if err != nil {
		return nil, err
	}
	if s.APIToken != "" {
		c.rest = c.rest.WithToken(s.APIToken)
	}
	return c, nil
}

// WithContext returns a copy of the client that issues its requests
// with the given base context and logs through the context logger, so
// the request id appears on every operation log line.
func (c *Client) WithContext(ctx context.Context) *Client {
	return &Client{
		rest:      c.rest.WithContext(ctx),
		log:       logger.FromContext(ctx).WithField("component", "iota"),
		validator: c.validator,
	}
}

// WithStrictValidation returns a copy of the client that additionally
// validates outgoing provisioning payloads against the embedded wire
// schemas before sending them. Strict mode pins the exact wire form;
// payloads the plain validation tolerates, such as untyped commands,
// are rejected here.
func (c *Client) WithStrictValidation() (*Client, error) {
	v, err := schema.NewFiwareValidator()
	if err != nil {
		return nil, err
	}
	return &Client{rest: c.rest, log: c.log, validator: v}, nil
}

func validateConfig(baseURL, service, servicePath string, timeout time.Duration) error {
	if baseURL == "" {
		return errors.New("iota: base URL is required")
	}
	if service == "" {
		return errors.New("iota: tenant service is required")
	}
	if servicePath == "" {
		return errors.New("iota: tenant service path is required")
	}
	if timeout <= 0 {
		return errors.New("iota: request timeout must be positive")
	}
	return nil
}

// CheckStatus reports whether the IoT Agent is reachable and healthy.
// It never returns an error.
func (c *Client) CheckStatus() bool {
	return c.rest.CheckStatus(aboutPath)
}

// servicesEnvelope is the wire envelope of the /iot/services resource.
type servicesEnvelope struct {
	Count    int                  `json:"count,omitempty"`
	Services []model.ServiceGroup `json:"services"`
}

// devicesEnvelope is the wire envelope of the /iot/devices resource.
type devicesEnvelope struct {
	Count   int            `json:"count,omitempty"`
	Devices []model.Device `json:"devices"`
}

// groupSelector identifies a service group within a tenant.
type groupSelector struct {
	APIKey   string `url:"apikey"`
	Resource string `url:"resource"`
}

// CreateServiceGroup registers a new service group. A group with the
// same apikey and resource already existing surfaces as a conflict.
func (c *Client) CreateServiceGroup(group model.ServiceGroup) error {
	if err := group.Validate(); err != nil {
		return err
	}
	if c.validator != nil {
		if err := c.validator.ValidateStruct(group, schema.ServiceGroupID); err != nil {
			return &model.ValidationError{Field: "service group", Reason: err.Error()}
		}
	}
	body := servicesEnvelope{Services: []model.ServiceGroup{group}}
	if err := c.rest.Post(servicesPath, body, nil); err != nil {
		c.log.WithError(err).Error("creating service group failed")
		return err
	}
	c.log.WithField("apikey", group.APIKey).Info("service group created")
	return nil
}

// ListServiceGroups returns all service groups of the tenant.
func (c *Client) ListServiceGroups() ([]model.ServiceGroup, error) {
	var env servicesEnvelope
	if err := c.rest.Get(servicesPath, &env); err != nil {
		c.log.WithError(err).Error("listing service groups failed")
		return nil, err
	}
	return env.Services, nil
}

// UpdateServiceGroup applies a partial update to the group identified
// by apikey and resource.
func (c *Client) UpdateServiceGroup(apikey, resource string, upd model.ServiceGroupUpdate) error {
	if apikey == "" {
		return &model.ValidationError{Field: "apikey", Reason: "must not be empty"}
	}
	if resource == "" {
		return &model.ValidationError{Field: "resource", Reason: "must not be empty"}
	}
	q, _ := query.Values(groupSelector{APIKey: apikey, Resource: resource})
	if err := c.rest.Put(servicesPath, q, upd); err != nil {
		c.log.WithError(err).Error("updating service group failed")
		return err
	}
	c.log.WithField("apikey", apikey).Info("service group updated")
	return nil
}

// DeleteServiceGroup removes the group identified by apikey and
// resource. A missing group surfaces as not found.
func (c *Client) DeleteServiceGroup(apikey, resource string) error {
	if apikey == "" {
		return &model.ValidationError{Field: "apikey", Reason: "must not be empty"}
	}
	if resource == "" {
		return &model.ValidationError{Field: "resource", Reason: "must not be empty"}
	}
	q, _ := query.Values(groupSelector{APIKey: apikey, Resource: resource})
	if err := c.rest.Delete(servicesPath, q); err != nil {
		c.log.WithError(err).Error("deleting service group failed")
		return err
	}
	c.log.WithField("apikey", apikey).Info("service group deleted")
	return nil
}

// CreateDevice provisions a new device. A duplicate device id
// surfaces as a conflict; an apikey referencing no known group is
// rejected by the agent, not locally.
func (c *Client) CreateDevice(device model.Device) error {
	if err := device.Validate(); err != nil {
		return err
	}
	if c.validator != nil {
		if err := c.validator.ValidateStruct(device, schema.DeviceID); err != nil {
			return &model.ValidationError{Field: "device", Reason: err.Error()}
		}
	}
	body := devicesEnvelope{Devices: []model.Device{device}}
	if err := c.rest.Post(devicesPath, body, nil); err != nil {
		c.log.WithError(err).WithField("device_id", device.DeviceID).Error("creating device failed")
		return err
	}
	c.log.WithField("device_id", device.DeviceID).Info("device created")
	return nil
}

// GetDevice returns the device with the given id.
func (c *Client) GetDevice(deviceID string) (model.Device, error) {
	if deviceID == "" {
		return model.Device{}, &model.ValidationError{Field: "device_id", Reason: "must not be empty"}
	}
	var device model.Device
	if err := c.rest.Get(devicesPath+"/"+url.PathEscape(deviceID), &device); err != nil {
		c.log.WithError(err).WithField("device_id", deviceID).Error("getting device failed")
		return model.Device{}, err
	}
	return device, nil
}

// ListDevices returns all devices of the tenant.
func (c *Client) ListDevices() ([]model.Device, error) {
	var env devicesEnvelope
	if err := c.rest.Get(devicesPath, &env); err != nil {
		c.log.WithError(err).Error("listing devices failed")
		return nil, err
	}
	return env.Devices, nil
}

// UpdateDevice applies a partial update to the device with the given
// id.
func (c *Client) UpdateDevice(deviceID string, upd model.DeviceUpdate) error {
	if deviceID == "" {
		return &model.ValidationError{Field: "device_id", Reason: "must not be empty"}
	}
	if err := upd.Validate(); err != nil {
		return err
	}
	if err := c.rest.Put(devicesPath+"/"+url.PathEscape(deviceID), nil, upd); err != nil {
		c.log.WithError(err).WithField("device_id", deviceID).Error("updating device failed")
		return err
	}
	c.log.WithField("device_id", deviceID).Info("device updated")
	return nil
}

// DeleteDevice removes the device with the given id. A missing device
// surfaces as not found.
func (c *Client) DeleteDevice(deviceID string) error {
	if deviceID == "" {
		return &model.ValidationError{Field: "device_id", Reason: "must not be empty"}
	}
	if err := c.rest.Delete(devicesPath+"/"+url.PathEscape(deviceID), nil); err != nil {
		c.log.WithError(err).WithField("device_id", deviceID).Error("deleting device failed")
		return err
	}
	c.log.WithField("device_id", deviceID).Info("device deleted")
	return nil
}
