// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

/*
Package orion is the client for the Orion context broker NGSIv2 API.

It covers entity reads and updates plus the subscription lifecycle.
Every read reflects the broker state at call time; the client keeps no
local state between calls.
*/
package orion

import (
	"context"
	"errors"
	"net/url"
	"strings"
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
	versionPath       = "/version"
	entitiesPath      = "/v2/entities"
	subscriptionsPath = "/v2/subscriptions"
)

// Client talks to an Orion context broker. Safe for concurrent use.
type Client struct {
	rest      client.Client
	log       *logrus.Entry
	validator *schema.Validator
}

// New creates a client for the broker at baseURL, scoped to the given
// tenant. All arguments are required; a missing one is a
// construction-time error.
func New(baseURL, service, servicePath string, timeout time.Duration) (*Client, error) {
	if err := validateConfig(baseURL, service, servicePath, timeout); err != nil {
		return nil, err
	}
	return &Client{
		rest: client.NewWithURL(baseURL).WithTenant(service, servicePath).WithTimeout(timeout),
		log:  logger.Default().WithField("component", "orion"),
	}, nil
}

// NewWithRouter creates a client that talks to a mux router
// in-process instead of a live broker. Used by tests and embedded
// mock services.
func NewWithRouter(router *mux.Router, service, servicePath string) (*Client, error) {
	if service == "" || servicePath == "" {
		return nil, errors.New("orion: tenant service and service path are required")
	}
	return &Client{
		rest: client.NewWithRouter(router).WithTenant(service, servicePath),
		log:  logger.Default().WithField("component", "orion"),
	}, nil
}

// FromSettings creates a client from decoded settings.
func FromSettings(s settings.Settings) (*Client, error) {
	c, err := New(s.OrionURL, s.FiwareService, s.FiwareServicePath, s.Timeout())
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
		log:       logger.FromContext(ctx).WithField("component", "orion"),
		validator: c.validator,
	}
}

// WithStrictValidation returns a copy of the client that additionally
// validates outgoing subscriptions against the embedded wire schema
// before sending them.
func (c *Client) WithStrictValidation() (*Client, error) {
	v, err := schema.NewFiwareValidator()
	if err != nil {
		return nil, err
	}
	return &Client{rest: c.rest, log: c.log, validator: v}, nil
}

func validateConfig(baseURL, service, servicePath string, timeout time.Duration) error {
	if baseURL == "" {
		return errors.New("orion: base URL is required")
	}
	if service == "" {
		return errors.New("orion: tenant service is required")
	}
	if servicePath == "" {
		return errors.New("orion: tenant service path is required")
	}
	if timeout <= 0 {
		return errors.New("orion: request timeout must be positive")
	}
	return nil
}

// CheckStatus reports whether the broker is reachable and healthy. It
// never returns an error.
func (c *Client) CheckStatus() bool {
	return c.rest.CheckStatus(versionPath)
}

// EntityFilter narrows an entity listing. Zero fields are not sent.
type EntityFilter struct {
	Type      string `url:"type,omitempty"`
	IDPattern string `url:"id,omitempty"`
}

// ListEntities returns the entities matching the filter. No matches is
// a valid empty result, not an error.
func (c *Client) ListEntities(filter EntityFilter) ([]model.Entity, error) {
	q, _ := query.Values(filter)
	var entities []model.Entity
	if err := c.rest.GetQuery(entitiesPath, q, &entities); err != nil {
		c.log.WithError(err).Error("listing entities failed")
		return nil, err
	}
	return entities, nil
}

// GetEntity returns the entity with the given id.
func (c *Client) GetEntity(entityID string) (model.Entity, error) {
	if entityID == "" {
		return model.Entity{}, &model.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	var entity model.Entity
	if err := c.rest.Get(entitiesPath+"/"+url.PathEscape(entityID), &entity); err != nil {
		c.log.WithError(err).WithField("entity", entityID).Error("getting entity failed")
		return model.Entity{}, err
	}
	return entity, nil
}

// UpdateEntityAttrs patches the given attributes of an entity. The
// broker rejects malformed attribute payloads; a missing entity
// surfaces as not found.
func (c *Client) UpdateEntityAttrs(entityID string, attrs map[string]model.Attribute) error {
	if entityID == "" {
		return &model.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if len(attrs) == 0 {
		return &model.ValidationError{Field: "attrs", Reason: "must not be empty"}
	}
	if err := c.rest.Patch(entitiesPath+"/"+url.PathEscape(entityID)+"/attrs", attrs); err != nil {
		c.log.WithError(err).WithField("entity", entityID).Error("updating entity attributes failed")
		return err
	}
	c.log.WithField("entity", entityID).Info("entity attributes updated")
	return nil
}

// DeleteEntity removes the entity with the given id.
func (c *Client) DeleteEntity(entityID string) error {
	if entityID == "" {
		return &model.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if err := c.rest.Delete(entitiesPath+"/"+url.PathEscape(entityID), nil); err != nil {
		c.log.WithError(err).WithField("entity", entityID).Error("deleting entity failed")
		return err
	}
	c.log.WithField("entity", entityID).Info("entity deleted")
	return nil
}

// CreateSubscription registers a subscription and returns the id the
// broker assigned to it, taken from the Location response header.
func (c *Client) CreateSubscription(sub model.Subscription) (string, error) {
	if err := sub.Validate(); err != nil {
		return "", err
	}
	if c.validator != nil {
		if err := c.validator.ValidateStruct(sub, schema.SubscriptionID); err != nil {
			return "", &model.ValidationError{Field: "subscription", Reason: err.Error()}
		}
	}
	header, err := c.rest.PostWithHeader(subscriptionsPath, sub, nil)
	if err != nil {
		c.log.WithError(err).Error("creating subscription failed")
		return "", err
	}
	id := subscriptionIDFromLocation(header.Get("Location"))
	if id == "" {
		return "", errors.New("orion: subscription created but Location header is missing")
	}
	c.log.WithField("subscription", id).Info("subscription created")
	return id, nil
}

// ListSubscriptions returns all subscriptions of the tenant.
func (c *Client) ListSubscriptions() ([]model.Subscription, error) {
	var subs []model.Subscription
	if err := c.rest.Get(subscriptionsPath, &subs); err != nil {
		c.log.WithError(err).Error("listing subscriptions failed")
		return nil, err
	}
	return subs, nil
}

// DeleteSubscription removes the subscription with the given id.
func (c *Client) DeleteSubscription(subscriptionID string) error {
	if subscriptionID == "" {
		return &model.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if err := c.rest.Delete(subscriptionsPath+"/"+url.PathEscape(subscriptionID), nil); err != nil {
		c.log.WithError(err).WithField("subscription", subscriptionID).Error("deleting subscription failed")
		return err
	}
	c.log.WithField("subscription", subscriptionID).Info("subscription deleted")
	return nil
}

// subscriptionIDFromLocation extracts the subscription id from a
// Location header of the form /v2/subscriptions/{id}.
func subscriptionIDFromLocation(location string) string {
	if location == "" {
		return ""
	}
	location = strings.TrimSuffix(location, "/")
	idx := strings.LastIndex(location, "/")
	if idx < 0 {
		return location
	}
	return location[idx+1:]
}
