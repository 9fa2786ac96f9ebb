// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

// Package model holds the FIWARE provisioning and context data model.
//
// All types are plain value records. Validation is explicit: every
// record that is sent to a remote service has a Validate method that
// returns a *ValidationError for the first violated invariant.
package model

import (
	"errors"
	"net/url"
)

// ServiceGroup is a tenant-scoped configuration binding a shared API
// key and a default entity type and resource path for a set of
// devices. The apikey and resource together identify the group within
// a tenant.
type ServiceGroup struct {
	APIKey     string `json:"apikey"`
	CBroker    string `json:"cbroker"`
	EntityType string `json:"entity_type"`
	Resource   string `json:"resource"`
}

// Validate checks the service group invariants.
func (g ServiceGroup) Validate() error {
	if g.APIKey == "" {
		return &ValidationError{Field: "apikey", Reason: "must not be empty"}
	}
	if g.EntityType == "" {
		return &ValidationError{Field: "entity_type", Reason: "must not be empty"}
	}
	if g.Resource == "" {
		return &ValidationError{Field: "resource", Reason: "must not be empty"}
	}
	if err := validateAbsoluteURL(g.CBroker); err != nil {
		return &ValidationError{Field: "cbroker", Reason: err.Error()}
	}
	return nil
}

// ServiceGroupUpdate carries the fields of a partial service group
// update. Zero fields are left untouched by the IoT Agent.
type ServiceGroupUpdate struct {
	CBroker    string `json:"cbroker,omitempty"`
	EntityType string `json:"entity_type,omitempty"`
}

func validateAbsoluteURL(raw string) error {
	if raw == "" {
		return errors.New("must not be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return errors.New("must be an absolute URL")
	}
	return nil
}
