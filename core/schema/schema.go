// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

// Package schema validates JSON documents against the FIWARE wire
// schemas shipped with this module. The provisioning payloads are
// pinned by schema so that a drifting wire format is caught before it
// reaches a live IoT Agent, and callers can validate foreign payloads
// such as notification bodies before trusting them.
package schema

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/xeipuuv/gojsonschema"
)

// Schema IDs of the embedded wire schemas.
const (
	ServiceGroupID = "https://fiware-tools.dev/schemas/service_group.json"
	DeviceID       = "https://fiware-tools.dev/schemas/device.json"
	SubscriptionID = "https://fiware-tools.dev/schemas/subscription.json"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Validator is a utility to validate JSON objects against a set of
// named schemas.
type Validator struct {
	schemaValidators map[string]*gojsonschema.Schema
}

// NewFiwareValidator creates a Validator preloaded with the embedded
// FIWARE wire schemas.
func NewFiwareValidator() (*Validator, error) {
	files, err := schemaFS.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("cannot read embedded schemas: %w", err)
	}
	var schemas []string
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		str, err := schemaFS.ReadFile("schemas/" + f.Name())
		if err != nil {
			return nil, fmt.Errorf("cannot read embedded schema %q: %w", f.Name(), err)
		}
		schemas = append(schemas, string(str))
	}
	return NewValidator(schemas)
}

// NewValidator creates a new Validator from top level JSON schemas.
// Every schema must carry a $id, which becomes its lookup key.
func NewValidator(schemas []string) (*Validator, error) {
	type schema struct {
		ID string `json:"$id"`
	}
	validator := Validator{schemaValidators: make(map[string]*gojsonschema.Schema)}
	for _, str := range schemas {
		s := schema{}
		err := json.Unmarshal([]byte(str), &s)
		if err != nil {
			return nil, fmt.Errorf("parse error '%v' in schema: '%s'", err, str)
		}
		if s.ID == "" {
			return nil, fmt.Errorf("schema does not contain $id: '%s'", str)
		}
		sl := gojsonschema.NewSchemaLoader()
		compiled, err := sl.Compile(gojsonschema.NewStringLoader(str))
		if err != nil {
			return nil, fmt.Errorf("cannot compile schema %s %s", s.ID, err)
		}
		validator.schemaValidators[s.ID] = compiled
	}
	return &validator, nil
}

// HasSchema returns true if schemaID is known.
func (v *Validator) HasSchema(schemaID string) bool {
	_, ok := v.schemaValidators[schemaID]
	return ok
}

// ValidateStruct validates the given object as a struct against
// schemaID. If no error is returned, then the passed object is valid.
func (v *Validator) ValidateStruct(object interface{}, schemaID string) error {
	// gojsonschema's Go loader uses the stock json tags, which match
	// our wire tags, so structs can be validated without a marshal
	// round trip.
	return v.validate(gojsonschema.NewGoLoader(object), schemaID)
}

// ValidateString validates the given json against schemaID. If no
// error is returned, then the passed json is valid.
func (v *Validator) ValidateString(json, schemaID string) error {
	return v.validate(gojsonschema.NewStringLoader(json), schemaID)
}

func (v *Validator) validate(loader gojsonschema.JSONLoader, schemaID string) error {
	compiled, ok := v.schemaValidators[schemaID]
	if !ok {
		return fmt.Errorf("there is no schema %s", schemaID)
	}

	result, err := compiled.Validate(loader)
	if err != nil {
		return fmt.Errorf("cannot validate with schema %s %s", schemaID, err)
	}

	if !result.Valid() {
		err := "the document is not valid :\n"
		for _, e := range result.Errors() {
			err += fmt.Sprintf("- %s\n", e)
		}
		return errors.New(err)
	}
	return nil
}
