// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

package model

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Attribute is a single NGSI attribute: a value, an optional type and
// optional metadata.
type Attribute struct {
	Value    interface{}          `json:"value"`
	Type     string               `json:"type,omitempty"`
	Metadata map[string]Attribute `json:"metadata,omitempty"`
}

// Entity is a context entity as stored by the broker. Beyond the
// required id and type the schema is free; all remaining keys of the
// wire object are attributes.
type Entity struct {
	ID         string
	Type       string
	Attributes map[string]Attribute
}

// Validate checks the entity invariants.
func (e Entity) Validate() error {
	if e.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if e.Type == "" {
		return &ValidationError{Field: "type", Reason: "must not be empty"}
	}
	return nil
}

// MarshalJSON flattens the entity into the NGSI wire form, with the
// attributes as siblings of id and type.
func (e Entity) MarshalJSON() ([]byte, error) {
	flat := make(map[string]interface{}, len(e.Attributes)+2)
	for name, attr := range e.Attributes {
		if name == "id" || name == "type" {
			return nil, fmt.Errorf("attribute name %q is reserved", name)
		}
		flat[name] = attr
	}
	flat["id"] = e.ID
	flat["type"] = e.Type
	return json.Marshal(flat)
}

// UnmarshalJSON parses the NGSI wire form back into id, type and the
// attribute mapping.
func (e *Entity) UnmarshalJSON(data []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(data, &flat); err != nil {
		return err
	}
	*e = Entity{Attributes: map[string]Attribute{}}
	for name, raw := range flat {
		switch name {
		case "id":
			if err := json.Unmarshal(raw, &e.ID); err != nil {
				return fmt.Errorf("entity id: %w", err)
			}
		case "type":
			if err := json.Unmarshal(raw, &e.Type); err != nil {
				return fmt.Errorf("entity type: %w", err)
			}
		default:
			var attr Attribute
			if err := json.Unmarshal(raw, &attr); err != nil {
				return fmt.Errorf("entity attribute %q: %w", name, err)
			}
			e.Attributes[name] = attr
		}
	}
	return nil
}
