// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

package model

import (
	"time"
)

// EntityRef selects entities for a subscription subject, either by
// exact id or by id pattern, always together with a type.
type EntityRef struct {
	ID        string `json:"id,omitempty"`
	IDPattern string `json:"idPattern,omitempty"`
	Type      string `json:"type"`
}

// Condition restricts which attribute changes trigger a notification.
type Condition struct {
	Attrs []string `json:"attrs,omitempty"`
}

// Subject describes which entities and attributes a subscription
// watches.
type Subject struct {
	Entities  []EntityRef `json:"entities"`
	Condition *Condition  `json:"condition,omitempty"`
}

// NotificationHTTP is the HTTP target of a notification.
type NotificationHTTP struct {
	URL string `json:"url"`
}

// Notification describes where and what the broker sends when a
// subscription fires.
type Notification struct {
	HTTP  NotificationHTTP `json:"http"`
	Attrs []string         `json:"attrs,omitempty"`
}

// Subscription is a standing registration with the context broker to
// receive notifications when matching entities change. Its lifecycle
// is fully owned by the broker; the ID field is assigned on creation.
type Subscription struct {
	ID           string       `json:"id,omitempty"`
	Description  string       `json:"description,omitempty"`
	Subject      Subject      `json:"subject"`
	Notification Notification `json:"notification"`
	Expires      *time.Time   `json:"expires,omitempty"`
	Throttling   int          `json:"throttling,omitempty"`
}

// Validate checks the subscription invariants.
func (s Subscription) Validate() error {
	if len(s.Subject.Entities) == 0 {
		return &ValidationError{Field: "subject.entities", Reason: "must name at least one entity"}
	}
	for _, ref := range s.Subject.Entities {
		if ref.ID == "" && ref.IDPattern == "" {
			return &ValidationError{Field: "subject.entities", Reason: "must set id or idPattern"}
		}
		if ref.ID != "" && ref.IDPattern != "" {
			return &ValidationError{Field: "subject.entities", Reason: "id and idPattern are mutually exclusive"}
		}
		if ref.Type == "" {
			return &ValidationError{Field: "subject.entities.type", Reason: "must not be empty"}
		}
	}
	if err := validateAbsoluteURL(s.Notification.HTTP.URL); err != nil {
		return &ValidationError{Field: "notification.http.url", Reason: err.Error()}
	}
	if s.Throttling < 0 {
		return &ValidationError{Field: "throttling", Reason: "must not be negative"}
	}
	return nil
}
