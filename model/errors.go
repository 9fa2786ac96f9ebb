// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

package model

import (
	"errors"
	"fmt"
)

// ValidationError reports the first invariant an input violated. It is
// raised locally, before any request is built, so malformed input
// never reaches the wire.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a local validation failure.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}
