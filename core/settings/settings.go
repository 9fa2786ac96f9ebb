// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

// Package settings loads the client configuration from the
// environment. The clients themselves do not depend on how the four
// required values are obtained; this package is merely the default
// loader used by the examples and the integration tests.
package settings

import (
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
)

// Settings holds the configuration for both FIWARE clients.
type Settings struct {
	IotaURL           string `env:"IOTA_URL,default=http://localhost:4061" description:"base URL of the IoT Agent"`
	OrionURL          string `env:"ORION_URL,default=http://localhost:1026" description:"base URL of the Orion context broker"`
	FiwareService     string `env:"FIWARE_SERVICE,default=openiot" description:"FIWARE tenant service name"`
	FiwareServicePath string `env:"FIWARE_SERVICEPATH,default=/" description:"FIWARE tenant service path"`
	FiwareResource    string `env:"FIWARE_RESOURCE,default=/iot/d" description:"resource path exposed by the IoT Agent"`
	APIToken          string `env:"MY_TOKEN,optional" description:"optional bearer token sent with every request"`
	TimeoutSeconds    int    `env:"TIMEOUT,default=5" description:"request timeout in seconds"`
}

// FromEnv decodes the settings from the environment.
func FromEnv() (Settings, error) {
	var s Settings
	if err := envdecode.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	if s.TimeoutSeconds <= 0 {
		return Settings{}, fmt.Errorf("TIMEOUT must be positive, got %d", s.TimeoutSeconds)
	}
	return s, nil
}

// Timeout returns the request timeout as a duration.
func (s Settings) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}
