// Copyright 2026 FIWARE Tools GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@fiware-tools.dev
//

// Package test runs the clients against a real FIWARE stack brought up
// with testcontainers. Set FIWARE_INTEGRATION=1 to enable; without it
// the suite skips so that unit runs stay docker-free.
package test

import (
	"context"
	"fmt"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/fiware-tools/fiware-go/iota"
	"github.com/fiware-tools/fiware-go/orion"
)

type IntegrationTestSuite struct {
	suite.Suite
	network        testcontainers.Network
	mongoContainer testcontainers.Container
	orionContainer testcontainers.Container
	agentContainer testcontainers.Container

	orionURL string
	iotaURL  string

	Iota  *iota.Client
	Orion *orion.Client
}

func (s *IntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	networkName := fmt.Sprintf("test-fiware-network_%d", time.Now().Unix())
	network, err := testcontainers.GenericNetwork(ctx, testcontainers.GenericNetworkRequest{
		NetworkRequest: testcontainers.NetworkRequest{
			Name:           networkName,
			CheckDuplicate: true,
		},
	})
	s.Require().NoError(err)
	s.network = network

	mongoReq := testcontainers.ContainerRequest{
		Image:          "mongo:4.4",
		ExposedPorts:   []string{"27017/tcp"},
		Networks:       []string{networkName},
		NetworkAliases: map[string][]string{networkName: {"mongodb"}},
		WaitingFor:     wait.ForListeningPort("27017/tcp"),
	}
	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: mongoReq,
		Started:          true,
	})
	s.Require().NoError(err)
	s.mongoContainer = mongoC

	orionReq := testcontainers.ContainerRequest{
		Image:          "fiware/orion:3.10.1",
		Cmd:            []string{"-dbhost", "mongodb"},
		ExposedPorts:   []string{"1026/tcp"},
		Networks:       []string{networkName},
		NetworkAliases: map[string][]string{networkName: {"orion"}},
		WaitingFor:     wait.ForListeningPort("1026/tcp"),
	}
	orionC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: orionReq,
		Started:          true,
	})
	s.Require().NoError(err)
	s.orionContainer = orionC

	orionHost, err := orionC.Host(ctx)
	s.Require().NoError(err)
	orionPort, err := orionC.MappedPort(ctx, "1026")
	s.Require().NoError(err)
	s.orionURL = fmt.Sprintf("http://%s:%s", orionHost, orionPort.Port())

	agentReq := testcontainers.ContainerRequest{
		Image:        "fiware/iotagent-ul:2.4.2",
		ExposedPorts: []string{"4061/tcp", "7896/tcp"},
		Env: map[string]string{
			"IOTA_CB_HOST":          "orion",
			"IOTA_CB_PORT":          "1026",
			"IOTA_NORTH_PORT":       "4061",
			"IOTA_HTTP_PORT":        "7896",
			"IOTA_REGISTRY_TYPE":    "mongodb",
			"IOTA_MONGO_HOST":       "mongodb",
			"IOTA_MONGO_PORT":       "27017",
			"IOTA_MONGO_DB":         "iotagentul",
			"IOTA_PROVIDER_URL":     "http://iot-agent:4061",
			"IOTA_LOG_LEVEL":        "ERROR",
			"IOTA_TIMESTAMP":        "true",
			"IOTA_AUTOCAST":         "true",
			"IOTA_DEFAULT_RESOURCE": "/iot/d",
		},
		Networks:       []string{networkName},
		NetworkAliases: map[string][]string{networkName: {"iot-agent"}},
		WaitingFor:     wait.ForListeningPort("4061/tcp"),
	}
	agentC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: agentReq,
		Started:          true,
	})
	s.Require().NoError(err)
	s.agentContainer = agentC

	agentHost, err := agentC.Host(ctx)
	s.Require().NoError(err)
	agentPort, err := agentC.MappedPort(ctx, "4061")
	s.Require().NoError(err)
	s.iotaURL = fmt.Sprintf("http://%s:%s", agentHost, agentPort.Port())

	s.Iota, err = iota.New(s.iotaURL, "openiot", "/", 10*time.Second)
	s.Require().NoError(err)
	s.Orion, err = orion.New(s.orionURL, "openiot", "/", 10*time.Second)
	s.Require().NoError(err)

	s.waitHealthy()
}

// waitHealthy polls both services until they answer their health
// endpoints. The containers accept connections before the services are
// actually ready.
func (s *IntegrationTestSuite) waitHealthy() {
	deadline := time.Now().Add(60 * time.Second)
	for time.Now().Before(deadline) {
		if s.Iota.CheckStatus() && s.Orion.CheckStatus() {
			return
		}
		time.Sleep(time.Second)
	}
	s.Require().FailNow("fiware stack did not become healthy in time")
}

func (s *IntegrationTestSuite) TearDownSuite() {
	ctx := context.Background()

	if s.agentContainer != nil {
		err := s.agentContainer.Terminate(ctx)
		s.Require().NoError(err)
	}
	if s.orionContainer != nil {
		err := s.orionContainer.Terminate(ctx)
		s.Require().NoError(err)
	}
	if s.mongoContainer != nil {
		err := s.mongoContainer.Terminate(ctx)
		s.Require().NoError(err)
	}
	if s.network != nil {
		err := s.network.Remove(ctx)
		s.Require().NoError(err)
	}
}
