//go:build integration

package tests

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/go-arrower/mirrorhub/postgres"
)

var ErrDockerFailure = errors.New("docker failure")

const (
	postgresImage = "postgres"
	postgresTag   = "16"

	// dockerTimeout is how long the container may live and how long to wait for it to accept connections.
	dockerTimeout = 120 * time.Second
)

// postgresRunOptions returns a container configuration matching conf.
func postgresRunOptions(conf postgres.Config) *dockertest.RunOptions {
	return &dockertest.RunOptions{ //nolint:exhaustruct // only set required configuration
		Name:       fmt.Sprintf("mirrorhub-testing-postgres-%d", rand.Intn(1000)), //nolint:gosec,mnd // prevent collisions only
		Repository: postgresImage,
		Tag:        postgresTag,
		Env: []string{
			"POSTGRES_USER=" + conf.User,
			"POSTGRES_PASSWORD=" + conf.Password,
			"POSTGRES_DB=" + conf.Database,
			"listen_addresses = '*'",
		},
		// every test database has its own pool
		Cmd: []string{"-c", "max_connections=1000"},
	}
}

// startPostgres runs PostgreSQL in docker and connects to it with conf, once the schema is migrated.
// The returned func stops and removes the container.
func startPostgres(conf postgres.Config) (*postgres.Handler, func() error, error) {
	pool, err := dockertest.NewPool("") // uses a sensible default on windows (tcp/http) and linux/osx (socket)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not create new pool: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	if err = pool.Client.Ping(); err != nil {
		return nil, nil, fmt.Errorf("%w: could not connect to docker: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	resource, err := pool.RunWithOptions(postgresRunOptions(conf), func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no", MaximumRetryCount: 0}
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not start postgres: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	_ = resource.Expire(uint(dockerTimeout.Seconds())) // hard kill, if the tests never clean up

	conf.Port, _ = strconv.Atoi(resource.GetPort("5432/tcp"))

	var pg *postgres.Handler

	// postgres accepts connections only after its init scripts ran
	pool.MaxWait = dockerTimeout
	err = pool.Retry(func() error {
		handler, err := postgres.ConnectAndMigrate(context.Background(), conf, noop.NewTracerProvider())
		if err != nil {
			return err //nolint:wrapcheck // only used for retrying
		}

		pg = handler

		return nil
	})
	if err != nil {
		_ = pool.Purge(resource)

		return nil, nil, fmt.Errorf("%w: could not connect to postgres: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
	}

	cleanup := func() error {
		if err := pool.Purge(resource); err != nil {
			return fmt.Errorf("%w: could not purge postgres: %v", ErrDockerFailure, err) //nolint:errorlint // prevent err in api
		}

		return nil
	}

	return pg, cleanup, nil
}
