// Package mongotest starts a throwaway MongoDB for integration tests.
// Tests using it are skipped unless GO_TEST_INTEGRATION is set.
package mongotest

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/podcastify/core/internal/config"
	"github.com/podcastify/core/internal/database"
)

const (
	envIntegration = "GO_TEST_INTEGRATION"
	envURI         = "PODCASTIFY_TEST_MONGO_URI"
	testTimeout    = 10 * time.Second
)

// Main wraps testing.M: it starts a mongo container for the package when
// integration tests are enabled and tears it down afterwards.
func Main(m *testing.M) int {
	if os.Getenv(envIntegration) == "" || os.Getenv(envURI) != "" {
		return m.Run()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "mongo:7.0",
			ExposedPorts: []string{"27017/tcp"},
			WaitingFor:   wait.ForLog("Waiting for connections").WithStartupTimeout(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start mongo testcontainer: %v\n", err)
		return 1
	}
	defer func() { _ = mongoC.Terminate(context.Background()) }()

	host, err := mongoC.Host(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get container host: %v\n", err)
		return 1
	}
	port, err := mongoC.MappedPort(ctx, "27017/tcp")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get mapped port: %v\n", err)
		return 1
	}

	_ = os.Setenv(envURI, fmt.Sprintf("mongodb://%s:%s", host, port.Port()))
	return m.Run()
}

// NewDB connects to a fresh, uniquely named database and drops it on cleanup.
func NewDB(t *testing.T) *database.DB {
	t.Helper()
	uri := os.Getenv(envURI)
	if os.Getenv(envIntegration) == "" || uri == "" {
		t.Skip("integration tests disabled; set " + envIntegration + "=1")
	}

	name := "podcastify_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()

	db, err := database.Connect(ctx, config.MongoConfig{URI: uri, Database: name, Timeout: testTimeout})
	if err != nil {
		t.Fatalf("connect mongo: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
		defer cancel()
		_ = db.Database().Drop(ctx)
		_ = db.Close(ctx)
	})
	return db
}

// Context returns a context bounded by the default test timeout.
func Context(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	t.Cleanup(cancel)
	return ctx
}
