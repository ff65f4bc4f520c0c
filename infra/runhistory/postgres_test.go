package runhistory

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/pvsim/core/events"
	"github.com/kilianp07/pvsim/core/runstore"
)

func TestBindNumbersPlaceholders(t *testing.T) {
	pg := &SQLStore{d: postgresDialect}
	if got := pg.bind("a = ? AND b = ? LIMIT ?"); got != "a = $1 AND b = $2 LIMIT $3" {
		t.Fatalf("unexpected query %q", got)
	}
	lite := &SQLStore{d: sqliteDialect}
	if got := lite.bind("a = ?"); got != "a = ?" {
		t.Fatalf("unexpected query %q", got)
	}
}

// postgresDSN returns PVSIM_TEST_POSTGRES_DSN, or starts a throwaway
// container when docker is available.
func postgresDSN(t *testing.T) string {
	t.Helper()
	if dsn := os.Getenv("PVSIM_TEST_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("DOCKER_AVAILABLE") != "true" && os.Getenv("DOCKER_AVAILABLE") != "1" {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "pvsim",
			"POSTGRES_PASSWORD": "pvsim",
			"POSTGRES_DB":       "pvsim",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("5432/tcp"),
			wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
		).WithDeadline(time.Minute),
	}
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Errorf("failed to terminate container: %v", err)
		}
	})
	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get mapped port: %v", err)
	}
	return fmt.Sprintf("postgres://pvsim:pvsim@%s:%s/pvsim?sslmode=disable", host, port.Port())
}

func TestPostgresStoreIntegration(t *testing.T) {
	dsn := postgresDSN(t)
	s, err := NewPostgresStore(dsn, 2)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, err := s.db.Exec("TRUNCATE runs"); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, e := range []events.RunFinished{
		{RunID: "a", Tariff: "static", Mode: "continuous", StartedAt: base},
		{RunID: "b", Tariff: "combined", Mode: "daily_reset", StartedAt: base.Add(time.Hour)},
		{RunID: "c", Tariff: "static", Mode: "continuous", StartedAt: base.Add(2 * time.Hour), Err: "empty simulation horizon"},
	} {
		if err := s.Add(e); err != nil {
			t.Fatalf("add %d: %v", i, err)
		}
	}

	if _, err := s.Get("a"); !errors.Is(err, runstore.ErrNotFound) {
		t.Fatalf("expected a to be pruned, got %v", err)
	}
	got, err := s.Get("b")
	if err != nil || got.Tariff != "combined" {
		t.Fatalf("get b: %+v %v", got, err)
	}

	failed := true
	list, err := s.List(runstore.Filter{Failed: &failed})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].RunID != "c" {
		t.Fatalf("unexpected failed runs: %+v", list)
	}
	list, err = s.List(runstore.Filter{Since: base.Add(30 * time.Minute)})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 || list[0].RunID != "c" {
		t.Fatalf("unexpected runs since: %+v", list)
	}
}
