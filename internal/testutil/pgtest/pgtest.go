// Package pgtest starts a throwaway postgres container for tests.
package pgtest

import (
	"fmt"
	"log"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is nil when docker is unreachable. Tests call Fresh, which skips.
var DB *gorm.DB

// Main wraps m.Run for a package TestMain: it boots postgres, runs the
// tests and purges the container.
func Main(m *testing.M) int {
	pool, err := dockertest.NewPool("")
	if err == nil {
		err = pool.Client.Ping()
	}
	if err != nil {
		log.Printf("docker not available, postgres tests will be skipped: %v", err)
		return m.Run()
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=inventory",
			"POSTGRES_PASSWORD=secret",
			"POSTGRES_DB=inventory_test",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Printf("could not start postgres, postgres tests will be skipped: %v", err)
		return m.Run()
	}
	defer func() {
		if err := pool.Purge(resource); err != nil {
			log.Printf("could not purge postgres: %v", err)
		}
	}()
	_ = resource.Expire(300)

	dsn := fmt.Sprintf(
		"postgres://inventory:secret@%s/inventory_test?sslmode=disable",
		resource.GetHostPort("5432/tcp"),
	)

	pool.MaxWait = 90 * time.Second
	if err = pool.Retry(func() error {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		if err = sqlDB.Ping(); err != nil {
			return err
		}
		DB = db
		return nil
	}); err != nil {
		log.Printf("postgres never became ready: %v", err)
		return 1
	}

	return m.Run()
}

// Fresh returns the shared database with an empty public schema, or skips
// the test when postgres is not available.
func Fresh(t *testing.T, migrate func(db *gorm.DB) error) *gorm.DB {
	t.Helper()

	if DB == nil {
		t.Skip("postgres is not available")
	}
	for _, stmt := range []string{"DROP SCHEMA public CASCADE", "CREATE SCHEMA public"} {
		if err := DB.Exec(stmt).Error; err != nil {
			t.Fatalf("reset schema: %v", err)
		}
	}
	if err := migrate(DB); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	return DB
}
