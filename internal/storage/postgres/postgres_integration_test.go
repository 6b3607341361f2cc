//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/domain"
	pgrepo "github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage/postgres"
	"github.com/Nazarii-Pak/front-row-labs-back-end/internal/storage/storetest"
)

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Skipf("dockertest: %v", err)
	}
	if err := pool.Client.Ping(); err != nil {
		t.Skipf("docker unavailable: %v", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=postgres",
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_DB=reviews",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run postgres: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	dsn := fmt.Sprintf("host=127.0.0.1 port=%s user=postgres password=postgres dbname=reviews sslmode=disable",
		resource.GetPort("5432/tcp"))

	var db *gorm.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = pgrepo.Open(dsn, 4)
		if e != nil {
			return e
		}
		return pgrepo.New(db).Ping(context.Background())
	}); err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, pgrepo.Migrate(context.Background(), db))
	return db
}

func TestRepo_Postgres_Contract(t *testing.T) {
	db := startPostgres(t)
	repo := pgrepo.New(db)

	storetest.Run(t, func(t *testing.T) domain.ReviewRepository {
		require.NoError(t, db.Exec("TRUNCATE TABLE reviews RESTART IDENTITY").Error)
		return repo
	})
}

func TestRepo_Postgres_ErrorKinds(t *testing.T) {
	db := startPostgres(t)
	repo := pgrepo.New(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, domain.ReviewInput{Title: "t", Content: "c", Rating: 0, Author: "a"},
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
	require.Error(t, err)
	assert.Equal(t, domain.KindInvalid, domain.KindOf(err))

	_, err = repo.Get(ctx, 12345)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
