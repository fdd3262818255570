package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sbilibin2017/txn-lifecycle/internal/errs"
	"github.com/sbilibin2017/txn-lifecycle/internal/events"
	"github.com/sbilibin2017/txn-lifecycle/internal/models"
	"github.com/sbilibin2017/txn-lifecycle/internal/repositories"
	"github.com/sbilibin2017/txn-lifecycle/internal/rules"
)

func startStores(t *testing.T) (*sqlx.DB, *redis.Client) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			Env:          map[string]string{"POSTGRES_PASSWORD": "secret", "POSTGRES_DB": "testdb", "POSTGRES_USER": "postgres"},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { pg.Terminate(ctx) })

	pgHost, err := pg.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	db, err := sqlx.Connect("pgx", fmt.Sprintf("postgres://postgres:secret@%s:%s/testdb?sslmode=disable", pgHost, pgPort.Port()))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, repositories.Migrate(ctx, db))

	rc, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7.0-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { rc.Terminate(ctx) })

	redisHost, err := rc.Host(ctx)
	require.NoError(t, err)
	redisPort, err := rc.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port())})
	t.Cleanup(func() { rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	return db, rdb
}

func assertSameTransaction(t *testing.T, want, got *models.Transaction) {
	t.Helper()
	assert.Equal(t, want.TransactionID, got.TransactionID)
	assert.Equal(t, want.IdempotencyKey, got.IdempotencyKey)
	assert.True(t, want.Amount.Equal(got.Amount), "amount %s != %s", want.Amount, got.Amount)
	assert.Equal(t, want.Amount.String(), got.Amount.String())
	assert.Equal(t, want.Currency, got.Currency)
	assert.Equal(t, want.FromAccount, got.FromAccount)
	assert.Equal(t, want.ToAccount, got.ToAccount)
	assert.Equal(t, want.Status, got.Status)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "createdAt %s != %s", want.CreatedAt, got.CreatedAt)
	assert.True(t, want.UpdatedAt.Equal(got.UpdatedAt), "updatedAt %s != %s", want.UpdatedAt, got.UpdatedAt)
}

func TestTransactionService_Stores(t *testing.T) {
	db, rdb := startStores(t)
	ctx := context.Background()

	const inFlight = time.Second
	keys := repositories.NewIdempotencyRepository(rdb, inFlight)
	svc := NewTransactionService(
		repositories.NewTransactionWriteRepository(db),
		repositories.NewTransactionReadRepository(db),
		keys,
		events.NewKafkaPublisher(nil),
		rules.ClassificationPolicy(rules.DefaultThresholds()),
		"USD",
	)

	t.Run("create then get returns an identical record", func(t *testing.T) {
		for _, in := range []models.CreateTransactionInput{
			{Amount: "7000.125", Currency: "eur", FromAccount: "ACC-9", ToAccount: "ACC-2", IdempotencyKey: "order-7000"},
			{Amount: "100", FromAccount: "ACC-9", ToAccount: "ACC-2"},
			{Amount: "15000", FromAccount: "ACC-BLOCKED-1", ToAccount: "ACC-2"},
		} {
			created, replayed, err := svc.Create(ctx, in)
			require.NoError(t, err)
			assert.False(t, replayed)

			got, err := svc.Get(ctx, created.TransactionID)
			require.NoError(t, err)
			assertSameTransaction(t, created, got)
		}
	})

	t.Run("reservation of a dead creator lapses", func(t *testing.T) {
		in := models.CreateTransactionInput{Amount: "42", FromAccount: "ACC-9", ToAccount: "ACC-2", IdempotencyKey: "order-dead"}

		_, reserved, err := keys.Reserve(ctx, in.IdempotencyKey, "tx-dead")
		require.NoError(t, err)
		require.True(t, reserved)

		_, _, err = svc.Create(ctx, in)
		require.ErrorIs(t, err, errs.ErrIdempotencyInProgress)

		time.Sleep(inFlight + 500*time.Millisecond)

		created, replayed, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.False(t, replayed)
		assert.NotEqual(t, "tx-dead", created.TransactionID)

		again, replayed, err := svc.Create(ctx, in)
		require.NoError(t, err)
		assert.True(t, replayed)
		assertSameTransaction(t, created, again)
	})
}
