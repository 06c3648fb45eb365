//go:build integration

package ledger_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/talent-ledger/internal/ledger"
	"github.com/spec-kit/talent-ledger/internal/persistence"
)

func openLedger(t *testing.T) (*pgxpool.Pool, *ledger.Postgres) {
	t.Helper()
	dsn := os.Getenv("LEDGER_TEST_DSN")
	if dsn == "" {
		t.Skip("LEDGER_TEST_DSN not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, persistence.RunMigrations(ctx, pool, filepath.Join("..", "..", "migrations"), zap.NewNop()))
	return pool, ledger.NewPostgres(pool)
}

func seedActor(t *testing.T, pool *pgxpool.Pool, actorType string, coins int64) string {
	t.Helper()
	ctx := context.Background()
	var id string
	err := pool.QueryRow(ctx,
		`INSERT INTO actors (auth_user_id, actor_type, profile_id) VALUES ($1, $2, $3) RETURNING id`,
		uuid.NewString(), actorType, uuid.NewString(),
	).Scan(&id)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO coin_balances (actor_id, balance) VALUES ($1, $2)`, id, coins)
	require.NoError(t, err)
	return id
}

func requireProcedureMessage(t *testing.T, err error, msg string) {
	t.Helper()
	var procErr *ledger.ProcedureError
	require.True(t, errors.As(err, &procErr), "expected ProcedureError, got %v", err)
	assert.Equal(t, msg, procErr.Message)
}

func TestPostgresConcurrentDebitsNeverOverdraw(t *testing.T) {
	pool, pg := openLedger(t)
	ctx := context.Background()
	fan := seedActor(t, pool, "fan", 100)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pg.Debit(ctx, ledger.DebitRequest{ActorID: fan, Amount: 60})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	failures := 0
	for err := range errs {
		if err != nil {
			failures++
			requireProcedureMessage(t, err, ledger.MsgInsufficientBalance)
		}
	}
	assert.Equal(t, 1, failures)

	balance, err := pg.Balance(ctx, fan)
	require.NoError(t, err)
	assert.Equal(t, int64(40), balance)
}

func TestPostgresTransferAndBidEscrow(t *testing.T) {
	pool, pg := openLedger(t)
	ctx := context.Background()
	fan := seedActor(t, pool, "fan", 100)
	rival := seedActor(t, pool, "fan", 100)
	model := seedActor(t, pool, "model", 0)

	_, err := pg.Transfer(ctx, ledger.TransferRequest{FromActorID: fan, ToActorID: model, Amount: 101})
	requireProcedureMessage(t, err, ledger.MsgInsufficientBalance)
	_, err = pg.Transfer(ctx, ledger.TransferRequest{FromActorID: fan, ToActorID: fan, Amount: 1})
	requireProcedureMessage(t, err, ledger.MsgTransferToSelf)

	var auctionID string
	err = pool.QueryRow(ctx,
		`INSERT INTO auctions (owner_actor_id, title, starting_bid, ends_at) VALUES ($1, 'Signed print', 10, $2) RETURNING id`,
		model, time.Now().Add(time.Hour),
	).Scan(&auctionID)
	require.NoError(t, err)

	_, err = pg.PlaceBid(ctx, ledger.PlaceBidRequest{AuctionID: auctionID, BidderActorID: fan, Amount: 40})
	require.NoError(t, err)
	_, err = pg.PlaceBid(ctx, ledger.PlaceBidRequest{AuctionID: auctionID, BidderActorID: rival, Amount: 40})
	requireProcedureMessage(t, err, ledger.MsgBidTooLow)
	_, err = pg.PlaceBid(ctx, ledger.PlaceBidRequest{AuctionID: auctionID, BidderActorID: rival, Amount: 50})
	require.NoError(t, err)

	fanBalance, err := pg.Balance(ctx, fan)
	require.NoError(t, err)
	assert.Equal(t, int64(100), fanBalance, "outbid escrow refunded")

	res, err := pg.CancelAuction(ctx, ledger.CancelAuctionRequest{AuctionID: auctionID, OwnerActorID: model})
	require.NoError(t, err)
	assert.Equal(t, 1, res.RefundedBids)

	rivalBalance, err := pg.Balance(ctx, rival)
	require.NoError(t, err)
	assert.Equal(t, int64(100), rivalBalance)
}

func TestPostgresSettleCallRejectsOversizedCharges(t *testing.T) {
	pool, pg := openLedger(t)
	ctx := context.Background()
	fan := seedActor(t, pool, "fan", 100)
	model := seedActor(t, pool, "model", 0)

	newCall := func(rate int64) string {
		var id string
		err := pool.QueryRow(ctx,
			`INSERT INTO call_sessions (fan_actor_id, model_actor_id, rate_per_minute) VALUES ($1, $2, $3) RETURNING id`,
			fan, model, rate,
		).Scan(&id)
		require.NoError(t, err)
		return id
	}

	_, err := pg.SettleCall(ctx, ledger.SettleCallRequest{CallID: newCall(10), FanActorID: fan, DurationSeconds: math.MaxInt64})
	requireProcedureMessage(t, err, ledger.MsgInvalidDuration)
	_, err = pg.SettleCall(ctx, ledger.SettleCallRequest{CallID: newCall(math.MaxInt64), FanActorID: fan, DurationSeconds: 3600})
	requireProcedureMessage(t, err, ledger.MsgInsufficientBalance)

	var settled int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM call_sessions WHERE fan_actor_id = $1 AND status = 'settled'`, fan).Scan(&settled))
	assert.Zero(t, settled)
	balance, err := pg.Balance(ctx, fan)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)
}
