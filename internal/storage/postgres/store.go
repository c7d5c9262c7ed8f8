package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rangePlanner/internal/model"
)

// Schema creates the tables the store writes to.
const Schema = `
CREATE TABLE IF NOT EXISTS pools (
	chain_id           BIGINT  NOT NULL,
	pool_address       TEXT    NOT NULL,
	token0             TEXT    NOT NULL,
	token1             TEXT    NOT NULL,
	fee                INTEGER NOT NULL,
	tick_spacing       INTEGER NOT NULL,
	first_quoted_block BIGINT  NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (chain_id, pool_address)
);

CREATE TABLE IF NOT EXISTS position_drafts (
	id             BIGSERIAL PRIMARY KEY,
	chain_id       BIGINT  NOT NULL,
	pool_address   TEXT    NOT NULL,
	block_number   BIGINT  NOT NULL,
	block_time     BIGINT,
	tick_lower     INTEGER NOT NULL,
	tick_upper     INTEGER NOT NULL,
	tick_current   INTEGER NOT NULL,
	range_case     TEXT    NOT NULL,
	sqrt_price_x96 NUMERIC(49, 0) NOT NULL,
	price          NUMERIC NOT NULL,
	liquidity      NUMERIC(39, 0) NOT NULL,
	amount0        NUMERIC(78, 0) NOT NULL,
	amount1        NUMERIC(78, 0) NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS position_drafts_pool_idx
	ON position_drafts (chain_id, pool_address, block_number);
`

// Store persists pools and position drafts.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

const upsertPoolSQL = `
	INSERT INTO pools (
		chain_id, pool_address, token0, token1, fee, tick_spacing, first_quoted_block, created_at, updated_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, now(), now())
	ON CONFLICT (chain_id, pool_address)
	DO UPDATE SET
		token0 = EXCLUDED.token0,
		token1 = EXCLUDED.token1,
		fee = EXCLUDED.fee,
		tick_spacing = EXCLUDED.tick_spacing,
		first_quoted_block = LEAST(pools.first_quoted_block, EXCLUDED.first_quoted_block),
		updated_at = now()
`

const insertDraftSQL = `
	INSERT INTO position_drafts (
		chain_id, pool_address, block_number, block_time, tick_lower, tick_upper, tick_current,
		range_case, sqrt_price_x96, price, liquidity, amount0, amount1
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
`

func queuePool(batch *pgx.Batch, pool model.PoolRecord) {
	batch.Queue(upsertPoolSQL,
		int64(pool.ChainID),
		pool.Address,
		pool.Token0,
		pool.Token1,
		pool.Fee,
		pool.TickSpacing,
		int64(pool.FirstQuotedBlock),
	)
}

// UpsertPools inserts or refreshes pool metadata.
func (s *Store) UpsertPools(ctx context.Context, pools []model.PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		queuePool(batch, pool)
	}
	return s.send(ctx, batch)
}

// InsertDrafts writes drafts together with the pools they reference in a
// single batch.
func (s *Store) InsertDrafts(ctx context.Context, drafts []model.PositionDraftRecord) error {
	if len(drafts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range poolsOf(drafts) {
		queuePool(batch, pool)
	}
	for _, d := range drafts {
		var blockTime *int64
		if d.BlockTime > 0 {
			ts := int64(d.BlockTime)
			blockTime = &ts
		}
		batch.Queue(insertDraftSQL,
			int64(d.ChainID),
			d.Pool,
			int64(d.BlockNumber),
			blockTime,
			d.TickLower,
			d.TickUpper,
			d.TickCurrent,
			d.RangeCase,
			d.SqrtPriceX96,
			d.Price,
			d.Liquidity,
			d.Amount0,
			d.Amount1,
		)
	}
	return s.send(ctx, batch)
}

func (s *Store) send(ctx context.Context, batch *pgx.Batch) error {
	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// poolsOf returns one pool row per (chain, address), keeping the earliest
// block a draft was priced at.
func poolsOf(drafts []model.PositionDraftRecord) []model.PoolRecord {
	type key struct {
		chainID uint64
		address string
	}
	index := make(map[key]int)
	var pools []model.PoolRecord
	for _, d := range drafts {
		k := key{d.ChainID, d.Pool}
		if i, ok := index[k]; ok {
			if d.BlockNumber < pools[i].FirstQuotedBlock {
				pools[i].FirstQuotedBlock = d.BlockNumber
			}
			continue
		}
		index[k] = len(pools)
		pools = append(pools, model.PoolRecord{
			ChainID:          d.ChainID,
			Address:          d.Pool,
			Token0:           d.Token0,
			Token1:           d.Token1,
			Fee:              d.Fee,
			TickSpacing:      d.TickSpacing,
			FirstQuotedBlock: d.BlockNumber,
		})
	}
	return pools
}

// DraftSink binds the store to ctx so it can serve as a storage.DraftSink.
func (s *Store) DraftSink(ctx context.Context) *DraftSink {
	return &DraftSink{ctx: ctx, store: s}
}

type DraftSink struct {
	ctx   context.Context
	store *Store
}

func (d *DraftSink) PutDraftBatch(drafts []model.PositionDraftRecord) error {
	return d.store.InsertDrafts(d.ctx, drafts)
}
