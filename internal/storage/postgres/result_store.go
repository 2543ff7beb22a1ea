package postgres

import (
	"context"
	_ "embed"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/fleshka4/pair-resolver/internal/storage"
)

//go:embed schema.sql
var schemaSQL string

// ResultStore provides Postgres persistence for immutable call results of one chain.
type ResultStore struct {
	pool    *pgxpool.Pool
	chainID uint64
}

// Compile-time interface check.
var _ storage.ResultStore = (*ResultStore)(nil)

// NewResultStore connects to Postgres and verifies the connection.
func NewResultStore(ctx context.Context, dsn string, chainID uint64) (*ResultStore, error) {
	if dsn == "" {
		return nil, errors.New("pg dsn is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.ParseConfig")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "pgxpool.NewWithConfig")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "pool.Ping")
	}

	return &ResultStore{pool: pool, chainID: chainID}, nil
}

// Close closes the connection pool.
func (s *ResultStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates the tables used by the store.
func (s *ResultStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return errors.Wrap(err, "s.pool.Exec")
	}
	return nil
}

// LoadResults returns every stored result of the store's chain.
func (s *ResultStore) LoadResults(ctx context.Context) ([]storage.CallResult, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT target, call_data, return_data
		FROM call_results
		WHERE chain_id = $1
		ORDER BY target, call_data
	`, int64(s.chainID))
	if err != nil {
		return nil, errors.Wrap(err, "s.pool.Query")
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (storage.CallResult, error) {
		var (
			target     string
			callData   []byte
			returnData []byte
		)
		if err := row.Scan(&target, &callData, &returnData); err != nil {
			return storage.CallResult{}, err
		}
		if !common.IsHexAddress(target) {
			return storage.CallResult{}, errors.Errorf("bad target address %q", target)
		}
		return storage.CallResult{
			Target:     common.HexToAddress(target),
			CallData:   callData,
			ReturnData: returnData,
		}, nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "pgx.CollectRows")
	}

	return results, nil
}

// SaveResults inserts or updates results in a single batch.
func (s *ResultStore) SaveResults(ctx context.Context, results []storage.CallResult) error {
	if len(results) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, r := range results {
		batch.Queue(`
			INSERT INTO call_results (chain_id, target, call_data, return_data, created_at, updated_at)
			VALUES ($1, $2, $3, $4, now(), now())
			ON CONFLICT (chain_id, target, call_data)
			DO UPDATE SET
				return_data = EXCLUDED.return_data,
				updated_at = now()
		`,
			int64(s.chainID),
			r.Target.Hex(),
			r.CallData,
			r.ReturnData,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return errors.Wrap(err, "br.Exec")
		}
	}
	return nil
}
