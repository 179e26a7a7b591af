package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/arclight-ai/arclight/internal/store"
	"github.com/arclight-ai/arclight/internal/store/model"
)

// DB is the query surface shared by *sqlx.DB and *sqlx.Tx.
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// SqliteRepository implements store.Repository.
type SqliteRepository struct {
	db       *sqlx.DB // required for starting new transactions
	executor DB       // *sqlx.DB or *sqlx.Tx
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return &SqliteRepository{
		db:       db,
		executor: db,
	}
}

func (r *SqliteRepository) Close() error {
	return r.db.Close()
}

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	txRepo := &SqliteRepository{
		db:       r.db,
		executor: tx,
	}

	if err := fn(txRepo); err != nil {
		// attempt rollback, but prioritize original error
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Requests() store.RequestRepository {
	return &requestRepo{db: r.executor}
}

type requestRepo struct {
	db DB
}

func (r *requestRepo) Log(ctx context.Context, log *model.RequestLog) error {
	query := `
	INSERT INTO request_logs (
		id, kind, provider_id, model_id, upstream_model_id,
		finish_reason, error_kind,
		input_tokens, output_tokens,
		latency_ms, ttft_ms, status_code, is_streamed, created_at
	) VALUES (
		:id, :kind, :provider_id, :model_id, :upstream_model_id,
		:finish_reason, :error_kind,
		:input_tokens, :output_tokens,
		:latency_ms, :ttft_ms, :status_code, :is_streamed, :created_at
	)`
	_, err := r.db.NamedExecContext(ctx, query, log)
	return err
}

func (r *requestRepo) GetByID(ctx context.Context, id string) (*model.RequestLog, error) {
	var log model.RequestLog
	if err := r.db.GetContext(ctx, &log, `SELECT * FROM request_logs WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *requestRepo) GetRecent(ctx context.Context, limit int) ([]model.RequestLog, error) {
	var logs []model.RequestLog
	query := `SELECT * FROM request_logs ORDER BY created_at DESC LIMIT ?`
	err := r.db.SelectContext(ctx, &logs, query, limit)
	return logs, err
}

func (r *requestRepo) GetDailyStats(ctx context.Context, days int) ([]model.DailyStats, error) {
	var stats []model.DailyStats
	query := `
		SELECT
			DATE(created_at) as date,
			COUNT(*) as total_requests,
			SUM(input_tokens + output_tokens) as total_tokens,
			AVG(latency_ms) as avg_latency
		FROM request_logs
		WHERE created_at >= DATE('now', ?)
		GROUP BY date
		ORDER BY date DESC
	`
	// SQLite date offset format is '-7 days'
	err := r.db.SelectContext(ctx, &stats, query, fmt.Sprintf("-%d days", days))
	return stats, err
}
