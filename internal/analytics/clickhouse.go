// Package analytics implements the optional ClickHouse QA-run sink
// named in the expanded component map, grounded on
// internal/agentd/metrics_clickhouse.go's DSN parsing, ping-on-open,
// and CREATE TABLE IF NOT EXISTS pattern from
// internal/agentd/clickhouse_schema.go, repurposed from OTel metrics
// to one row per answered question.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"

	"linearrag/internal/config"
	"linearrag/internal/qa"
)

// Sink writes answered questions to ClickHouse, one row per qa.Answer.
type Sink struct {
	conn  clickhouse.Conn
	table string
}

// Open parses cfg.DSN, pings the connection, and ensures the run table
// exists. Returns (nil, nil) when analytics is disabled, so callers
// can unconditionally defer to a nil-safe Record.
func Open(ctx context.Context, cfg config.AnalyticsConfig) (*Sink, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, fmt.Errorf("analytics: enabled but dsn is empty")
	}

	opts, err := clickhouse.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("analytics: parse dsn: %w", err)
	}
	conn, err := clickhouse.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("analytics: open connection: %w", err)
	}

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.Ping(ctxPing); err != nil {
		return nil, fmt.Errorf("analytics: ping: %w", err)
	}

	table := cfg.Table
	if table == "" {
		table = "linearrag_qa_runs"
	}
	if err := createRunsTable(ctx, conn, table); err != nil {
		return nil, fmt.Errorf("analytics: create table: %w", err)
	}
	return &Sink{conn: conn, table: table}, nil
}

func createRunsTable(ctx context.Context, conn clickhouse.Conn, table string) error {
	sql := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	RunAt DateTime64(3),
	QuestionID String,
	Dataset LowCardinality(String),
	Question String,
	PredAnswer String,
	GoldAnswer String,
	Correct Bool,
	HasEntities Bool,
	Error String
) ENGINE = MergeTree()
ORDER BY (Dataset, RunAt)
TTL RunAt + INTERVAL 90 DAY
`, table)
	return conn.Exec(ctx, sql)
}

// Record inserts one row per answer in a single batch. A nil Sink is
// a no-op so callers don't need an enabled-check at every call site.
func (s *Sink) Record(ctx context.Context, runAt time.Time, answers []qa.Answer) error {
	if s == nil {
		return nil
	}
	batch, err := s.conn.PrepareBatch(ctx, fmt.Sprintf("INSERT INTO %s", s.table))
	if err != nil {
		return fmt.Errorf("analytics: prepare batch: %w", err)
	}
	for _, a := range answers {
		errStr := ""
		if a.RetrievalError != nil {
			errStr = a.RetrievalError.Error()
		} else if a.AnswererError != nil {
			errStr = a.AnswererError.Error()
		}
		correct := strings.EqualFold(strings.TrimSpace(a.PredAnswer), strings.TrimSpace(a.GoldAnswer))
		if err := batch.Append(
			runAt,
			a.QuestionID,
			a.Dataset,
			a.Question,
			a.PredAnswer,
			a.GoldAnswer,
			correct,
			a.HasEntities,
			errStr,
		); err != nil {
			return fmt.Errorf("analytics: append row: %w", err)
		}
	}
	if err := batch.Send(); err != nil {
		return fmt.Errorf("analytics: send batch: %w", err)
	}
	return nil
}
