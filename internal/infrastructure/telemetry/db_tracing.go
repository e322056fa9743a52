package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig holds database span settings
type DBTracingConfig struct {
	Enabled         bool
	LogFullSQL      bool // include bound query variables in spans
	SlowQueryThresh time.Duration
}

type queryStartKey struct{}

// RegisterDBTracing installs the otelgorm plugin on db plus callbacks that
// flag statements slower than the threshold on the active span.
func RegisterDBTracing(db *gorm.DB, cfg DBTracingConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
	if !cfg.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	threshold := cfg.SlowQueryThresh
	if threshold <= 0 {
		threshold = 200 * time.Millisecond
	}
	before := func(tx *gorm.DB) {
		if tx.Statement.Context != nil {
			tx.Statement.Context = context.WithValue(tx.Statement.Context, queryStartKey{}, time.Now())
		}
	}
	after := func(tx *gorm.DB) { markSlowQuery(tx, threshold) }

	cb := db.Callback()
	regs := []error{
		cb.Create().Before("gorm:create").Register("slow_query:before_create", before),
		cb.Create().After("gorm:create").Register("slow_query:after_create", after),
		cb.Query().Before("gorm:query").Register("slow_query:before_query", before),
		cb.Query().After("gorm:query").Register("slow_query:after_query", after),
		cb.Update().Before("gorm:update").Register("slow_query:before_update", before),
		cb.Update().After("gorm:update").Register("slow_query:after_update", after),
		cb.Delete().Before("gorm:delete").Register("slow_query:before_delete", before),
		cb.Delete().After("gorm:delete").Register("slow_query:after_delete", after),
		cb.Row().Before("gorm:row").Register("slow_query:before_row", before),
		cb.Row().After("gorm:row").Register("slow_query:after_row", after),
		cb.Raw().Before("gorm:raw").Register("slow_query:before_raw", before),
		cb.Raw().After("gorm:raw").Register("slow_query:after_raw", after),
	}
	if err := errors.Join(regs...); err != nil {
		return err
	}

	logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", cfg.LogFullSQL),
		zap.Duration("slow_query_threshold", threshold),
	)
	return nil
}

func markSlowQuery(tx *gorm.DB, threshold time.Duration) {
	ctx := tx.Statement.Context
	if ctx == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	start, ok := ctx.Value(queryStartKey{}).(time.Time)
	if !ok {
		return
	}
	if elapsed := time.Since(start); elapsed > threshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
		span.AddEvent("slow_query")
	}
}
