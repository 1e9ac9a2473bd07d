package database

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Cleanup removes spot prices older than the retention period.
func (db *Database) Cleanup(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	tag, err := db.pool.Exec(ctx, "DELETE FROM spot_prices WHERE hour_start < $1", time.Now().AddDate(0, 0, -retentionDays))
	if err != nil {
		return err
	}
	db.logger.Info("removed old spot prices", zap.Int64("rows", tag.RowsAffected()))
	return nil
}
