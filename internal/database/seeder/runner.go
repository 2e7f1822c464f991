package seeder

import (
	"context"
	"fmt"
	"time"

	"skillxintell/internal/database"
	"skillxintell/internal/pkg/logger"
)

type Runner struct {
	Seeders []Seeder
	Logger  logger.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return database.ErrNilDB
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		if r.Logger != nil {
			r.Logger.Info("seeder applied", "name", s.Name(), "took", time.Since(start).Round(time.Millisecond))
		}
	}
	return nil
}
