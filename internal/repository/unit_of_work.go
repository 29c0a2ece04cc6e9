package repository

import (
	"context"
	"database/sql"

	"github.com/jengzang/placevisit-backend-go/internal/database"
	"github.com/jengzang/placevisit-backend-go/internal/detection"
)

// UnitOfWork runs detection steps in one SQLite transaction
type UnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork creates a unit of work over db
func NewUnitOfWork(db *sql.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Do implements detection.UnitOfWork
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, s detection.Stores) error) error {
	return database.Transaction(ctx, u.db, func(tx *sql.Tx) error {
		return fn(ctx, detection.Stores{
			Candidates: NewCandidateRepository(tx),
			Visits:     NewVisitRepository(tx),
		})
	})
}
