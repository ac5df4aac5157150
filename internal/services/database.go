package services

import (
	"context"

	"github.com/proofpanel/docvault/internal/engine"
	"github.com/proofpanel/docvault/internal/models"
	"github.com/proofpanel/docvault/internal/store"
)

// DefaultRequiredTables is the table set a seeded document is expected to
// carry.
var DefaultRequiredTables = []string{"Pages", "Cells", "PolygonData"}

// DatabaseService exposes the embedded database to handlers and the CLI.
type DatabaseService struct {
	store          *store.Store
	requiredTables []string
}

// NewDatabaseService creates the service. A nil or empty requiredTables
// falls back to DefaultRequiredTables.
func NewDatabaseService(st *store.Store, requiredTables []string) *DatabaseService {
	if len(requiredTables) == 0 {
		requiredTables = DefaultRequiredTables
	}
	return &DatabaseService{
		store:          st,
		requiredTables: requiredTables,
	}
}

// RunQuery executes one statement and returns its result set. Mutating
// statements persist in the background.
func (s *DatabaseService) RunQuery(ctx context.Context, sqlText string) (*engine.ResultSet, error) {
	return s.store.Database().Execute(ctx, sqlText)
}

// Seed runs a seed script and persists the result before returning.
func (s *DatabaseService) Seed(ctx context.Context, sqlText string) error {
	return s.store.Database().SeedDatabase(ctx, sqlText)
}

// State reports schema state against the required table set.
func (s *DatabaseService) State(ctx context.Context) (*models.DatabaseState, error) {
	return s.store.Database().RequiredTableState(ctx, s.requiredTables)
}

// Delete removes the embedded database and its snapshot part.
func (s *DatabaseService) Delete(ctx context.Context) error {
	return s.store.Database().DeleteDatabase(ctx)
}
