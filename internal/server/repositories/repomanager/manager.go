package repomanager

import (
	"context"
	"database/sql"

	"github.com/voicetasker/voicetasker/internal/dbx"
	"github.com/voicetasker/voicetasker/internal/server/repositories/admins"
	"github.com/voicetasker/voicetasker/internal/server/repositories/logs"
	"github.com/voicetasker/voicetasker/internal/server/repositories/refreshtokens"
	"github.com/voicetasker/voicetasker/internal/server/repositories/visits"
)

// RepositoryManager vends repository implementations bound to a DBTX so that
// services can run any subset of them inside one transaction.
type RepositoryManager interface {
	Logs(db dbx.DBTX) logs.Repository
	Admins(db dbx.DBTX) admins.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Visits(db dbx.DBTX) visits.Repository
	RunMigrations(ctx context.Context, db *sql.DB) error
}
