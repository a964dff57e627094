// Package app owns the store handle and the services built on it. The
// process root opens it once at start-up and closes it on shutdown.
package app

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant"
	accrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/admin"
	adminrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/admin/repo"
	casefilerepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/casefile/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/client"
	clientrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/dashboard"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/utilities"
)

type Options struct {
	Database database.Config
	Session  admin.SessionConfig
	NewID    utilities.IDFunc
	Hasher   admin.PasswordHasher
	Logger   *zap.SugaredLogger
}

// App is the wired application. Every service shares DB.
type App struct {
	DB          *sqlx.DB
	Admins      *admin.Service
	Sessions    *admin.Sessions
	Accountants *accountant.Service
	Clients     *client.Service
	Dashboard   *dashboard.Service

	logger *zap.SugaredLogger
}

// New connects to the store, creates any missing tables and builds the services.
func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	db, err := database.Connect(opts.Database)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	logger.Infow("database ready", "driver", opts.Database.Driver)

	admins := admin.NewService(db, opts.Hasher, opts.NewID, logger.Named("admin"))
	return &App{
		DB:          db,
		Admins:      admins,
		Sessions:    admin.NewSessions(opts.Session, admins),
		Accountants: accountant.NewService(db, opts.NewID, logger.Named("accountant")),
		Clients:     client.NewService(db, opts.NewID, logger.Named("client")),
		Dashboard:   dashboard.NewService(db, logger.Named("dashboard")),
		logger:      logger,
	}, nil
}

// EnsureSchema creates the tables in foreign key order. Safe to call on
// every start.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"admins", adminrepo.NewAdminRepo(db).EnsureTable},
		{"accountants", accrepo.NewAccountantRepo(db).EnsureTable},
		{"clients", clientrepo.NewClientRepo(db).EnsureTable},
		{"case files", casefilerepo.NewCaseFileRepo(db).EnsureTables},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("ensure %s schema: %w", s.name, err)
		}
	}
	return nil
}

// Close releases the store handle.
func (a *App) Close() error {
	a.logger.Info("closing database")
	return a.DB.Close()
}
