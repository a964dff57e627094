package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	accent "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/entity"
	accrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/repo"
	clientent "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/entity"
	clientrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestStats(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	accounts := accrepo.NewAccountantRepo(db)
	clients := clientrepo.NewClientRepo(db)
	if err := accounts.EnsureTable(ctx); err != nil {
		t.Fatalf("accountants table: %v", err)
	}
	if err := clients.EnsureTable(ctx); err != nil {
		t.Fatalf("clients table: %v", err)
	}

	now := time.Now().UTC()
	statuses := []accent.Status{accent.StatusActive, accent.StatusActive, accent.StatusInactive}
	for i, st := range statuses {
		a := accent.NewAccountant(fmt.Sprintf("acc-%d", i), now)
		a.FirstName, a.LastName = "A", fmt.Sprintf("L%d", i)
		a.Email = fmt.Sprintf("a%d@cads.ca", i)
		a.Status = st
		if err := accounts.Create(ctx, a); err != nil {
			t.Fatalf("create accountant: %v", err)
		}
	}
	for i := 0; i < 5; i++ {
		c := clientent.NewClient(fmt.Sprintf("cl-%d", i), now)
		c.FirstName, c.LastName = "C", fmt.Sprintf("L%d", i)
		if err := clients.Create(ctx, c); err != nil {
			t.Fatalf("create client: %v", err)
		}
	}

	got, err := NewService(db, nil).Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{TotalAccountants: 3, TotalClients: 5, ActiveAccountants: 2}
	if got != want {
		t.Fatalf("Stats() = %+v, want %+v", got, want)
	}
}

func TestStatsEmptyStore(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	if err := accrepo.NewAccountantRepo(db).EnsureTable(ctx); err != nil {
		t.Fatalf("accountants table: %v", err)
	}
	if err := clientrepo.NewClientRepo(db).EnsureTable(ctx); err != nil {
		t.Fatalf("clients table: %v", err)
	}
	got, err := NewService(db, nil).Stats(ctx)
	if err != nil || got != (Stats{}) {
		t.Fatalf("Stats() = %+v, %v", got, err)
	}
}

func TestStatsFailureReturnsZeros(t *testing.T) {
	// no tables: every count fails
	db := openTestDB(t)
	got, err := NewService(db, nil).Stats(context.Background())
	if !errors.Is(err, database.ErrStore) {
		t.Fatalf("expected ErrStore, got %v", err)
	}
	if got != (Stats{}) {
		t.Fatalf("expected zero stats, got %+v", got)
	}
}
