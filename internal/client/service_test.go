package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	accent "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/entity"
	accrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/repo"
	clientrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
)

func setupTest(t *testing.T) (*Service, *sqlx.DB) {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)",
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	ctx := context.Background()
	if err := accrepo.NewAccountantRepo(db).EnsureTable(ctx); err != nil {
		t.Fatalf("accountants table: %v", err)
	}
	if err := clientrepo.NewClientRepo(db).EnsureTable(ctx); err != nil {
		t.Fatalf("clients table: %v", err)
	}
	return NewService(db, nil, zap.NewNop().Sugar()), db
}

func addAccountant(t *testing.T, db *sqlx.DB, id, first, last string) string {
	t.Helper()
	a := accent.NewAccountant(id, time.Now().UTC())
	a.FirstName = first
	a.LastName = last
	a.Email = id + "@cads.ca"
	if err := accrepo.NewAccountantRepo(db).Create(context.Background(), a); err != nil {
		t.Fatalf("create accountant %s: %v", id, err)
	}
	return id
}

func TestCreateDefaults(t *testing.T) {
	s, db := setupTest(t)
	ctx := context.Background()
	accID := addAccountant(t, db, "acc-1", "Marie", "Tremblay")

	c, err := s.Create(ctx, CreateInput{
		FirstName: "Jean", LastName: "Côté", Email: "Jean@Example.com",
		NASNumber: "123 456 789", AccountantID: &accID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" || c.Status != "ACTIVE" {
		t.Fatalf("unexpected defaults: %+v", c)
	}
	if c.Email != "Jean@Example.com" {
		t.Fatalf("client email should be stored as given, got %q", c.Email)
	}

	got, err := s.Get(ctx, c.ID, GetOptions{WithAccountant: true})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AccountantName() != "Marie Tremblay" {
		t.Fatalf("AccountantName = %q", got.AccountantName())
	}
	plain, err := s.Get(ctx, c.ID, GetOptions{})
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if plain.Accountant != nil {
		t.Fatalf("accountant loaded without WithAccountant")
	}
}

func TestCreateFieldsKeepsCallerID(t *testing.T) {
	s, db := setupTest(t)
	ctx := context.Background()
	addAccountant(t, db, "acc-1", "Marie", "Tremblay")

	c, err := s.CreateFields(ctx, Fields{
		"id": "client-42", "first_name": "Jean", "last_name": "Côté", "accountant": "acc-1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID != "client-42" || c.AccountantID == nil || *c.AccountantID != "acc-1" {
		t.Fatalf("unexpected record %+v", c)
	}

	_, err = s.CreateFields(ctx, Fields{"id": "client-42", "first_name": "Dup", "last_name": "Dup"})
	if !errors.Is(err, database.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate for reused id, got %v", err)
	}
}

func TestCreateUnknownAccountant(t *testing.T) {
	s, _ := setupTest(t)
	ghost := "nobody"
	_, err := s.Create(context.Background(), CreateInput{FirstName: "Jean", LastName: "Côté", AccountantID: &ghost})
	if !errors.Is(err, database.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	all, _ := s.List(context.Background(), ListOptions{})
	if len(all) != 0 {
		t.Fatalf("rejected insert left %d rows", len(all))
	}
}

func TestListWithAccountantAndSearch(t *testing.T) {
	s, db := setupTest(t)
	ctx := context.Background()
	acc := addAccountant(t, db, "acc-1", "Marie", "Tremblay")
	other := addAccountant(t, db, "acc-2", "Hélène", "Bérubé")
	for _, in := range []CreateInput{
		{FirstName: "Jean", LastName: "Roy", AccountantID: &acc},
		{FirstName: "Lise", LastName: "Aubin"},
		{FirstName: "Paul", LastName: "Morin", Email: "paul@morin.ca", AccountantID: &acc},
		{FirstName: "Élise", LastName: "Éthier", AccountantID: &other},
	} {
		if _, err := s.Create(ctx, in); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	got, err := s.List(ctx, ListOptions{WithAccountant: true})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []struct{ last, accountant string }{
		{"Aubin", "Non assigné"},
		{"Morin", "Marie Tremblay"},
		{"Roy", "Marie Tremblay"},
		{"Éthier", "Hélène Bérubé"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows", len(got))
	}
	for i, w := range want {
		if got[i].LastName != w.last || got[i].AccountantName() != w.accountant {
			t.Fatalf("row %d = %s/%s, want %s/%s", i, got[i].LastName, got[i].AccountantName(), w.last, w.accountant)
		}
	}

	tests := []struct {
		search string
		want   int
	}{
		{"tremblay", 2},
		{"MORIN", 1},
		{"lise", 2},
		{"ÉLISE", 1},
		{"éthier", 1},
		{"hélène bérubé", 1},
		{"BÉRUBÉ", 1},
		{"zzz", 0},
	}
	for _, tt := range tests {
		rows, err := s.List(ctx, ListOptions{Search: tt.search})
		if err != nil {
			t.Fatalf("list %q: %v", tt.search, err)
		}
		if len(rows) != tt.want {
			t.Errorf("search %q: got %d rows, want %d", tt.search, len(rows), tt.want)
		}
	}
}

func TestUpdateFieldsSemantics(t *testing.T) {
	s, db := setupTest(t)
	ctx := context.Background()
	acc := addAccountant(t, db, "acc-1", "Marie", "Tremblay")
	c, err := s.Create(ctx, CreateInput{
		FirstName: "Jean", LastName: "Roy", Email: "jean@roy.ca", Phone: "514-555-0101",
		NASNumber: "123456789", Address: "1 rue Principale", AccountantID: &acc,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.UpdateFields(ctx, c.ID, Fields{"first_name": "Jean-Luc", "last_name": "Roy", "email": "jean@roy.ca"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.FirstName != "Jean-Luc" || got.Phone != "" {
		t.Fatalf("core fields not overwritten: %+v", got)
	}
	if got.AccountantID != nil {
		t.Fatalf("omitted accountant should unassign the client")
	}
	if got.NASNumber != "123456789" || got.Address != "1 rue Principale" || got.Status != "ACTIVE" {
		t.Fatalf("optional fields changed: %+v", got)
	}

	got, err = s.UpdateFields(ctx, c.ID, Fields{
		"first_name": "Jean-Luc", "last_name": "Roy", "accountant": acc,
		"status": "INACTIVE", "date_left": "2025-03-31",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.AccountantID == nil || *got.AccountantID != acc || got.Status != "INACTIVE" || got.DateLeft == nil {
		t.Fatalf("unexpected record %+v", got)
	}

	_, err = s.UpdateFields(ctx, c.ID, Fields{"first_name": "X", "last_name": "Y", "accountant": "ghost"})
	if !errors.Is(err, database.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
	stored, _ := s.Get(ctx, c.ID, GetOptions{})
	if stored.FirstName != "Jean-Luc" {
		t.Fatalf("failed update leaked: %+v", stored)
	}
}

func TestUpdatePatch(t *testing.T) {
	s, db := setupTest(t)
	ctx := context.Background()
	acc := addAccountant(t, db, "acc-1", "Marie", "Tremblay")
	c, err := s.Create(ctx, CreateInput{FirstName: "Jean", LastName: "Roy", Phone: "514-555-0101", AccountantID: &acc})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	addr := "2 rue Neuve"
	got, err := s.Update(ctx, c.ID, Patch{Address: &addr})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Address != addr || got.Phone != "514-555-0101" || got.AccountantID == nil {
		t.Fatalf("absent fields changed: %+v", got)
	}
	none := ""
	got, err = s.Update(ctx, c.ID, Patch{AccountantID: &none})
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if got.AccountantID != nil {
		t.Fatalf("expected client to be unassigned")
	}
}

func TestDeleteAndNotFound(t *testing.T) {
	s, _ := setupTest(t)
	ctx := context.Background()
	c, err := s.Create(ctx, CreateInput{FirstName: "Jean", LastName: "Roy"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	kept, err := s.Create(ctx, CreateInput{FirstName: "Lise", LastName: "Aubin"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if all, _ := s.List(ctx, ListOptions{}); len(all) != 2 {
		t.Fatalf("expected 2 clients before delete, got %d", len(all))
	}
	if err := s.Delete(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	all, err := s.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 || all[0].ID != kept.ID {
		t.Fatalf("delete removed more than its row: %+v", all)
	}
	if err := s.Delete(ctx, c.ID); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("second delete: %v", err)
	}
	if _, err := s.Get(ctx, c.ID, GetOptions{}); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("get: %v", err)
	}
	if _, err := s.UpdateFields(ctx, c.ID, Fields{"first_name": "X"}); !errors.Is(err, database.ErrNotFound) {
		t.Fatalf("update: %v", err)
	}
}
