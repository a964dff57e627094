package client

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-cads-go/internal/client/entity"
	clientrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/form"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/utilities"
)

// Fields is the keyed-field input accepted by CreateFields and UpdateFields.
type Fields = form.Fields

// ListOptions controls List. WithAccountant eagerly attaches the assigned accountant.
type ListOptions struct {
	WithAccountant bool
	Search         string
}

// GetOptions controls Get.
type GetOptions struct {
	WithAccountant bool
}

// CreateInput carries the fields of a new client. ID is generated when empty.
type CreateInput struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	NASNumber    string
	Address      string
	Status       string
	AccountantID *string
}

// Patch lists the fields to change; nil fields are left untouched. An
// empty AccountantID unassigns the client; ClearDateLeft removes DateLeft.
type Patch struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
	NASNumber     *string
	Address       *string
	Status        *string
	AccountantID  *string
	CreatedAt     *time.Time
	DateLeft      *time.Time
	ClearDateLeft bool
}

// Service implements the client record operations.
type Service struct {
	db     *sqlx.DB
	repo   *clientrepo.ClientRepo
	newID  utilities.IDFunc
	now    func() time.Time
	logger *zap.SugaredLogger
	report database.Reporter
}

func NewService(db *sqlx.DB, newID utilities.IDFunc, logger *zap.SugaredLogger) *Service {
	if newID == nil {
		newID = utilities.NewUUID
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		db:     db,
		repo:   clientrepo.NewClientRepo(db),
		newID:  newID,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		logger: logger,
		report: database.NewReporter(logger, form.ErrInvalidField),
	}
}

// List returns every client ordered by last name ascending.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]entity.Client, error) {
	rows, err := s.repo.List(ctx, opts.Search)
	if err != nil {
		return nil, s.report.Fail("list clients", "", err)
	}
	if opts.WithAccountant {
		if err := s.attachAccountants(ctx, rows); err != nil {
			return nil, s.report.Fail("list clients", "", err)
		}
	}
	return rows, nil
}

// Get returns the client with id or database.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string, opts GetOptions) (*entity.Client, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.report.Fail("get client", id, err)
	}
	if opts.WithAccountant {
		one := []entity.Client{*c}
		if err := s.attachAccountants(ctx, one); err != nil {
			return nil, s.report.Fail("get client", id, err)
		}
		c = &one[0]
	}
	return c, nil
}

// Create inserts a new client. Email is stored as given.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Client, error) {
	id := in.ID
	if id == "" {
		id = s.newID()
	}
	c := entity.NewClient(id, s.now())
	c.FirstName = in.FirstName
	c.LastName = in.LastName
	c.Email = in.Email
	c.Phone = in.Phone
	c.NASNumber = in.NASNumber
	c.Address = in.Address
	if in.Status != "" {
		c.Status = in.Status
	}
	if in.AccountantID != nil && *in.AccountantID != "" {
		accID := *in.AccountantID
		c.AccountantID = &accID
	}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repo.WithTx(tx).Create(ctx, c)
	})
	if err != nil {
		return nil, s.report.Fail("create client", c.ID, err)
	}
	s.logger.Infow("client created", "id", c.ID, "name", c.FullName())
	return c, nil
}

// CreateFields creates a client from keyed-field input. Recognised keys are
// id, first_name, last_name, email, phone, nas_number, address, status and
// accountant (or accountant_id).
func (s *Service) CreateFields(ctx context.Context, f Fields) (*entity.Client, error) {
	in, err := InputFromFields(f)
	if err != nil {
		return nil, s.report.Fail("create client", "", err)
	}
	return s.Create(ctx, in)
}

// Update loads the client, applies the fields present in p and saves the
// whole record.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*entity.Client, error) {
	var out *entity.Client
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		r := s.repo.WithTx(tx)
		c, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p.apply(c)
		n, err := r.Update(ctx, c)
		if err != nil {
			return err
		}
		if n == 0 {
			return database.ErrNotFound
		}
		out = c
		return nil
	})
	if err != nil {
		return nil, s.report.Fail("update client", id, err)
	}
	s.logger.Infow("client updated", "id", id)
	return out, nil
}

// UpdateFields applies keyed-field input with the edit form's semantics:
// first_name, last_name, email, phone and accountant are always written,
// so an omitted one is blanked (an omitted accountant unassigns the
// client); nas_number, address, status, created_at and date_left are
// written only when present.
func (s *Service) UpdateFields(ctx context.Context, id string, f Fields) (*entity.Client, error) {
	p, err := PatchFromFields(f)
	if err != nil {
		return nil, s.report.Fail("update client", id, err)
	}
	return s.Update(ctx, id, p)
}

// Delete removes exactly one client.
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err == nil && n == 0 {
		err = database.ErrNotFound
	}
	if err != nil {
		return s.report.Fail("delete client", id, err)
	}
	s.logger.Infow("client deleted", "id", id)
	return nil
}

// InputFromFields converts keyed-field input into a CreateInput.
func InputFromFields(f Fields) (CreateInput, error) {
	var in CreateInput
	targets := []struct {
		key string
		dst *string
	}{
		{"id", &in.ID},
		{"first_name", &in.FirstName},
		{"last_name", &in.LastName},
		{"email", &in.Email},
		{"phone", &in.Phone},
		{"nas_number", &in.NASNumber},
		{"address", &in.Address},
		{"status", &in.Status},
	}
	for _, t := range targets {
		v, err := f.String(t.key)
		if err != nil {
			return CreateInput{}, err
		}
		*t.dst = v
	}
	acc, err := accountantField(f)
	if err != nil {
		return CreateInput{}, err
	}
	if acc != "" {
		in.AccountantID = &acc
	}
	return in, nil
}

// PatchFromFields converts keyed-field input into a Patch.
func PatchFromFields(f Fields) (Patch, error) {
	var core [4]string
	for i, key := range []string{"first_name", "last_name", "email", "phone"} {
		v, err := f.String(key)
		if err != nil {
			return Patch{}, err
		}
		core[i] = v
	}
	acc, err := accountantField(f)
	if err != nil {
		return Patch{}, err
	}
	p := Patch{FirstName: &core[0], LastName: &core[1], Email: &core[2], Phone: &core[3], AccountantID: &acc}

	optional := []struct {
		key string
		dst **string
	}{
		{"nas_number", &p.NASNumber},
		{"address", &p.Address},
		{"status", &p.Status},
	}
	for _, o := range optional {
		if !f.Has(o.key) {
			continue
		}
		v, err := f.String(o.key)
		if err != nil {
			return Patch{}, err
		}
		*o.dst = &v
	}
	if f.Has("created_at") {
		t, err := f.Time("created_at")
		if err != nil {
			return Patch{}, err
		}
		p.CreatedAt = t
	}
	if f.Has("date_left") {
		t, err := f.Time("date_left")
		if err != nil {
			return Patch{}, err
		}
		p.DateLeft = t
		p.ClearDateLeft = t == nil
	}
	return p, nil
}

// accountantField reads the assigned accountant id, accepting the form's
// "accountant" key as well as "accountant_id".
func accountantField(f Fields) (string, error) {
	if f.Has("accountant") {
		return f.String("accountant")
	}
	return f.String("accountant_id")
}

func (p Patch) apply(c *entity.Client) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&c.FirstName, p.FirstName)
	set(&c.LastName, p.LastName)
	set(&c.Email, p.Email)
	set(&c.Phone, p.Phone)
	set(&c.NASNumber, p.NASNumber)
	set(&c.Address, p.Address)
	set(&c.Status, p.Status)
	if p.AccountantID != nil {
		if *p.AccountantID == "" {
			c.AccountantID = nil
		} else {
			accID := *p.AccountantID
			c.AccountantID = &accID
		}
	}
	if p.CreatedAt != nil {
		c.CreatedAt = *p.CreatedAt
	}
	if p.DateLeft != nil {
		dl := *p.DateLeft
		c.DateLeft = &dl
	} else if p.ClearDateLeft {
		c.DateLeft = nil
	}
}

func (s *Service) attachAccountants(ctx context.Context, clients []entity.Client) error {
	seen := map[string]bool{}
	var ids []string
	for _, c := range clients {
		if c.AccountantID != nil && !seen[*c.AccountantID] {
			seen[*c.AccountantID] = true
			ids = append(ids, *c.AccountantID)
		}
	}
	refs, err := s.repo.AccountantRefs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range clients {
		if clients[i].AccountantID == nil {
			continue
		}
		if ref, ok := refs[*clients[i].AccountantID]; ok {
			clients[i].Accountant = &ref
		}
	}
	return nil
}
