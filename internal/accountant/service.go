package accountant

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/entity"
	accrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/repo"
	clientent "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/entity"
	clientrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/internal/form"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/utilities"
)

// Fields is the keyed-field input accepted by UpdateFields.
type Fields = form.Fields

// ListOptions controls List. WithClients eagerly attaches each accountant's clients.
type ListOptions struct {
	WithClients bool
	Search      string
}

// GetOptions controls Get.
type GetOptions struct {
	WithClients bool
}

// CreateInput carries the fields of a new accountant. Role defaults to COMPTABLE.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Role      entity.Role
}

// Patch lists the fields to change; nil fields are left untouched.
// An empty Phone clears it, as does ClearDateLeft for DateLeft.
type Patch struct {
	FirstName     *string
	LastName      *string
	Email         *string
	Phone         *string
	Role          *entity.Role
	Status        *entity.Status
	DateJoined    *time.Time
	DateLeft      *time.Time
	ClearDateLeft bool
}

// Service implements the accountant record operations.
type Service struct {
	db      *sqlx.DB
	repo    *accrepo.AccountantRepo
	clients *clientrepo.ClientRepo
	newID   utilities.IDFunc
	now     func() time.Time
	logger  *zap.SugaredLogger
	report  database.Reporter
}

func NewService(db *sqlx.DB, newID utilities.IDFunc, logger *zap.SugaredLogger) *Service {
	if newID == nil {
		newID = utilities.NewUUID
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		db:      db,
		repo:    accrepo.NewAccountantRepo(db),
		clients: clientrepo.NewClientRepo(db),
		newID:   newID,
		now:     func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		logger:  logger,
		report:  database.NewReporter(logger, form.ErrInvalidField),
	}
}

// List returns every accountant ordered by last name ascending.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]entity.Accountant, error) {
	rows, err := s.repo.List(ctx, opts.Search)
	if err != nil {
		return nil, s.report.Fail("list accountants", "", err)
	}
	if opts.WithClients {
		if err := s.attachClients(ctx, rows); err != nil {
			return nil, s.report.Fail("list accountants", "", err)
		}
	}
	return rows, nil
}

// Get returns the accountant with id or database.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string, opts GetOptions) (*entity.Accountant, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.report.Fail("get accountant", id, err)
	}
	if opts.WithClients {
		one := []entity.Accountant{*a}
		if err := s.attachClients(ctx, one); err != nil {
			return nil, s.report.Fail("get accountant", id, err)
		}
		a = &one[0]
	}
	return a, nil
}

// Create inserts a new active accountant joined today. The email is
// stored lower-cased and trimmed.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Accountant, error) {
	a := entity.NewAccountant(s.newID(), s.now())
	a.FirstName = in.FirstName
	a.LastName = in.LastName
	a.Email = NormalizeEmail(in.Email)
	if in.Phone != "" {
		phone := in.Phone
		a.Phone = &phone
	}
	if in.Role != "" {
		a.Role = in.Role
	}
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		return s.repo.WithTx(tx).Create(ctx, a)
	})
	if err != nil {
		return nil, s.report.Fail("create accountant", a.ID, err)
	}
	s.logger.Infow("accountant created", "id", a.ID, "name", a.FullName())
	return a, nil
}

// Update loads the accountant, applies the fields present in p and saves
// the whole record.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*entity.Accountant, error) {
	var out *entity.Accountant
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		r := s.repo.WithTx(tx)
		a, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		p.apply(a)
		n, err := r.Update(ctx, a)
		if err != nil {
			return err
		}
		if n == 0 {
			return database.ErrNotFound
		}
		out = a
		return nil
	})
	if err != nil {
		return nil, s.report.Fail("update accountant", id, err)
	}
	s.logger.Infow("accountant updated", "id", id)
	return out, nil
}

// UpdateFields applies keyed-field input with the edit form's semantics:
// first_name, last_name, email, phone and role are always written, so an
// omitted one is blanked; status, date_joined and date_left are written
// only when present.
func (s *Service) UpdateFields(ctx context.Context, id string, f Fields) (*entity.Accountant, error) {
	p, err := PatchFromFields(f)
	if err != nil {
		return nil, s.report.Fail("update accountant", id, err)
	}
	return s.Update(ctx, id, p)
}

// Delete removes the accountant and, through the store's cascade, its clients.
func (s *Service) Delete(ctx context.Context, id string) error {
	n, err := s.repo.Delete(ctx, id)
	if err == nil && n == 0 {
		err = database.ErrNotFound
	}
	if err != nil {
		return s.report.Fail("delete accountant", id, err)
	}
	s.logger.Infow("accountant deleted", "id", id)
	return nil
}

// CountClients returns how many clients are assigned to the accountant.
func (s *Service) CountClients(ctx context.Context, id string) (int64, error) {
	n, err := s.clients.CountByAccountant(ctx, id)
	if err != nil {
		return 0, s.report.Fail("count accountant clients", id, err)
	}
	return n, nil
}

// PatchFromFields converts keyed-field input into a Patch.
func PatchFromFields(f Fields) (Patch, error) {
	var core [5]string
	for i, key := range []string{"first_name", "last_name", "email", "phone", "role"} {
		v, err := f.String(key)
		if err != nil {
			return Patch{}, err
		}
		core[i] = v
	}
	role := entity.Role(core[4])
	p := Patch{FirstName: &core[0], LastName: &core[1], Email: &core[2], Phone: &core[3], Role: &role}

	if f.Has("status") {
		st, err := f.String("status")
		if err != nil {
			return Patch{}, err
		}
		status := entity.Status(st)
		p.Status = &status
	}
	if f.Has("date_joined") {
		t, err := f.Time("date_joined")
		if err != nil {
			return Patch{}, err
		}
		p.DateJoined = t
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

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p Patch) apply(a *entity.Accountant) {
	if p.FirstName != nil {
		a.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		a.LastName = *p.LastName
	}
	if p.Email != nil {
		a.Email = *p.Email
	}
	if p.Phone != nil {
		if *p.Phone == "" {
			a.Phone = nil
		} else {
			phone := *p.Phone
			a.Phone = &phone
		}
	}
	if p.Role != nil {
		a.Role = *p.Role
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
	if p.DateJoined != nil {
		a.DateJoined = *p.DateJoined
	}
	if p.DateLeft != nil {
		dl := *p.DateLeft
		a.DateLeft = &dl
	} else if p.ClearDateLeft {
		a.DateLeft = nil
	}
}

func (s *Service) attachClients(ctx context.Context, accs []entity.Accountant) error {
	ids := make([]string, len(accs))
	for i := range accs {
		ids[i] = accs[i].ID
	}
	clients, err := s.clients.ListByAccountants(ctx, ids)
	if err != nil {
		return err
	}
	byAccountant := make(map[string][]clientent.Client, len(accs))
	for _, c := range clients {
		if c.AccountantID != nil {
			byAccountant[*c.AccountantID] = append(byAccountant[*c.AccountantID], c)
		}
	}
	for i := range accs {
		accs[i].Clients = byAccountant[accs[i].ID]
		if accs[i].Clients == nil {
			accs[i].Clients = []clientent.Client{}
		}
	}
	return nil
}
