package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ovaphlow/pitchfork/service-cads-go/internal/admin/entity"
	adminrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/admin/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
	NeedsRehash(hash string) bool
}

// BcryptHasher implementation. Every hash gets a fresh salt.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NeedsRehash reports whether hash was made with a cost other than the configured one.
func (b BcryptHasher) NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return c != b.cost()
}

var (
	ErrMissingFields     = errors.New("all fields are required")
	ErrPasswordMismatch  = errors.New("passwords do not match")
	ErrEmailInUse        = errors.New("email already used by an administrator")
	ErrAccountNotFound   = errors.New("administrator account does not exist")
	ErrIncorrectPassword = errors.New("incorrect password")
)

type SignupInput struct {
	FirstName       string
	LastName        string
	Email           string
	Password        string
	ConfirmPassword string
}

// Service handles admin signup and login.
type Service struct {
	repo   *adminrepo.AdminRepo
	hasher PasswordHasher
	newID  utilities.IDFunc
	now    func() time.Time
	logger *zap.SugaredLogger
}

func NewService(db *sqlx.DB, hasher PasswordHasher, newID utilities.IDFunc, logger *zap.SugaredLogger) *Service {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	if newID == nil {
		newID = utilities.NewUUID
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Service{
		repo:   adminrepo.NewAdminRepo(db),
		hasher: hasher,
		newID:  newID,
		now:    func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
		logger: logger,
	}
}

// Signup creates an admin account. Names and email are trimmed; the
// password is kept as typed and only its hash is stored.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*entity.Admin, error) {
	first := strings.TrimSpace(in.FirstName)
	last := strings.TrimSpace(in.LastName)
	email := strings.TrimSpace(in.Email)
	if first == "" || last == "" || email == "" || in.Password == "" || in.ConfirmPassword == "" {
		return nil, ErrMissingFields
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := entity.NewAdmin(s.newID(), s.now())
	a.FirstName = first
	a.LastName = last
	a.Email = email
	a.Password = hash
	if err := s.repo.Create(ctx, a); err != nil {
		err = database.Classify(err)
		if errors.Is(err, database.ErrDuplicate) {
			s.logger.Infow("admin signup rejected", "email", email, "reason", "email in use")
			return nil, fmt.Errorf("%w: %w", ErrEmailInUse, err)
		}
		s.logger.Warnw("admin signup failed", "email", email, "err", err)
		return nil, fmt.Errorf("signup: %w", err)
	}
	s.logger.Infow("admin created", "id", a.ID, "name", a.FullName())
	return a, nil
}

// Login checks the credentials of the admin with exactly this email.
func (s *Service) Login(ctx context.Context, email, password string) (*entity.Admin, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		err = database.Classify(err)
		s.logger.Warnw("admin login failed", "email", email, "err", err)
		return nil, fmt.Errorf("login: %w", err)
	}
	if !s.hasher.Verify(a.Password, password) {
		s.logger.Infow("admin login rejected", "id", a.ID)
		return nil, ErrIncorrectPassword
	}

	// upgrade hashes made with an older cost; a failure here does not block login
	if s.hasher.NeedsRehash(a.Password) {
		if hash, hErr := s.hasher.Hash(password); hErr == nil {
			if uErr := s.repo.UpdatePassword(ctx, a.ID, hash); uErr != nil {
				s.logger.Warnw("admin rehash failed", "id", a.ID, "err", uErr)
			} else {
				a.Password = hash
			}
		}
	}
	s.logger.Infow("admin logged in", "id", a.ID, "name", a.FullName())
	return a, nil
}

// Get returns the admin with id or database.ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*entity.Admin, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get admin: %w", database.Classify(err))
	}
	return a, nil
}
