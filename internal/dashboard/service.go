// Package dashboard computes the headline counts shown on the admin home view.
package dashboard

import (
	"context"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	accent "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/entity"
	accrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/accountant/repo"
	clientrepo "github.com/ovaphlow/pitchfork/service-cads-go/internal/client/repo"
	"github.com/ovaphlow/pitchfork/service-cads-go/pkg/database"
)

type Stats struct {
	TotalAccountants  int64 `json:"total_accountants"`
	TotalClients      int64 `json:"total_clients"`
	ActiveAccountants int64 `json:"active_accountants"`
}

type Service struct {
	accountants *accrepo.AccountantRepo
	clients     *clientrepo.ClientRepo
	report      database.Reporter
}

func NewService(db *sqlx.DB, logger *zap.SugaredLogger) *Service {
	return &Service{
		accountants: accrepo.NewAccountantRepo(db),
		clients:     clientrepo.NewClientRepo(db),
		report:      database.NewReporter(logger),
	}
}

// Stats returns the record counts. On failure the counts are all zero and
// the error says which one could not be read.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	var err error
	if st.TotalAccountants, err = s.accountants.Count(ctx, ""); err != nil {
		return s.fail("count accountants", err)
	}
	if st.TotalClients, err = s.clients.Count(ctx); err != nil {
		return s.fail("count clients", err)
	}
	if st.ActiveAccountants, err = s.accountants.Count(ctx, accent.StatusActive); err != nil {
		return s.fail("count active accountants", err)
	}
	return st, nil
}

func (s *Service) fail(op string, err error) (Stats, error) {
	return Stats{}, s.report.Fail(op, "", err)
}
