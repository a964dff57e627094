package database

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Reporter logs a service failure once and returns it classified and
// wrapped with the operation name. Errors matching one of the rejected
// kinds come from bad input: they are logged at info and left unclassified.
type Reporter struct {
	logger   *zap.SugaredLogger
	rejected []error
}

func NewReporter(logger *zap.SugaredLogger, rejected ...error) Reporter {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return Reporter{logger: logger, rejected: rejected}
}

func (r Reporter) Fail(op, id string, err error) error {
	for _, kind := range r.rejected {
		if errors.Is(err, kind) {
			r.logger.Infow(op+" rejected", "id", id, "err", err)
			return fmt.Errorf("%s: %w", op, err)
		}
	}
	err = Classify(err)
	if errors.Is(err, ErrNotFound) {
		r.logger.Infow(op+" found nothing", "id", id)
	} else {
		r.logger.Warnw(op+" failed", "id", id, "err", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
