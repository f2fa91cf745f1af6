package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

var errNoJobClient = errors.New("could not insert job: no river client configured")

// AddJob enqueues a new River job using the underlying database handle.
//
// Inside a transaction (DB is a *sql.Tx) the job is inserted with InsertTx, so
// it only becomes visible to workers once the surrounding transaction commits.
// Otherwise it is inserted directly through the pool and is visible at once.
func (p *PgSQL) AddJob(ctx context.Context, args river.JobArgs, opts *river.InsertOpts) (bool, error) {
	if p.jobs == nil {
		return false, errNoJobClient
	}

	var (
		res *rivertype.JobInsertResult
		err error
	)
	if tx, ok := p.DB.(*sql.Tx); ok {
		res, err = p.jobs.InsertTx(ctx, tx, args, opts)
	} else {
		res, err = p.jobs.Insert(ctx, args, opts)
	}
	if err != nil {
		return false, fmt.Errorf("could not insert job: %w", err)
	}

	return !res.UniqueSkippedAsDuplicate, nil
}
