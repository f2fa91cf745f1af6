package user

import (
	"time"

	"github.com/riverqueue/river"
)

// CreatedArgs contains the arguments of the job that announces a newly
// created user. It is enqueued in the same transaction that stores the user.
type CreatedArgs struct {
	UserID     string    `json:"id"`
	Name       string    `json:"name"`
	DocumentID string    `json:"documentId"`
	CreatedAt  time.Time `json:"createdAt"`

	// maxAttempts configures the maximum number of times River should retry the job.
	maxAttempts int
}

// Kind returns the River job kind used to register and dispatch the worker.
func (args CreatedArgs) Kind() string { return "UserCreatedJob" }

// InsertOpts returns the River options used when the job is enqueued.
func (args CreatedArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: args.maxAttempts,
	}
}
