package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"playlist-crawler/pkg/models"
)

// DefaultRequestBudget caps the navigations a single job may issue.
const DefaultRequestBudget = 50

// ScratchStore holds the single extraction result of one job.
type ScratchStore interface {
	Write(ctx context.Context, item models.DatasetItem) error
	ReadAll(ctx context.Context) ([]models.DatasetItem, error)
	Drop(ctx context.Context) error
}

// StoreOpener creates an isolated scratch store per job.
type StoreOpener interface {
	Open(ctx context.Context, jobID string) (ScratchStore, error)
}

var transitions = map[models.JobState][]models.JobState{
	models.Created:                  {models.Navigating, models.Failed},
	models.Navigating:               {models.WaitingForInitialContent, models.Failed},
	models.WaitingForInitialContent: {models.Scrolling, models.Failed},
	models.Scrolling:                {models.Extracting, models.Failed},
	models.Extracting:               {models.Completed, models.Failed},
}

// Job is one bounded crawl of one playlist page. It is driven by a single
// goroutine and must not be shared.
type Job struct {
	ID        string
	Request   models.PlaylistRequest
	Budget    int
	Store     ScratchStore
	CreatedAt time.Time

	state models.JobState
	err   error
}

func NewJob(req models.PlaylistRequest, budget int) *Job {
	if budget <= 0 {
		budget = DefaultRequestBudget
	}
	return &Job{
		ID:        uuid.NewString(),
		Request:   req,
		Budget:    budget,
		CreatedAt: time.Now(),
		state:     models.Created,
	}
}

// UniqueKey tags the job's navigation so identical URLs from different jobs
// never collapse into one request.
func (j *Job) UniqueKey() string {
	return j.Request.URL + ":" + j.ID
}

func (j *Job) State() models.JobState { return j.state }

// Err is the failure cause once the job is Failed.
func (j *Job) Err() error { return j.err }

func (j *Job) advance(to models.JobState) error {
	for _, next := range transitions[j.state] {
		if next == to {
			j.state = to
			return nil
		}
	}
	return fmt.Errorf("job %s: illegal transition %s -> %s", j.ID, j.state, to)
}

func (j *Job) fail(err error) {
	if j.state.Terminal() {
		return
	}
	j.state = models.Failed
	j.err = err
}
