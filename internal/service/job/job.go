package job

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/jgivc/causelist/internal/common"
	"github.com/jgivc/causelist/internal/entity"
	"github.com/jgivc/causelist/internal/service/download"
	"github.com/jgivc/causelist/internal/util"
)

const (
	serviceName = "job"

	judgeDisplayLen = 50
)

type LinkDiscoverer interface {
	Discover(ctx context.Context, date time.Time, court string) ([]entity.PdfLink, error)
}

type BatchDownloader interface {
	Download(ctx context.Context, links []entity.PdfLink, court entity.CourtComplex, date time.Time, progress download.ProgressFunc) []entity.DownloadedFile
}

// JobService runs one "download all" batch at a time and keeps the results of
// recent batches for the UI.
type JobService struct {
	running    atomic.Bool
	discoverer LinkDiscoverer
	downloader BatchDownloader
	keep       int

	mu    sync.RWMutex
	jobs  map[string]*entity.Job
	order []string

	ctx context.Context
	wg  sync.WaitGroup
	now func() time.Time
	log *slog.Logger
}

// NewJobService returns a service whose batches run with ctx. Batches are not
// cancelled by the user; ctx only ends them on shutdown.
func NewJobService(ctx context.Context, discoverer LinkDiscoverer, downloader BatchDownloader, keep int, log *slog.Logger) *JobService {
	return &JobService{
		discoverer: discoverer,
		downloader: downloader,
		keep:       keep,
		jobs:       make(map[string]*entity.Job),
		ctx:        ctx,
		now:        time.Now,
		log:        log.With(slog.String("service", serviceName)),
	}
}

// Start launches a batch in the background and returns a snapshot of the new
// job. A second call while a batch runs fails with ErrBatchAlreadyRunning.
func (s *JobService) Start(court entity.CourtComplex, date time.Time) (*entity.Job, error) {
	if court.Name == "" || court.Slug == "" {
		return nil, common.ErrInvalidCourt
	}

	if !s.running.CompareAndSwap(false, true) {
		return nil, common.ErrBatchAlreadyRunning
	}

	job := &entity.Job{
		ID:        uuid.NewString(),
		Court:     court,
		Date:      date,
		State:     entity.JobStateFetching,
		Status:    fmt.Sprintf("Fetching cause lists for %s...", court.Name),
		Messages:  []entity.JobMessage{},
		Files:     []entity.DownloadedFile{},
		StartedAt: s.now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.order = append(s.order, job.ID)
	snapshot := job.Clone()
	s.mu.Unlock()

	s.log.Info("Start batch", slog.String("job_id", job.ID), slog.String("court", court.Slug), slog.String("date", job.DateString()))

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.run(s.ctx, job)
	}()

	return snapshot, nil
}

// Get returns a copy of the job.
func (s *JobService) Get(id string) (*entity.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, common.ErrJobNotFoundError
	}

	return job.Clone(), nil
}

func (s *JobService) Running() bool {
	return s.running.Load()
}

// Wait blocks until the running batch, if any, is over.
func (s *JobService) Wait() {
	s.wg.Wait()
}

func (s *JobService) run(ctx context.Context, job *entity.Job) {
	log := s.log.With(slog.String("job_id", job.ID))

	links, err := s.discoverer.Discover(ctx, job.Date, job.Court.Name)
	if err != nil {
		log.Error("Cannot discover cause lists", slog.Any("error", err))

		s.finish(job, func(j *entity.Job) {
			j.State = entity.JobStateError
			j.Error = describeFetchError(err)
			j.Status = ""
		})

		return
	}

	if len(links) == 0 {
		s.finish(job, func(j *entity.Job) {
			j.State = entity.JobStateEmpty
			j.Status = ""
		})

		return
	}

	s.update(job, func(j *entity.Job) {
		j.Found = len(links)
		j.Status = fmt.Sprintf("Found %d judge(s) for %s", len(links), j.Court.Name)
	})

	files := s.downloader.Download(ctx, links, job.Court, job.Date, func(p download.Progress) {
		s.update(job, func(j *entity.Job) {
			j.Done = p.Done
			j.Status = fmt.Sprintf("Processed %d/%d: %s", p.Done, p.Total, util.Truncate(p.Link.Judge, judgeDisplayLen))
			j.Messages = append(j.Messages, entity.JobMessage{OK: p.OK, Text: p.Message})
		})
	})

	s.finish(job, func(j *entity.Job) {
		j.Files = files
		j.Status = ""
		if len(files) > 0 {
			j.State = entity.JobStateSuccess
		} else {
			j.State = entity.JobStateEmpty
		}
	})

	log.Info("Batch done", slog.Int("found", len(links)), slog.Int("downloaded", len(files)))
}

func (s *JobService) update(job *entity.Job, fn func(j *entity.Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(job)
}

// finish applies the final state and releases the single-flight guard under
// one lock, so a caller that sees a finished job can start the next one.
func (s *JobService) finish(job *entity.Job, fn func(j *entity.Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	fn(job)
	job.FinishedAt = s.now()
	s.prune()
	s.running.Store(false)
}

// prune drops the oldest finished jobs beyond keep. Must hold s.mu.
func (s *JobService) prune() {
	if s.keep <= 0 || len(s.order) <= s.keep {
		return
	}

	excess := len(s.order) - s.keep
	kept := s.order[:0]
	for _, id := range s.order {
		if excess > 0 && s.jobs[id].State.IsFinished() {
			delete(s.jobs, id)
			excess--

			continue
		}
		kept = append(kept, id)
	}
	s.order = kept
}

func describeFetchError(err error) string {
	var fe *common.FetchError
	if !errors.As(err, &fe) {
		return fmt.Sprintf("Error fetching PDFs: %v", err)
	}

	switch fe.Kind {
	case common.KindStatus:
		return fmt.Sprintf("Error fetching PDFs: the cause list page answered HTTP %d", fe.StatusCode)
	case common.KindParse:
		return "Error fetching PDFs: the cause list page could not be read"
	default:
		return "Error fetching PDFs: the cause list page could not be reached"
	}
}
