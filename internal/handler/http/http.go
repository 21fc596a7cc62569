package httphandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/jgivc/causelist/internal/common"
	"github.com/jgivc/causelist/internal/entity"
	"github.com/jgivc/causelist/internal/service/page"
)

const (
	formFieldCourt = "court"
	formFieldDate  = "date"

	maxFormSize = 1 << 16
)

type PageService interface {
	Index(ctx context.Context) (*page.IndexPage, error)
	Stats(ctx context.Context) (map[string]int64, error)
	ParseRequest(court, date string) (entity.CourtComplex, time.Time, error)
}

type Renderer interface {
	RenderIndex(p *page.IndexPage) (string, error)
	RenderJob(job *entity.Job) (string, error)
}

type JobService interface {
	Start(court entity.CourtComplex, date time.Time) (*entity.Job, error)
	Get(id string) (*entity.Job, error)
}

type FileStore interface {
	Open(name string) (afero.File, *entity.StoredFile, error)
}

type CounterService interface {
	IncFileCounter(ctx context.Context, id string) (int64, error)
}

func NewIndexHandler(srv PageService, rnd Renderer, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "IndexHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		writeIndex(w, r, srv, rnd, http.StatusOK, "", log)
	}
}

// NewFetchHandler starts a batch for the submitted court and date and sends
// the browser to the job page.
func NewFetchHandler(srv PageService, jobs JobService, rnd Renderer, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "FetchHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)

			return
		}

		court, date, err := srv.ParseRequest(r.PostForm.Get(formFieldCourt), r.PostForm.Get(formFieldDate))
		if err != nil {
			log.Warn("Reject fetch request", slog.Any("error", err))

			switch {
			case errors.Is(err, common.ErrInvalidCourt):
				writeIndex(w, r, srv, rnd, http.StatusBadRequest, "Please select a court complex from the list", log)
			default:
				writeIndex(w, r, srv, rnd, http.StatusBadRequest, "Please select a date within the allowed range", log)
			}

			return
		}

		job, err := jobs.Start(court, date)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrBatchAlreadyRunning):
				writeIndex(w, r, srv, rnd, http.StatusConflict, "A download is already in progress", log)
			default:
				log.Error("Cannot start batch", slog.Any("error", err))
				http.Error(w, "Cannot start download", http.StatusInternalServerError)
			}

			return
		}

		http.Redirect(w, r, "/jobs/"+job.ID+"/", http.StatusSeeOther)
	}
}

func NewJobHandler(jobs JobService, rnd Renderer, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "JobHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := lookupJob(w, r, jobs)
		if !ok {
			return
		}

		content, err := rnd.RenderJob(job)
		if err != nil {
			log.Error("Cannot render job page", slog.String("job_id", job.ID), slog.Any("error", err))
			http.Error(w, "Cannot get page", http.StatusInternalServerError)

			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(content))
	}
}

func NewJobStatusHandler(jobs JobService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "JobStatusHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		job, ok := lookupJob(w, r, jobs)
		if !ok {
			return
		}

		writeJSON(w, job, log)
	}
}

// NewFileHandler streams a saved cause list back to the browser and counts
// the download.
func NewFileHandler(store FileStore, counters CounterService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "FileHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")

		file, info, err := store.Open(name)
		if err != nil {
			switch {
			case errors.Is(err, common.ErrInvalidFileName):
				http.Error(w, "Bad request", http.StatusBadRequest)
			case errors.Is(err, common.ErrFileNotFoundError):
				http.Error(w, "Cannot find file", http.StatusNotFound)
			default:
				log.Error("Cannot open file", slog.String("name", name), slog.Any("error", err))
				http.Error(w, "Cannot get file", http.StatusInternalServerError)
			}

			return
		}
		defer file.Close()

		if r.Method != http.MethodHead {
			counter, err := counters.IncFileCounter(r.Context(), info.ID)
			if err != nil {
				log.Warn("Serve file without counting", slog.String("name", name), slog.Any("error", err))
			} else {
				log.Info("Download file", slog.String("name", name), slog.Int64("counter", counter))
			}
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
		http.ServeContent(w, r, name, info.ModTime, file)
	}
}

func NewCounterHandler(srv PageService, log *slog.Logger) http.HandlerFunc {
	log = log.With(slog.String("handler", "CounterHandler"))

	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := srv.Stats(r.Context())
		if err != nil {
			log.Error("Cannot get counters", slog.Any("error", err))
			http.Error(w, "Cannot get counters", http.StatusInternalServerError)

			return
		}

		writeJSON(w, stats, log)
	}
}

func lookupJob(w http.ResponseWriter, r *http.Request, jobs JobService) (*entity.Job, bool) {
	id := r.PathValue("id")
	if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)

		return nil, false
	}

	job, err := jobs.Get(id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrJobNotFoundError):
			http.Error(w, "Cannot find job", http.StatusNotFound)
		default:
			http.Error(w, "Cannot get job", http.StatusInternalServerError)
		}

		return nil, false
	}

	return job, true
}

func writeIndex(w http.ResponseWriter, r *http.Request, srv PageService, rnd Renderer, status int, message string, log *slog.Logger) {
	p, err := srv.Index(r.Context())
	if err != nil {
		log.Error("Cannot build index page", slog.Any("error", err))
		http.Error(w, "Cannot get page", http.StatusInternalServerError)

		return
	}
	p.Error = message

	content, err := rnd.RenderIndex(p)
	if err != nil {
		log.Error("Cannot render index page", slog.Any("error", err))
		http.Error(w, "Cannot get page", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write([]byte(content))
}

func writeJSON(w http.ResponseWriter, v any, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Cannot encode response", slog.Any("error", err))
	}
}
