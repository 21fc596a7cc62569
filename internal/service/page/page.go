package page

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/jgivc/causelist/internal/adapter/mdadapter"
	"github.com/jgivc/causelist/internal/common"
	"github.com/jgivc/causelist/internal/config"
	"github.com/jgivc/causelist/internal/entity"
)

const (
	serviceName = "page"
)

type FileLister interface {
	List() ([]*entity.StoredFile, error)
}

type CounterService interface {
	GetDownloadCounters(ctx context.Context) (map[string]int64, error)
}

type BatchState interface {
	Running() bool
}

// IndexPage is everything the index template shows.
type IndexPage struct {
	Courts      []entity.CourtComplex
	Court       string
	Date        string
	MinDate     string
	MaxDate     string
	FileCount   int
	RecentFiles []*entity.StoredFile
	Running     bool
	HelpTitle   string
	HelpHTML    template.HTML
	Error       string
}

type pageService struct {
	cfg      *config.UIConfig
	files    FileLister
	counters CounterService
	batch    BatchState
	help     *mdadapter.Help
	now      func() time.Time
	log      *slog.Logger
}

func NewPageService(cfg *config.UIConfig, files FileLister, counters CounterService, batch BatchState, help *mdadapter.Help, log *slog.Logger) *pageService {
	return &pageService{
		cfg:      cfg,
		files:    files,
		counters: counters,
		batch:    batch,
		help:     help,
		now:      time.Now,
		log:      log.With(slog.String("service", serviceName)),
	}
}

// Index builds the main page. A failing counter backend only hides the
// counters, the page is still served.
func (s *pageService) Index(ctx context.Context) (*IndexPage, error) {
	files, err := s.files.List()
	if err != nil {
		return nil, fmt.Errorf("cannot list downloaded files: %w", err)
	}

	counters, err := s.counters.GetDownloadCounters(ctx)
	if err != nil {
		s.log.Warn("Show page without counters", slog.Any("error", err))
	}

	recent := files
	if len(recent) > s.cfg.RecentFiles {
		recent = recent[:s.cfg.RecentFiles]
	}
	for _, f := range recent {
		f.Downloads = counters[f.ID]
	}

	today := s.today()
	page := &IndexPage{
		Courts:      entity.Courts(),
		Date:        today.Format(entity.FormDateLayout),
		MinDate:     today.AddDate(0, 0, -s.cfg.DateRangeDays).Format(entity.FormDateLayout),
		MaxDate:     today.AddDate(0, 0, s.cfg.DateRangeDays).Format(entity.FormDateLayout),
		FileCount:   len(files),
		RecentFiles: recent,
		Running:     s.batch.Running(),
	}
	if len(page.Courts) > 0 {
		page.Court = page.Courts[0].Name
	}
	if s.help != nil {
		page.HelpTitle = s.help.Title
		page.HelpHTML = s.help.HTML
	}

	return page, nil
}

// Stats maps every stored file name to its re-download count.
func (s *pageService) Stats(ctx context.Context) (map[string]int64, error) {
	files, err := s.files.List()
	if err != nil {
		return nil, fmt.Errorf("cannot list downloaded files: %w", err)
	}

	counters, err := s.counters.GetDownloadCounters(ctx)
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int64, len(files))
	for _, f := range files {
		stats[f.Name] = counters[f.ID]
	}

	return stats, nil
}

// ParseRequest checks the submitted form values. The date must be a
// calendar day within date_range_days of today.
func (s *pageService) ParseRequest(court, date string) (entity.CourtComplex, time.Time, error) {
	c, ok := entity.FindCourt(court)
	if !ok {
		return entity.CourtComplex{}, time.Time{}, fmt.Errorf("%w: %q", common.ErrInvalidCourt, court)
	}

	d, err := time.ParseInLocation(entity.FormDateLayout, strings.TrimSpace(date), time.Local)
	if err != nil {
		return entity.CourtComplex{}, time.Time{}, fmt.Errorf("%w: %q", common.ErrInvalidDate, date)
	}

	today := s.today()
	if d.Before(today.AddDate(0, 0, -s.cfg.DateRangeDays)) || d.After(today.AddDate(0, 0, s.cfg.DateRangeDays)) {
		return entity.CourtComplex{}, time.Time{}, fmt.Errorf("%w: %s is out of range", common.ErrInvalidDate, d.Format(entity.DateLayout))
	}

	return c, d, nil
}

func (s *pageService) today() time.Time {
	now := s.now().In(time.Local)

	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}
