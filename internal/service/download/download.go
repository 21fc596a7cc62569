package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jgivc/causelist/internal/common"
	"github.com/jgivc/causelist/internal/config"
	"github.com/jgivc/causelist/internal/entity"
	"github.com/jgivc/causelist/internal/util"
)

const (
	serviceName = "download"

	judgeDisplayLen = 50
)

type FileStore interface {
	Save(name string, data []byte) (string, error)
}

// Progress is reported once per processed link. Done grows by one on every
// call, whatever the number of workers.
type Progress struct {
	Done     int
	Total    int
	Link     entity.PdfLink
	FileName string
	OK       bool
	Err      error
	Message  string
}

func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 1
	}

	return float64(p.Done) / float64(p.Total)
}

type ProgressFunc func(Progress)

type task struct {
	idx  int
	link entity.PdfLink
}

type result struct {
	idx      int
	fileName string
	path     string
	err      error
}

type downloadService struct {
	cfg    *config.DownloaderConfig
	client *http.Client
	store  FileStore
	log    *slog.Logger
}

func NewDownloadService(cfg *config.DownloaderConfig, client *http.Client, store FileStore, log *slog.Logger) *downloadService {
	return &downloadService{
		cfg:    cfg,
		client: client,
		store:  store,
		log:    log.With(slog.String("service", serviceName)),
	}
}

// Download saves every link as CauseList_{slug}_{judge}_{DD-MM-YYYY}.pdf.
// Failed items are reported through progress and left out of the result;
// they never stop the batch. Results keep the order of links.
func (d *downloadService) Download(ctx context.Context, links []entity.PdfLink, court entity.CourtComplex, date time.Time, progress ProgressFunc) []entity.DownloadedFile {
	if len(links) == 0 {
		return []entity.DownloadedFile{}
	}

	workers := d.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(links) {
		workers = len(links)
	}

	in := make(chan task, len(links))
	out := make(chan result, len(links))

	for i, link := range links {
		in <- task{idx: i, link: link}
	}
	close(in)

	var wg sync.WaitGroup
	wg.Add(workers)
	for n := 0; n < workers; n++ {
		go d.worker(ctx, n, court, date, in, out, &wg)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	results := make([]*result, len(links))
	done := 0
	for res := range out {
		done++
		results[res.idx] = &res

		p := Progress{
			Done:     done,
			Total:    len(links),
			Link:     links[res.idx],
			FileName: res.fileName,
			OK:       res.err == nil,
			Err:      res.err,
		}
		if p.OK {
			p.Message = fmt.Sprintf("Downloaded: %s", res.fileName)
		} else {
			p.Message = fmt.Sprintf("Failed to download: %s", util.Truncate(links[res.idx].Judge, judgeDisplayLen))
		}

		if progress != nil {
			progress(p)
		}
	}

	files := make([]entity.DownloadedFile, 0, len(links))
	for i, res := range results {
		if res == nil || res.err != nil {
			continue
		}

		files = append(files, entity.DownloadedFile{
			Judge:    links[i].Judge,
			FilePath: res.path,
			FileName: res.fileName,
		})
	}

	d.log.Info("Batch finished",
		slog.String("court", court.Slug),
		slog.String("date", date.Format(entity.DateLayout)),
		slog.Int("total", len(links)),
		slog.Int("ok", len(files)),
	)

	return files
}

func (d *downloadService) worker(ctx context.Context, n int, court entity.CourtComplex, date time.Time, in <-chan task, out chan<- result, wg *sync.WaitGroup) {
	defer wg.Done()

	log := d.log.With(slog.Int("worker_id", n))
	log.Debug("Started")

	for t := range in {
		fileName := util.CauseListFileName(court.Slug, t.link.Judge, date)
		res := result{idx: t.idx, fileName: fileName}

		res.path, res.err = d.downloadOne(ctx, t.link.URL, fileName)
		if res.err != nil {
			log.Warn("Cannot download cause list", slog.String("url", t.link.URL), slog.Any("error", res.err))
		} else {
			log.Info("Downloaded cause list", slog.String("path", res.path))
		}

		out <- res
	}

	log.Debug("Done")
}

func (d *downloadService) downloadOne(ctx context.Context, url, fileName string) (string, error) {
	data, err := d.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	path, err := d.store.Save(fileName, data)
	if err != nil {
		return "", &common.DownloadError{Kind: common.KindStore, URL: url, Err: err}
	}

	return path, nil
}

// fetch accepts only a 200 answer whose body is larger than min_file_size;
// anything smaller is taken for an error page.
func (d *downloadService) fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &common.DownloadError{Kind: common.KindTransport, URL: url, Err: err}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, &common.DownloadError{Kind: common.KindTransport, URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &common.DownloadError{Kind: common.KindStatus, URL: url, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, d.cfg.MaxFileSize+1))
	if err != nil {
		return nil, &common.DownloadError{Kind: common.KindTransport, URL: url, Err: err}
	}

	size := int64(len(data))
	if size > d.cfg.MaxFileSize {
		return nil, &common.DownloadError{Kind: common.KindTooLarge, URL: url, Size: d.cfg.MaxFileSize}
	}
	if size <= d.cfg.MinFileSize {
		return nil, &common.DownloadError{Kind: common.KindTooSmall, URL: url, Size: size}
	}

	return data, nil
}
