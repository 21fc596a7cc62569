package download

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgivc/causelist/internal/adapter/httpadapter"
	"github.com/jgivc/causelist/internal/common"
	"github.com/jgivc/causelist/internal/config"
	"github.com/jgivc/causelist/internal/entity"
	"github.com/jgivc/causelist/internal/storage/pdfstore"
)

const outDir = "/out"

var (
	tisHazari = entity.CourtComplex{Name: "Tis Hazari Court", Slug: "tis-hazari"}
	date      = time.Date(2025, time.April, 5, 0, 0, 0, 0, time.UTC)
)

func pdfBody(n int) []byte {
	return append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), n-9)...)
}

func newSite(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/ok/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdfBody(2048))
	})
	mux.HandleFunc("/small.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdfBody(500))
	})
	mux.HandleFunc("/exact.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdfBody(1000))
	})
	mux.HandleFunc("/huge.pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Write(pdfBody(5000))
	})
	mux.HandleFunc("/missing.pdf", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	mux.HandleFunc("/slow.pdf", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv
}

func newService(t *testing.T, workers int) (*downloadService, afero.Fs) {
	t.Helper()

	cfg := &config.Config{}
	cfg.DownloaderConfig.Workers = workers
	cfg.DownloaderConfig.OutputDir = outDir
	cfg.DownloaderConfig.MaxFileSize = 4096
	cfg.SetDefaults()

	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	fs := afero.NewMemMapFs()

	store, err := pdfstore.NewStoreWithFS(fs, outDir, log)
	require.NoError(t, err)

	client := httpadapter.NewClient(cfg.DownloaderConfig.Timeout, cfg.SourceConfig.UserAgent)

	return NewDownloadService(&cfg.DownloaderConfig, client, store, log), fs
}

type recorder struct {
	mu    sync.Mutex
	items []Progress
}

func (r *recorder) add(p Progress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, p)
}

func TestDownloadAllSucceed(t *testing.T) {
	site := newSite(t)
	srv, fs := newService(t, 1)

	links := []entity.PdfLink{
		{Name: "ASJ-01", URL: site.URL + "/ok/1.pdf", Judge: "Tis Hazari Court ASJ-01"},
		{Name: "MM-04", URL: site.URL + "/ok/2.pdf", Judge: "Tis Hazari Court MM-04"},
		{Name: "CJ-2", URL: site.URL + "/ok/3.pdf", Judge: "Tis Hazari Court CJ/2"},
	}

	rec := &recorder{}
	files := srv.Download(context.Background(), links, tisHazari, date, rec.add)
	require.Len(t, files, 3)

	want := []string{
		"CauseList_tis-hazari_Tis Hazari Court ASJ-01_05-04-2025.pdf",
		"CauseList_tis-hazari_Tis Hazari Court MM-04_05-04-2025.pdf",
		"CauseList_tis-hazari_Tis Hazari Court CJ2_05-04-2025.pdf",
	}
	for i, f := range files {
		assert.Equal(t, want[i], f.FileName)
		assert.Equal(t, links[i].Judge, f.Judge)
		assert.Equal(t, filepath.Join(outDir, want[i]), f.FilePath)

		data, err := afero.ReadFile(fs, f.FilePath)
		require.NoError(t, err)
		assert.Len(t, data, 2048)
	}

	require.Len(t, rec.items, 3)
	for i, p := range rec.items {
		assert.Equal(t, i+1, p.Done)
		assert.Equal(t, 3, p.Total)
		assert.True(t, p.OK)
	}
	assert.InDelta(t, 1.0, rec.items[2].Fraction(), 1e-9)
}

func TestDownloadSkipsFailures(t *testing.T) {
	site := newSite(t)
	srv, fs := newService(t, 1)

	links := []entity.PdfLink{
		{URL: site.URL + "/small.pdf", Judge: "Small"},
		{URL: site.URL + "/ok/a.pdf", Judge: "Good"},
		{URL: site.URL + "/exact.pdf", Judge: "Exact"},
		{URL: site.URL + "/missing.pdf", Judge: "Missing"},
		{URL: site.URL + "/huge.pdf", Judge: "Huge"},
		{URL: "http://127.0.0.1:1/refused.pdf", Judge: "Refused"},
	}

	rec := &recorder{}
	files := srv.Download(context.Background(), links, tisHazari, date, rec.add)
	require.Len(t, files, 1)
	require.Equal(t, "Good", files[0].Judge)

	kinds := map[string]common.ErrorKind{}
	for _, p := range rec.items {
		if p.OK {
			continue
		}
		var de *common.DownloadError
		require.True(t, errors.As(p.Err, &de), p.Link.Judge)
		kinds[p.Link.Judge] = de.Kind
		assert.Equal(t, "Failed to download: "+p.Link.Judge, p.Message)
	}

	assert.Equal(t, map[string]common.ErrorKind{
		"Small":   common.KindTooSmall,
		"Exact":   common.KindTooSmall,
		"Missing": common.KindStatus,
		"Huge":    common.KindTooLarge,
		"Refused": common.KindTransport,
	}, kinds)

	entries, err := afero.ReadDir(fs, outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "undersized bodies must never reach the disk")
}

func TestDownloadTimeout(t *testing.T) {
	site := newSite(t)
	srv, _ := newService(t, 1)
	srv.cfg.Timeout = 50 * time.Millisecond

	rec := &recorder{}
	files := srv.Download(context.Background(), []entity.PdfLink{{URL: site.URL + "/slow.pdf", Judge: "Slow"}}, tisHazari, date, rec.add)
	require.Empty(t, files)
	require.Len(t, rec.items, 1)

	var de *common.DownloadError
	require.True(t, errors.As(rec.items[0].Err, &de))
	require.Equal(t, common.KindTransport, de.Kind)
}

func TestDownloadSlowHeadersWithinTimeout(t *testing.T) {
	if testing.Short() {
		t.Skip("waits for a slow server")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/late.pdf", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(16 * time.Second):
		}
		w.Write(pdfBody(2048))
	})
	site := httptest.NewServer(mux)
	t.Cleanup(site.Close)

	srv, fs := newService(t, 1)
	require.Equal(t, 20*time.Second, srv.cfg.Timeout)

	rec := &recorder{}
	files := srv.Download(context.Background(), []entity.PdfLink{{URL: site.URL + "/late.pdf", Judge: "Late"}}, tisHazari, date, rec.add)
	require.Len(t, files, 1)
	require.Len(t, rec.items, 1)
	require.NoError(t, rec.items[0].Err)

	data, err := afero.ReadFile(fs, files[0].FilePath)
	require.NoError(t, err)
	require.Len(t, data, 2048)
}

func TestDownloadTwiceOverwrites(t *testing.T) {
	site := newSite(t)
	srv, fs := newService(t, 1)

	links := []entity.PdfLink{{URL: site.URL + "/ok/1.pdf", Judge: "Court 1"}}

	first := srv.Download(context.Background(), links, tisHazari, date, nil)
	second := srv.Download(context.Background(), links, tisHazari, date, nil)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	require.Equal(t, first[0].FilePath, second[0].FilePath)

	entries, err := afero.ReadDir(fs, outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDownloadTruncatedJudgesCollide(t *testing.T) {
	site := newSite(t)
	srv, fs := newService(t, 1)

	prefix := "Tis Hazari Court Additional Sessions Judge"
	links := []entity.PdfLink{
		{URL: site.URL + "/ok/1.pdf", Judge: prefix + " 01"},
		{URL: site.URL + "/ok/2.pdf", Judge: prefix + " 02"},
	}

	files := srv.Download(context.Background(), links, tisHazari, date, nil)
	require.Len(t, files, 2)
	require.Equal(t, files[0].FileName, files[1].FileName)

	entries, err := afero.ReadDir(fs, outDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestDownloadWorkerPoolKeepsOrderAndProgress(t *testing.T) {
	site := newSite(t)
	srv, _ := newService(t, 4)

	var links []entity.PdfLink
	for _, j := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		links = append(links, entity.PdfLink{URL: site.URL + "/ok/" + j + ".pdf", Judge: "Judge " + j})
	}
	links = append(links, entity.PdfLink{URL: site.URL + "/missing.pdf", Judge: "Judge Z"})

	rec := &recorder{}
	files := srv.Download(context.Background(), links, tisHazari, date, rec.add)
	require.Len(t, files, 8)
	for i, f := range files {
		assert.Equal(t, links[i].Judge, f.Judge)
	}

	require.Len(t, rec.items, len(links))
	prev := 0.0
	for i, p := range rec.items {
		assert.Equal(t, i+1, p.Done)
		assert.Greater(t, p.Fraction(), prev)
		prev = p.Fraction()
	}
}

func TestDownloadEmpty(t *testing.T) {
	srv, _ := newService(t, 2)

	called := false
	files := srv.Download(context.Background(), nil, tisHazari, date, func(Progress) { called = true })
	require.Empty(t, files)
	require.False(t, called)
}
