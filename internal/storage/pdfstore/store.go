package pdfstore

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/jgivc/causelist/internal/common"
	"github.com/jgivc/causelist/internal/entity"
	"github.com/jgivc/causelist/internal/util"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644

	mimeTypeUnknown       = "application/octet-stream"
	mimeTypeCheckPartSize = 512
)

// Store keeps downloaded cause lists in a single flat directory.
// It is the only durable state of the application.
type Store struct {
	fs  afero.Fs
	dir string
	log *slog.Logger
}

func NewStore(dir string, log *slog.Logger) (*Store, error) {
	return NewStoreWithFS(afero.NewOsFs(), dir, log)
}

func NewStoreWithFS(fs afero.Fs, dir string, log *slog.Logger) (*Store, error) {
	if err := fs.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("cannot create output dir %s: %w", dir, err)
	}

	return &Store{
		fs:  fs,
		dir: dir,
		log: log.With(slog.String("item", "PDFStore")),
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path returns where name is (or would be) stored.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Save writes data under name, replacing an existing file of the same name.
// The bytes go to a hidden temp file first so a listing never shows a partial PDF.
func (s *Store) Save(name string, data []byte) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}

	tmp, err := afero.TempFile(s.fs, s.dir, "."+name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("cannot create temp file: %w", err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if werr != nil || cerr != nil {
		_ = s.fs.Remove(tmpName)

		return "", fmt.Errorf("cannot write %s: %w", name, errors.Join(werr, cerr))
	}

	dst := s.Path(name)
	if err := s.fs.Rename(tmpName, dst); err != nil {
		_ = s.fs.Remove(tmpName)

		return "", fmt.Errorf("cannot move %s into place: %w", name, err)
	}

	if err := s.fs.Chmod(dst, filePerm); err != nil {
		s.log.Warn("Cannot chmod file", slog.String("path", dst), slog.Any("error", err))
	}

	s.log.Debug("Saved file", slog.String("path", dst), slog.Int("size", len(data)))

	return dst, nil
}

// List returns the regular, non-hidden files of the directory sorted by name
// in descending order.
func (s *Store) List() ([]*entity.StoredFile, error) {
	entries, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		return nil, fmt.Errorf("cannot read output dir: %w", err)
	}

	files := make([]*entity.StoredFile, 0, len(entries))
	for _, entry := range entries {
		if !entry.Mode().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		name := entry.Name()
		f := &entity.StoredFile{
			ID:      util.GetIDFromString(&name),
			Name:    name,
			Size:    entry.Size(),
			ModTime: entry.ModTime(),
		}

		mimeType, err := s.getMimeType(s.Path(name))
		if err != nil {
			s.log.Error("Cannot get file mimeType", slog.String("path", s.Path(name)), slog.Any("error", err))
		}
		f.MIMEType = mimeType

		files = append(files, f)
	}

	sort.Slice(files, func(i, j int) bool {
		return files[i].Name > files[j].Name
	})

	return files, nil
}

// Open returns the stored file for reading. The caller closes it.
func (s *Store) Open(name string) (afero.File, *entity.StoredFile, error) {
	if err := checkName(name); err != nil {
		return nil, nil, err
	}

	path := s.Path(name)

	stat, err := s.fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, common.ErrFileNotFoundError
		}

		return nil, nil, fmt.Errorf("cannot stat %s: %w", name, err)
	}

	if !stat.Mode().IsRegular() {
		return nil, nil, common.ErrFileNotFoundError
	}

	file, err := s.fs.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open %s: %w", name, err)
	}

	mimeType, _ := s.getMimeType(path)

	return file, &entity.StoredFile{
		ID:       util.GetIDFromString(&name),
		Name:     name,
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
		MIMEType: mimeType,
	}, nil
}

func (s *Store) getMimeType(filePath string) (string, error) {
	if ext := filepath.Ext(filePath); ext != "" {
		if mimeType := mime.TypeByExtension(strings.ToLower(ext)); mimeType != "" {
			return mimeType, nil
		}
	}

	file, err := s.fs.Open(filePath)
	if err != nil {
		return mimeTypeUnknown, err
	}
	defer file.Close()

	buffer := make([]byte, mimeTypeCheckPartSize)
	n, err := file.Read(buffer)
	if err != nil && err != io.EOF {
		return mimeTypeUnknown, err
	}

	return http.DetectContentType(buffer[:n]), nil
}

func checkName(name string) error {
	if name == "" || name == "." || strings.HasPrefix(name, ".") ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", common.ErrInvalidFileName, name)
	}

	return nil
}
