package common

import "fmt"

var (
	ErrFileNotFoundError   = fmt.Errorf("file not found")
	ErrJobNotFoundError    = fmt.Errorf("job not found")
	ErrBatchAlreadyRunning = fmt.Errorf("batch has already started")
	ErrInvalidCourt        = fmt.Errorf("invalid court complex")
	ErrInvalidDate         = fmt.Errorf("invalid date")
	ErrInvalidFileName     = fmt.Errorf("invalid file name")
)

type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindStatus    ErrorKind = "status"
	KindParse     ErrorKind = "parse"
	KindTooSmall  ErrorKind = "too_small"
	KindTooLarge  ErrorKind = "too_large"
	KindStore     ErrorKind = "store"
)

// FetchError is returned by link discovery. Kind tells the caller whether the
// request never completed, the site answered with a bad status or the page
// could not be parsed.
type FetchError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	default:
		return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// DownloadError is the failure of a single PDF download.
type DownloadError struct {
	Kind       ErrorKind
	URL        string
	StatusCode int
	Size       int64
	Err        error
}

func (e *DownloadError) Error() string {
	switch e.Kind {
	case KindStatus:
		return fmt.Sprintf("download %s: HTTP %d", e.URL, e.StatusCode)
	case KindTooSmall:
		return fmt.Sprintf("download %s: response too small (%d bytes)", e.URL, e.Size)
	case KindTooLarge:
		return fmt.Sprintf("download %s: response larger than %d bytes", e.URL, e.Size)
	default:
		return fmt.Sprintf("download %s: %s: %v", e.URL, e.Kind, e.Err)
	}
}

func (e *DownloadError) Unwrap() error { return e.Err }
