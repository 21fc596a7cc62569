package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFetchErrorAs(t *testing.T) {
	err := fmt.Errorf("cannot discover: %w", &FetchError{Kind: KindTransport, URL: "http://x", Err: context.DeadlineExceeded})

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	require.Equal(t, KindTransport, fe.Kind)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestErrorMessages(t *testing.T) {
	require.Equal(t, "fetch http://x: HTTP 503", (&FetchError{Kind: KindStatus, URL: "http://x", StatusCode: 503}).Error())
	require.Equal(t, "download http://x/a.pdf: response too small (12 bytes)", (&DownloadError{Kind: KindTooSmall, URL: "http://x/a.pdf", Size: 12}).Error())
	require.Equal(t, "download http://x/a.pdf: HTTP 404", (&DownloadError{Kind: KindStatus, URL: "http://x/a.pdf", StatusCode: 404}).Error())
}
