// Package fetch retrieves remote or local content referenced by "<<" entries.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/txdir/internal/filesystem"
)

const (
	maxResponseBytes int64 = 64 << 20 // 64 MiB
	requestTimeout         = 20 * time.Second
	userAgentValue         = "txdir-fetcher"

	schemeHTTP  = "http"
	schemeHTTPS = "https"
	schemeFile  = "file"

	retrievalErrorFormat = "retrieve %s: %v"
)

var (
	errMissingURL        = errors.New("url is required")
	errUnsupportedScheme = errors.New("unsupported url scheme")
	errRelativeFilePath  = errors.New("file url must hold an absolute path")
	errResponseTooLarge  = errors.New("response exceeds size limit")
	errNoFetcher         = errors.New("no fetcher configured")
)

// Fetcher retrieves the bytes behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// RetrievalError reports a URL that could not be retrieved.
type RetrievalError struct {
	URL string
	Err error
}

func (retrievalError *RetrievalError) Error() string {
	return fmt.Sprintf(retrievalErrorFormat, retrievalError.URL, retrievalError.Err)
}

func (retrievalError *RetrievalError) Unwrap() error {
	return retrievalError.Err
}

// Retrieve fetches rawURL through fetcher, reporting a missing fetcher as a
// *RetrievalError as well.
func Retrieve(ctx context.Context, fetcher Fetcher, rawURL string) ([]byte, error) {
	if fetcher == nil {
		return nil, &RetrievalError{URL: rawURL, Err: errNoFetcher}
	}
	return fetcher.Fetch(ctx, rawURL)
}

type httpClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// URLFetcher retrieves http, https and file URLs as well as plain host paths,
// which are resolved against the process working directory.
type URLFetcher struct {
	client httpClient
}

// NewFetcher returns a URLFetcher backed by the provided HTTP client or a default client when nil.
func NewFetcher(client httpClient) URLFetcher {
	if client == nil {
		client = &http.Client{Timeout: requestTimeout}
	}
	return URLFetcher{client: client}
}

// Fetch retrieves rawURL. Every failure is returned as a *RetrievalError.
func (fetcher URLFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, &RetrievalError{URL: rawURL, Err: errMissingURL}
	}
	parsed, parseErr := url.Parse(trimmed)
	if parseErr != nil {
		return nil, &RetrievalError{URL: trimmed, Err: fmt.Errorf("parse url: %w", parseErr)}
	}
	var data []byte
	var fetchErr error
	switch strings.ToLower(parsed.Scheme) {
	case schemeHTTP, schemeHTTPS:
		data, fetchErr = fetcher.retrieveHTTP(ctx, parsed)
	case schemeFile:
		data, fetchErr = retrieveFile(parsed)
	case "":
		data, fetchErr = filesystem.ReadHostFile(filepath.FromSlash(trimmed))
	default:
		if isDriveLetter(parsed.Scheme) {
			data, fetchErr = filesystem.ReadHostFile(trimmed)
			break
		}
		fetchErr = fmt.Errorf("%w %q", errUnsupportedScheme, parsed.Scheme)
	}
	if fetchErr != nil {
		return nil, &RetrievalError{URL: trimmed, Err: fetchErr}
	}
	return data, nil
}

func (fetcher URLFetcher) retrieveHTTP(ctx context.Context, target *url.URL) ([]byte, error) {
	request, requestErr := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if requestErr != nil {
		return nil, fmt.Errorf("build request: %w", requestErr)
	}
	request.Header.Set("User-Agent", userAgentValue)
	response, err := fetcher.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("unexpected status %d", response.StatusCode)
	}
	limitedReader := io.LimitReader(response.Body, maxResponseBytes+1)
	rawBytes, readErr := io.ReadAll(limitedReader)
	if readErr != nil {
		return nil, fmt.Errorf("read response: %w", readErr)
	}
	if int64(len(rawBytes)) > maxResponseBytes {
		return nil, errResponseTooLarge
	}
	return rawBytes, nil
}

func retrieveFile(target *url.URL) ([]byte, error) {
	localPath := filepath.FromSlash(target.Path)
	if !filepath.IsAbs(localPath) {
		return nil, errRelativeFilePath
	}
	return filesystem.ReadHostFile(localPath)
}

// isDriveLetter reports a single-letter scheme, which is how a Windows path
// such as C:\data parses.
func isDriveLetter(scheme string) bool {
	return len(scheme) == 1
}
