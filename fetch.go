package skemaref

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// SchemaContentType is the media type a fetched document must declare.
const SchemaContentType = "application/schema+json"

// Response is a fetched document before it is decoded.
type Response struct {
	ContentType string
	Body        []byte
}

// Fetcher retrieves the bytes behind a URL. The resolver bounds ctx with
// its Timeout and checks ContentType itself.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Response, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (*Response, error)

// Fetch calls f(ctx, url).
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*Response, error) { return f(ctx, url) }

// HTTPFetcher issues GET requests. A nil Client means http.DefaultClient.
type HTTPFetcher struct {
	Client   *http.Client
	MaxBytes int64
}

// Fetch GETs url and returns its body and Content-Type. A non-2xx status is
// an error. With MaxBytes set, at most MaxBytes+1 bytes are read.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", SchemaContentType+", application/json;q=0.5")
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	var r io.Reader = resp.Body
	if f.MaxBytes > 0 {
		// one extra byte lets the decoder report the overflow
		r = io.LimitReader(r, f.MaxBytes+1)
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return &Response{ContentType: resp.Header.Get("Content-Type"), Body: body}, nil
}
