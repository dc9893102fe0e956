package blob

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/ingest"
)

// blobSource reads JSON documents out of a blob-storage container over
// its REST listing API. Authentication rides on a SAS token appended to
// every request.
type blobSource struct {
	options Options
	client  *http.Client
}

type enumerationResults struct {
	Blobs struct {
		Blob []struct {
			Name string `xml:"Name"`
		} `xml:"Blob"`
	} `xml:"Blobs"`
}

func (s *blobSource) List(ctx context.Context) ([]string, error) {
	u := fmt.Sprintf("%s/%s?restype=container&comp=list", s.options.Location, url.PathEscape(s.options.Container))

	payload, err := s.get(ctx, u)
	if err != nil {
		return nil, err
	}

	var listing enumerationResults
	if err := xml.Unmarshal(payload, &listing); err != nil {
		return nil, fault.Wrap(fault.BackendError, err, "decode container listing")
	}

	names := make([]string, 0, len(listing.Blobs.Blob))
	for _, blob := range listing.Blobs.Blob {
		names = append(names, blob.Name)
	}

	return names, nil
}

func (s *blobSource) Read(ctx context.Context, name string) ([]byte, error) {
	u := fmt.Sprintf("%s/%s/%s", s.options.Location, url.PathEscape(s.options.Container), url.PathEscape(name))
	return s.get(ctx, u)
}

func (s *blobSource) get(ctx context.Context, u string) ([]byte, error) {
	if len(s.options.SasToken) > 0 {
		separator := "?"
		if strings.Contains(u, "?") {
			separator = "&"
		}
		u += separator + s.options.SasToken
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fault.Wrap(fault.Validation, err, "build blob request")
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, fault.Wrap(fault.TemporarilyUnavailable, err, "blob storage unreachable")
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fault.Wrap(fault.TemporarilyUnavailable, err, "read blob response")
	}

	switch {
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return nil, fault.New(fault.AuthenticationFailed, "blob storage rejected credentials: %s", string(payload))
	case response.StatusCode == http.StatusNotFound:
		return nil, fault.New(fault.NotFound, "blob not found: %s", string(payload))
	case response.StatusCode >= 400:
		return nil, fault.New(fault.BackendError, "blob storage %d: %s", response.StatusCode, string(payload))
	}

	return payload, nil
}

func NewSource(opts ...Option) ingest.Source {
	options := NewOptions(opts...)

	if len(options.Location) == 0 || len(options.Container) == 0 {
		detail := "missing location or container for blob source"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	client := options.Client
	if client == nil {
		client = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	return &blobSource{
		options: options,
		client:  client,
	}
}
