package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/w-h-a/tailor/fault"
	"github.com/w-h-a/tailor/store"
)

const apiVersion = "2023-11-01"

// searchStore talks to a managed search index over REST. Scores returned
// by Search are the service's native relevance scores, not cosine
// similarity.
type searchStore struct {
	options store.Options
	client  *http.Client
}

func (s *searchStore) Upsert(ctx context.Context, record store.Record) error {
	return s.UpsertMany(ctx, []store.Record{record})
}

func (s *searchStore) UpsertMany(ctx context.Context, records []store.Record) error {
	for _, record := range records {
		if err := record.Validate(); err != nil {
			return err
		}
	}

	// mergeOrUpload has no owner predicate, so ids held by another owner
	// must be caught before the batch goes out
	for _, record := range records {
		current, err := s.lookup(ctx, record.Id)
		if err != nil {
			return err
		}
		if current != nil && current.Owner != record.Owner {
			return fault.New(fault.Conflict, "record %s belongs to another owner", record.Id)
		}
	}

	actions := make([]map[string]any, 0, len(records))
	for _, record := range records {
		doc := documentFrom(record)
		doc["@search.action"] = "mergeOrUpload"
		actions = append(actions, doc)
	}

	return s.index(ctx, actions)
}

// index submits one batch of document actions. Any failed item fails the
// whole call; chunk ids are deterministic, so the caller can re-submit the
// batch idempotently.
func (s *searchStore) index(ctx context.Context, actions []map[string]any) error {
	req := map[string]any{"value": actions}

	var rsp indexBatchResponse

	path := fmt.Sprintf("/indexes/%s/docs/index", url.PathEscape(s.options.Index))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return err
	}

	for _, item := range rsp.Value {
		if !item.Status {
			return fault.New(fault.BackendError, "index rejected document %s: %s", item.Key, item.ErrorMessage)
		}
	}

	return nil
}

func (s *searchStore) GetAll(ctx context.Context, owner string) ([]store.Record, error) {
	req := map[string]any{
		"search":  "*",
		"filter":  ownerFilter(owner),
		"orderby": "date_range desc,id asc",
		"top":     100000,
	}

	var rsp searchResponse

	path := fmt.Sprintf("/indexes/%s/docs/search", url.PathEscape(s.options.Index))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	records := make([]store.Record, 0, len(rsp.Value))
	for _, doc := range rsp.Value {
		records = append(records, doc.record())
	}

	return records, nil
}

func (s *searchStore) Update(ctx context.Context, id string, owner string, record store.Record) error {
	record.Id = id
	record.Owner = owner

	if err := record.Validate(); err != nil {
		return err
	}

	// the index has no conditional-merge predicate, so verify ownership
	// before merging
	current, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if current == nil || current.Owner != owner {
		return fault.New(fault.NotFound, "no record %s for owner %s", id, owner)
	}

	return s.UpsertMany(ctx, []store.Record{record})
}

func (s *searchStore) Delete(ctx context.Context, id string, owner string) error {
	current, err := s.lookup(ctx, id)
	if err != nil {
		return err
	}
	if current == nil || current.Owner != owner {
		return fault.New(fault.NotFound, "no record %s for owner %s", id, owner)
	}

	actions := []map[string]any{
		{"@search.action": "delete", "id": id},
	}

	return s.index(ctx, actions)
}

func (s *searchStore) Search(ctx context.Context, vector []float32, limit int) ([]store.QueryResult, error) {
	if len(vector) != store.Dimension {
		return nil, fault.New(fault.DimensionMismatch, "query vector has %d dimensions, want %d", len(vector), store.Dimension)
	}
	if limit < 1 {
		return nil, nil
	}

	req := map[string]any{
		"select": "id,content",
		"vectorQueries": []map[string]any{
			{
				"kind":   "vector",
				"vector": vector,
				"fields": "embedding",
				"k":      limit,
			},
		},
	}

	var rsp searchResponse

	path := fmt.Sprintf("/indexes/%s/docs/search", url.PathEscape(s.options.Index))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	results := make([]store.QueryResult, 0, len(rsp.Value))
	for _, doc := range rsp.Value {
		results = append(results, store.QueryResult{
			Id:      doc.Id,
			Content: doc.Content,
			Score:   doc.Score,
		})
	}

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

func (s *searchStore) lookup(ctx context.Context, id string) (*document, error) {
	path := fmt.Sprintf("/indexes/%s/docs('%s')", url.PathEscape(s.options.Index), url.PathEscape(id))

	var doc document

	err := s.do(ctx, http.MethodGet, path, nil, &doc)
	if err != nil {
		if fault.IsKind(err, fault.NotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &doc, nil
}

func (s *searchStore) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func (s *searchStore) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := s.options.Location + path
	if strings.Contains(path, "?") {
		u += "&api-version=" + apiVersion
	} else {
		u += "?api-version=" + apiVersion
	}

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return fault.Wrap(fault.Validation, err, "marshal request")
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return fault.Wrap(fault.Validation, err, "build request")
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return fault.Wrap(fault.StoreUnavailable, err, "search index unreachable")
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return fault.Wrap(fault.StoreUnavailable, err, "read search index response")
	}

	switch {
	case response.StatusCode == http.StatusUnauthorized || response.StatusCode == http.StatusForbidden:
		return fault.New(fault.AuthenticationFailed, "search index rejected credentials: %s", string(payload))
	case response.StatusCode == http.StatusNotFound:
		return fault.New(fault.NotFound, "search index %d: %s", response.StatusCode, string(payload))
	case response.StatusCode == http.StatusServiceUnavailable:
		return fault.New(fault.TemporarilyUnavailable, "search index unavailable: %s", string(payload))
	case response.StatusCode >= 400:
		return fault.New(fault.BackendError, "search index %d: %s", response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return fault.Wrap(fault.BackendError, err, "decode search index response")
		}
	}

	return nil
}

func (s *searchStore) configure() error {
	exists, err := s.indexExists()
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.createIndex()
}

func (s *searchStore) indexExists() (bool, error) {
	path := fmt.Sprintf("/indexes/%s", url.PathEscape(s.options.Index))

	err := s.do(context.Background(), http.MethodGet, path, nil, nil)
	if err != nil {
		if fault.IsKind(err, fault.NotFound) {
			return false, nil
		}
		return false, err
	}

	return true, nil
}

func (s *searchStore) createIndex() error {
	req := map[string]any{
		"name": s.options.Index,
		"fields": []map[string]any{
			{"name": "id", "type": "Edm.String", "key": true, "filterable": true},
			{"name": "owner", "type": "Edm.String", "filterable": true},
			{"name": "type", "type": "Edm.String", "filterable": true},
			{"name": "title", "type": "Edm.String"},
			{"name": "date_range", "type": "Edm.String", "sortable": true},
			{"name": "skills", "type": "Collection(Edm.String)"},
			{"name": "industry", "type": "Collection(Edm.String)"},
			{"name": "tags", "type": "Collection(Edm.String)"},
			{"name": "content", "type": "Edm.String", "searchable": true},
			{
				"name":                "embedding",
				"type":                "Collection(Edm.Single)",
				"searchable":          true,
				"dimensions":          store.Dimension,
				"vectorSearchProfile": "default",
			},
		},
		"vectorSearch": map[string]any{
			"algorithms": []map[string]any{
				{"name": "hnsw-cosine", "kind": "hnsw", "hnswParameters": map[string]any{"metric": "cosine"}},
			},
			"profiles": []map[string]any{
				{"name": "default", "algorithm": "hnsw-cosine"},
			},
		},
	}

	path := fmt.Sprintf("/indexes/%s", url.PathEscape(s.options.Index))

	return s.do(context.Background(), http.MethodPut, path, req, nil)
}

func ownerFilter(owner string) string {
	// single quotes are doubled per OData string-literal escaping
	return fmt.Sprintf("owner eq '%s'", strings.ReplaceAll(owner, "'", "''"))
}

func NewStore(opts ...store.Option) store.VectorStore {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 || len(options.Index) == 0 {
		detail := "missing location or index for search store"
		slog.ErrorContext(options.Context, detail)
		panic(detail)
	}

	client := options.Client
	if client == nil {
		client = &http.Client{
			Timeout: 15 * time.Second,
		}
	}

	s := &searchStore{
		options: options,
		client:  client,
	}

	if err := s.configure(); err != nil {
		detail := "failed to configure search store index"
		slog.ErrorContext(options.Context, detail, "error", err)
		panic(detail)
	}

	return s
}
