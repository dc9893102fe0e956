package search

import "github.com/w-h-a/tailor/store"

type document struct {
	Id        string    `json:"id"`
	Owner     string    `json:"owner"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	DateRange *string   `json:"date_range"`
	Skills    []string  `json:"skills"`
	Industry  []string  `json:"industry"`
	Tags      []string  `json:"tags"`
	Content   string    `json:"content"`
	Embedding []float32 `json:"embedding"`
	Score     float64   `json:"@search.score"`
}

func (d document) record() store.Record {
	return store.Record{
		Id:        d.Id,
		Owner:     d.Owner,
		Type:      d.Type,
		Title:     d.Title,
		DateRange: d.DateRange,
		Skills:    d.Skills,
		Industry:  d.Industry,
		Tags:      d.Tags,
		Content:   d.Content,
		Embedding: d.Embedding,
	}
}

func documentFrom(record store.Record) map[string]any {
	return map[string]any{
		"id":         record.Id,
		"owner":      record.Owner,
		"type":       record.Type,
		"title":      record.Title,
		"date_range": record.DateRange,
		"skills":     record.Skills,
		"industry":   record.Industry,
		"tags":       record.Tags,
		"content":    record.Content,
		"embedding":  record.Embedding,
	}
}

type searchResponse struct {
	Value []document `json:"value"`
}

type indexBatchResponse struct {
	Value []indexResult `json:"value"`
}

type indexResult struct {
	Key          string `json:"key"`
	Status       bool   `json:"status"`
	ErrorMessage string `json:"errorMessage"`
	StatusCode   int    `json:"statusCode"`
}
