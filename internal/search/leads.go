// Package search maintains the candidate-lead index in Elasticsearch.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"hiresphere-backend/internal/common/database"
	"hiresphere-backend/internal/common/logger"
	"hiresphere-backend/internal/models"
)

// LeadIndex wraps the lead documents kept in Elasticsearch for full-text
// talent search. Postgres holds the authoritative copy; the index is rebuilt
// from it on demand.
type LeadIndex struct {
	es     *database.ElasticsearchClient
	index  string
	logger logger.Logger
}

func NewLeadIndex(es *database.ElasticsearchClient, index string, log logger.Logger) *LeadIndex {
	if index == "" {
		index = "candidate-leads"
	}
	return &LeadIndex{es: es, index: index, logger: log}
}

// Index writes one lead document
func (l *LeadIndex) Index(ctx context.Context, lead *models.CandidateLead) error {
	doc, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead document: %w", err)
	}
	if err := l.es.IndexDocument(ctx, l.index, lead.ID, string(doc)); err != nil {
		return fmt.Errorf("index lead %s: %w", lead.ID, err)
	}
	return nil
}

// Delete removes a lead document
func (l *LeadIndex) Delete(ctx context.Context, id string) error {
	return l.es.DeleteDocument(ctx, l.index, id)
}

// Query searches leads by free text across name, headline, and skills,
// optionally filtered by platform.
func (l *LeadIndex) Query(ctx context.Context, text, platform string, size int) ([]models.CandidateLead, error) {
	query := buildLeadQuery(text, platform, size)
	body, err := l.es.Search(ctx, l.index, query)
	if err != nil {
		return nil, fmt.Errorf("search leads: %w", err)
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source models.CandidateLead `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	leads := make([]models.CandidateLead, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		leads = append(leads, hit.Source)
	}
	return leads, nil
}

func buildLeadQuery(text, platform string, size int) string {
	if size <= 0 || size > 100 {
		size = 20
	}

	var clauses []string
	if text != "" {
		clause, _ := json.Marshal(map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"name^2", "headline", "skills", "location"},
			},
		})
		clauses = append(clauses, string(clause))
	}
	if platform != "" {
		clause, _ := json.Marshal(map[string]interface{}{
			"term": map[string]interface{}{"platform": platform},
		})
		clauses = append(clauses, string(clause))
	}

	if len(clauses) == 0 {
		return fmt.Sprintf(`{"size": %d, "query": {"match_all": {}}}`, size)
	}
	return fmt.Sprintf(`{"size": %d, "query": {"bool": {"must": [%s]}}}`,
		size, strings.Join(clauses, ","))
}
