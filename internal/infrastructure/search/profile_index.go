package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/abiosite/abio-api/internal/application"
	"github.com/abiosite/abio-api/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ProfileIndex mirrors public profiles into an Elasticsearch index.
type ProfileIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

// NewProfileIndex returns nil when es is nil so callers can pass the result
// straight through as a disabled indexer.
func NewProfileIndex(es *elasticsearch.Client, index string) *ProfileIndex {
	if es == nil || index == "" {
		return nil
	}
	return &ProfileIndex{ES: es, IndexName: index}
}

type profileDoc struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Bio         string `json:"bio"`
	Location    string `json:"location"`
	AvatarURL   string `json:"avatarUrl"`
	UpdatedAt   string `json:"updatedAt"`
}

func (x *ProfileIndex) Index(ctx context.Context, p *entity.Profile) error {
	if x == nil {
		return nil
	}
	doc := profileDoc{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		Bio:         p.Bio,
		Location:    p.Location,
		AvatarURL:   p.AvatarURL,
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339Nano),
	}
	if p.Username != nil {
		doc.Username = *p.Username
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: x.IndexName, DocumentID: p.ID, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

// Remove deletes the profile document; a missing document is not an error.
func (x *ProfileIndex) Remove(ctx context.Context, profileID string) error {
	if x == nil {
		return nil
	}
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: profileID}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("es delete: %s", res.Status())
	}
	return nil
}

// Search runs a multi_match over username, display name and bio.
func (x *ProfileIndex) Search(ctx context.Context, q string, size int) ([]application.ProfileHit, error) {
	if x == nil {
		return []application.ProfileHit{}, nil
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"username^2", "displayName", "bio"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(x.ES.Search.WithContext(c), x.ES.Search.WithIndex(x.IndexName), x.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source profileDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]application.ProfileHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, application.ProfileHit{
			Username:    h.Source.Username,
			DisplayName: h.Source.DisplayName,
			Bio:         h.Source.Bio,
			AvatarURL:   h.Source.AvatarURL,
		})
	}
	return out, nil
}

var _ application.ProfileIndexer = (*ProfileIndex)(nil)
