package service

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/pkg/logger"
)

const publicationsIndex = "publications"

// PublicationIndex keeps the full-text index of publications.
type PublicationIndex interface {
	IndexPublication(ctx context.Context, publication *entity.Publication) error
	DeletePublication(ctx context.Context, id uint) error
	// SearchPublications returns the ids of matching publications by relevance.
	SearchPublications(ctx context.Context, query string, publishedOnly bool, limit int) ([]uint, error)
}

type meiliSearchService struct {
	client    meilisearch.ServiceManager
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

func NewMeiliSearchService(client meilisearch.ServiceManager) PublicationIndex {
	s := &meiliSearchService{
		client:    client,
		sanitizer: bluemonday.StrictPolicy(),
		now:       time.Now,
	}
	s.initIndex()
	return s
}

func (s *meiliSearchService) initIndex() {
	log := logger.Default().WithField("index", publicationsIndex)

	filterable := []any{"visible", "visible_from", "featured"}
	if _, err := s.client.Index(publicationsIndex).UpdateFilterableAttributes(&filterable); err != nil {
		log.WithError(err).Warn("failed to update filterable attributes")
	}

	sortable := []string{"visible_from"}
	if _, err := s.client.Index(publicationsIndex).UpdateSortableAttributes(&sortable); err != nil {
		log.WithError(err).Warn("failed to update sortable attributes")
	}

	log.Info("meilisearch index initialized")
}

type publicationDoc struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Author      string `json:"author"`
	Featured    bool   `json:"featured"`
	Visible     bool   `json:"visible"`
	VisibleFrom int64  `json:"visible_from"`
}

// PlainText strips markup from body keeping words of adjacent blocks apart.
func PlainText(sanitizer *bluemonday.Policy, body string) string {
	for _, tag := range []string{"</p>", "<br>", "<br/>", "<br />", "</div>", "</li>", "</h1>", "</h2>", "</h3>"} {
		body = strings.ReplaceAll(body, tag, tag+" ")
	}
	text := html.UnescapeString(sanitizer.Sanitize(body))
	return strings.Join(strings.Fields(text), " ")
}

func (s *meiliSearchService) IndexPublication(ctx context.Context, p *entity.Publication) error {
	doc := publicationDoc{
		ID:          p.ID,
		Title:       p.Title,
		Body:        PlainText(s.sanitizer, p.Body),
		Featured:    p.Featured,
		Visible:     p.Visible,
		VisibleFrom: p.VisibleFrom.Unix(),
	}
	if p.Author != nil {
		doc.Author = p.Author.FullName()
	}

	primaryKey := "id"
	task, err := s.client.Index(publicationsIndex).AddDocumentsWithContext(ctx, []publicationDoc{doc}, &primaryKey)
	if err != nil {
		return fmt.Errorf("index publication %d: %w", p.ID, err)
	}
	logger.FromContext(ctx).WithField("task", task.TaskUID).Debugf("indexed publication %d", p.ID)
	return nil
}

func (s *meiliSearchService) DeletePublication(ctx context.Context, id uint) error {
	if _, err := s.client.Index(publicationsIndex).DeleteDocumentWithContext(ctx, strconv.FormatUint(uint64(id), 10)); err != nil {
		return fmt.Errorf("delete publication %d from index: %w", id, err)
	}
	return nil
}

func (s *meiliSearchService) SearchPublications(ctx context.Context, query string, publishedOnly bool, limit int) ([]uint, error) {
	req := &meilisearch.SearchRequest{
		Limit:                int64(limit),
		AttributesToRetrieve: []string{"id"},
	}
	if publishedOnly {
		req.Filter = fmt.Sprintf("visible = true AND visible_from <= %d", s.now().Unix())
	}

	raw, err := s.client.Index(publicationsIndex).SearchRawWithContext(ctx, query, req)
	if err != nil {
		return nil, fmt.Errorf("search publications: %w", err)
	}

	var res struct {
		Hits []struct {
			ID uint `json:"id"`
		} `json:"hits"`
	}
	if err := json.Unmarshal(*raw, &res); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}
