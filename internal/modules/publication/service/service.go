package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/publication/dto"
	"ledes.com/labportal/internal/modules/publication/repository"
	searchService "ledes.com/labportal/internal/modules/search/service"
	"ledes.com/labportal/internal/permission"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/credential"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/logger"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/storage"
	"ledes.com/labportal/pkg/validator"
)

const msgNotFound = "Publicação não existe."

type PublicationService interface {
	Create(ctx context.Context, actor *entity.Account, input dto.CreatePublicationRequest, images Images) (*dto.PublicationResponse, error)
	Update(ctx context.Context, actor *entity.Account, id uint, input dto.UpdatePublicationRequest, images Images) (*dto.PublicationResponse, error)
	SetFeatured(ctx context.Context, actor *entity.Account, id uint, featured bool) (*dto.PublicationResponse, error)
	SetVisibility(ctx context.Context, actor *entity.Account, id uint, visible bool) (*dto.PublicationResponse, error)
	Delete(ctx context.Context, actor *entity.Account, id uint) error
	Get(ctx context.Context, reader *entity.Account, id uint) (*dto.PublicationResponse, error)
	List(ctx context.Context, reader *entity.Account, filter dto.PublicationFilter) (any, error)
	Search(ctx context.Context, reader *entity.Account, query dto.SearchQuery) ([]*dto.PublicationResponse, error)
}

// Images are the optional uploads of a publication write.
type Images struct {
	Cover     *media.File
	Thumbnail *media.File
}

type publicationService struct {
	repo         repository.PublicationRepository
	index        searchService.PublicationIndex
	imageStorage storage.ImageStorage
	resolver     media.Resolver
	sanitizer    *bluemonday.Policy
	now          func() time.Time
}

// NewPublicationService builds the service. index may be nil, in which case
// search falls back to a text match in the database.
func NewPublicationService(repo repository.PublicationRepository, index searchService.PublicationIndex, imageStorage storage.ImageStorage, resolver media.Resolver) PublicationService {
	return &publicationService{
		repo:         repo,
		index:        index,
		imageStorage: imageStorage,
		resolver:     resolver,
		sanitizer:    bluemonday.UGCPolicy(),
		now:          time.Now,
	}
}

func imageFolder(title string) string {
	return "publications/" + credential.DirectoryKey(title)
}

func parseVisibleFrom(value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, apperror.BadRequest("Data de exibição deve estar no formato AAAA-MM-DD.")
	}
	return t, nil
}

func (s *publicationService) sanitize(body string) (string, error) {
	clean := strings.TrimSpace(s.sanitizer.Sanitize(body))
	if clean == "" {
		return "", apperror.BadRequest("Conteúdo da publicação não pode ficar vazio.")
	}
	return clean, nil
}

// upload stores the given images. A cover without a thumbnail also yields a
// derived thumbnail. Unset results are zero refs.
func (s *publicationService) upload(ctx context.Context, title string, images Images) (cover, thumbnail media.ImageRef, err error) {
	folder := imageFolder(title)

	thumbFile := images.Thumbnail
	if thumbFile == nil && images.Cover != nil {
		if thumbFile, err = media.Thumbnail(images.Cover); err != nil {
			return cover, thumbnail, err
		}
	}

	if images.Cover != nil {
		if cover, err = storage.Put(ctx, s.imageStorage, folder, images.Cover); err != nil {
			return cover, thumbnail, err
		}
	}
	if thumbFile != nil {
		if thumbnail, err = storage.Put(ctx, s.imageStorage, folder, thumbFile); err != nil {
			storage.Discard(ctx, s.imageStorage, cover)
			return media.ImageRef{}, thumbnail, err
		}
	}
	return cover, thumbnail, nil
}

const minTitleLength = 3

func checkTitle(raw string) (string, error) {
	title := strings.TrimSpace(raw)
	if validator.TrimmedLen(title) < minTitleLength {
		return "", apperror.BadRequest("Título deve ter no mínimo 3 caracteres.")
	}
	return title, nil
}

func (s *publicationService) Create(ctx context.Context, actor *entity.Account, input dto.CreatePublicationRequest, images Images) (*dto.PublicationResponse, error) {
	if err := permission.Check(actor, permission.ManagePublications); err != nil {
		return nil, err
	}

	title, err := checkTitle(input.Title)
	if err != nil {
		return nil, err
	}
	visibleFrom, err := parseVisibleFrom(input.VisibleFrom)
	if err != nil {
		return nil, err
	}
	body, err := s.sanitize(input.Body)
	if err != nil {
		return nil, err
	}

	cover, thumbnail, err := s.upload(ctx, title, images)
	if err != nil {
		return nil, err
	}
	if cover.IsZero() {
		cover = media.Remote(media.PublicationCoverPlaceholder)
	}
	if thumbnail.IsZero() {
		thumbnail = media.Remote(media.PublicationThumbnailPlaceholder)
	}

	publication := &entity.Publication{
		Title:       title,
		Body:        body,
		Cover:       cover,
		Thumbnail:   thumbnail,
		Featured:    input.Featured != nil && *input.Featured,
		VisibleFrom: visibleFrom,
		Visible:     input.Visible == nil || *input.Visible,
		AuthorID:    actor.ID,
	}
	if err := s.repo.Create(ctx, publication, actor); err != nil {
		storage.Discard(ctx, s.imageStorage, cover, thumbnail)
		return nil, err
	}

	return s.reindex(ctx, publication.ID)
}

func (s *publicationService) Update(ctx context.Context, actor *entity.Account, id uint, input dto.UpdatePublicationRequest, images Images) (*dto.PublicationResponse, error) {
	if err := permission.Check(actor, permission.ManagePublications); err != nil {
		return nil, err
	}

	current, err := s.find(ctx, id, repository.Filter{})
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	title := current.Title
	if input.Title != nil {
		if title, err = checkTitle(*input.Title); err != nil {
			return nil, err
		}
		data["title"] = title
	}
	if input.Body != nil {
		body, err := s.sanitize(*input.Body)
		if err != nil {
			return nil, err
		}
		data["body"] = body
	}
	if input.VisibleFrom != nil {
		visibleFrom, err := parseVisibleFrom(*input.VisibleFrom)
		if err != nil {
			return nil, err
		}
		data["visible_from"] = visibleFrom
	}
	if input.Featured != nil {
		data["featured"] = *input.Featured
	}
	if input.Visible != nil {
		data["visible"] = *input.Visible
	}

	cover, thumbnail, err := s.upload(ctx, title, images)
	if err != nil {
		return nil, err
	}
	if !cover.IsZero() {
		data["cover_kind"] = cover.Kind
		data["cover_location"] = cover.Location
	}
	if !thumbnail.IsZero() {
		data["thumbnail_kind"] = thumbnail.Kind
		data["thumbnail_location"] = thumbnail.Location
	}

	if err := s.repo.Update(ctx, id, data, actor); err != nil {
		storage.Discard(ctx, s.imageStorage, cover, thumbnail)
		return nil, err
	}
	if !cover.IsZero() {
		storage.Discard(ctx, s.imageStorage, current.Cover)
	}
	if !thumbnail.IsZero() {
		storage.Discard(ctx, s.imageStorage, current.Thumbnail)
	}

	return s.reindex(ctx, id)
}

func (s *publicationService) SetFeatured(ctx context.Context, actor *entity.Account, id uint, featured bool) (*dto.PublicationResponse, error) {
	return s.setFlag(ctx, actor, id, "featured", featured)
}

func (s *publicationService) SetVisibility(ctx context.Context, actor *entity.Account, id uint, visible bool) (*dto.PublicationResponse, error) {
	return s.setFlag(ctx, actor, id, "visible", visible)
}

func (s *publicationService) setFlag(ctx context.Context, actor *entity.Account, id uint, column string, value bool) (*dto.PublicationResponse, error) {
	if err := permission.Check(actor, permission.ManagePublications); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id, repository.Filter{}); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, map[string]any{column: value}, actor); err != nil {
		return nil, err
	}
	return s.reindex(ctx, id)
}

func (s *publicationService) Delete(ctx context.Context, actor *entity.Account, id uint) error {
	if err := permission.Check(actor, permission.ManagePublications); err != nil {
		return err
	}
	if _, err := s.find(ctx, id, repository.Filter{}); err != nil {
		return err
	}
	if err := s.repo.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	if s.index != nil {
		if err := s.index.DeletePublication(ctx, id); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("failed to remove publication from search index")
		}
	}
	return nil
}

func (s *publicationService) Get(ctx context.Context, reader *entity.Account, id uint) (*dto.PublicationResponse, error) {
	publication, err := s.find(ctx, id, s.readFilter(reader, nil))
	if err != nil {
		return nil, err
	}
	return dto.NewPublicationResponse(publication, s.resolver), nil
}

func (s *publicationService) List(ctx context.Context, reader *entity.Account, filter dto.PublicationFilter) (any, error) {
	f := s.readFilter(reader, filter.Featured)

	if !filter.Paginated() {
		publications, err := s.repo.FindAll(ctx, f)
		if err != nil {
			return nil, err
		}
		return s.toResponses(publications), nil
	}

	publications, total, err := s.repo.FindPage(ctx, f, filter.Page, filter.Size())
	if err != nil {
		return nil, err
	}
	return commonDto.Paginated[*dto.PublicationResponse]{
		Items: s.toResponses(publications),
		Meta:  commonDto.NewPaginationMeta(filter.Page, filter.Size(), total),
	}, nil
}

func (s *publicationService) Search(ctx context.Context, reader *entity.Account, query dto.SearchQuery) ([]*dto.PublicationResponse, error) {
	f := s.readFilter(reader, nil)
	q := strings.TrimSpace(query.Q)

	if s.index != nil {
		ids, err := s.index.SearchPublications(ctx, q, f.PublishedOnly, query.Size())
		if err == nil {
			publications, err := s.repo.FindByIDs(ctx, ids, f)
			if err != nil {
				return nil, err
			}
			return s.toResponses(publications), nil
		}
		logger.FromContext(ctx).WithError(err).Warn("search index unavailable, falling back to database")
	}

	publications, err := s.repo.SearchText(ctx, q, f, query.Size())
	if err != nil {
		return nil, err
	}
	return s.toResponses(publications), nil
}

// readFilter hides unpublished rows from readers without the publications capability.
func (s *publicationService) readFilter(reader *entity.Account, featured *bool) repository.Filter {
	return repository.Filter{
		Featured:      featured,
		PublishedOnly: !permission.Allowed(reader, permission.ManagePublications),
		Now:           s.now().UTC(),
	}
}

// reindex reloads the row, pushes it to the search index and returns it.
func (s *publicationService) reindex(ctx context.Context, id uint) (*dto.PublicationResponse, error) {
	publication, err := s.find(ctx, id, repository.Filter{})
	if err != nil {
		return nil, err
	}
	if s.index != nil {
		if err := s.index.IndexPublication(ctx, publication); err != nil {
			logger.FromContext(ctx).WithError(err).Warn("failed to index publication")
		}
	}
	return dto.NewPublicationResponse(publication, s.resolver), nil
}

func (s *publicationService) find(ctx context.Context, id uint, filter repository.Filter) (*entity.Publication, error) {
	publication, err := s.repo.FindByID(ctx, id, filter)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		return nil, err
	}
	return publication, nil
}

func (s *publicationService) toResponses(publications []entity.Publication) []*dto.PublicationResponse {
	out := make([]*dto.PublicationResponse, 0, len(publications))
	for i := range publications {
		out = append(out, dto.NewPublicationResponse(&publications[i], s.resolver))
	}
	return out
}
