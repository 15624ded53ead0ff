package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/reference/dto"
	"ledes.com/labportal/internal/modules/reference/repository"
	"ledes.com/labportal/internal/permission"
	"ledes.com/labportal/pkg/apperror"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/validator"
)

// Labels names a lookup table in user-facing messages.
type Labels struct {
	Singular string
	Plural   string
}

func (l Labels) NotFound() string  { return l.Singular + " não existe." }
func (l Labels) Duplicate() string { return l.Singular + " já existe." }
func (l Labels) Created() string   { return l.Singular + " criado com sucesso." }
func (l Labels) Updated() string   { return l.Singular + " editado com sucesso." }
func (l Labels) Deleted() string   { return l.Singular + " excluído com sucesso." }
func (l Labels) Found() string     { return l.Singular + " encontrado." }
func (l Labels) Listed() string    { return l.Plural + " encontrados." }

const minNameLength = 3

func checkName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if validator.TrimmedLen(name) < minNameLength {
		return "", apperror.BadRequest("Nome deve ter no mínimo 3 caracteres.")
	}
	return name, nil
}

type ReferenceService interface {
	Labels() Labels
	Create(ctx context.Context, actor *entity.Account, input dto.ReferenceRequest) (*commonDto.ReferenceResponse, error)
	Update(ctx context.Context, actor *entity.Account, id uint, input dto.ReferenceRequest) (*commonDto.ReferenceResponse, error)
	Delete(ctx context.Context, actor *entity.Account, id uint) error
	Get(ctx context.Context, id uint) (*commonDto.ReferenceResponse, error)
	List(ctx context.Context, query commonDto.ListQuery) (any, error)
}

type referenceService[T any, P repository.Row[T]] struct {
	repo   repository.ReferenceRepository[T]
	labels Labels
}

func NewReferenceService[T any, P repository.Row[T]](repo repository.ReferenceRepository[T], labels Labels) ReferenceService {
	return &referenceService[T, P]{repo: repo, labels: labels}
}

func (s *referenceService[T, P]) Labels() Labels { return s.labels }

func (s *referenceService[T, P]) Create(ctx context.Context, actor *entity.Account, input dto.ReferenceRequest) (*commonDto.ReferenceResponse, error) {
	if err := permission.Check(actor, permission.Administer); err != nil {
		return nil, err
	}

	name, err := checkName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, name, 0); err != nil {
		return nil, err
	}

	row := P(new(T))
	row.Ref().Name = name
	if err := s.repo.Create(ctx, (*T)(row), actor); err != nil {
		return nil, fmt.Errorf("create %s: %w", s.labels.Singular, err)
	}
	return commonDto.NewReferenceResponse(row.Ref()), nil
}

func (s *referenceService[T, P]) Update(ctx context.Context, actor *entity.Account, id uint, input dto.ReferenceRequest) (*commonDto.ReferenceResponse, error) {
	if err := permission.Check(actor, permission.Administer); err != nil {
		return nil, err
	}
	if _, err := s.find(ctx, id); err != nil {
		return nil, err
	}

	name, err := checkName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.ensureUnique(ctx, name, id); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, id, name, actor)
	if err != nil {
		return nil, err
	}
	return commonDto.NewReferenceResponse(P(updated).Ref()), nil
}

func (s *referenceService[T, P]) Delete(ctx context.Context, actor *entity.Account, id uint) error {
	if err := permission.Check(actor, permission.Administer); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	return s.repo.SoftDelete(ctx, id, actor)
}

func (s *referenceService[T, P]) Get(ctx context.Context, id uint) (*commonDto.ReferenceResponse, error) {
	row, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return commonDto.NewReferenceResponse(P(row).Ref()), nil
}

func (s *referenceService[T, P]) List(ctx context.Context, query commonDto.ListQuery) (any, error) {
	if !query.Paginated() {
		rows, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return toResponses[T, P](rows), nil
	}

	rows, total, err := s.repo.FindPage(ctx, query.Page, query.Size())
	if err != nil {
		return nil, err
	}
	return commonDto.Paginated[*commonDto.ReferenceResponse]{
		Items: toResponses[T, P](rows),
		Meta:  commonDto.NewPaginationMeta(query.Page, query.Size(), total),
	}, nil
}

func (s *referenceService[T, P]) find(ctx context.Context, id uint) (*T, error) {
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(s.labels.NotFound())
		}
		return nil, err
	}
	return row, nil
}

func (s *referenceService[T, P]) ensureUnique(ctx context.Context, name string, exceptID uint) error {
	taken, err := s.repo.NameTaken(ctx, name, exceptID)
	if err != nil {
		return err
	}
	if taken {
		return apperror.Conflict(s.labels.Duplicate())
	}
	return nil
}

func toResponses[T any, P repository.Row[T]](rows []T) []*commonDto.ReferenceResponse {
	out := make([]*commonDto.ReferenceResponse, 0, len(rows))
	for i := range rows {
		out = append(out, commonDto.NewReferenceResponse(P(&rows[i]).Ref()))
	}
	return out
}
