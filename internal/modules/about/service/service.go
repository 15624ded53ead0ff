package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/about/dto"
	"ledes.com/labportal/internal/modules/about/repository"
	"ledes.com/labportal/internal/permission"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/media"
)

const msgNotFound = "Configuração Sobre Nós não encontrada, edite-a primeiro."

type AboutService interface {
	Get(ctx context.Context) (*dto.AboutResponse, error)
	Update(ctx context.Context, actor *entity.Account, input dto.UpdateAboutRequest) (*dto.AboutResponse, error)
}

type aboutService struct {
	repo     repository.AboutRepository
	resolver media.Resolver
}

func NewAboutService(repo repository.AboutRepository, resolver media.Resolver) AboutService {
	return &aboutService{repo: repo, resolver: resolver}
}

func (s *aboutService) Get(ctx context.Context) (*dto.AboutResponse, error) {
	about, err := s.repo.Find(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		return nil, err
	}
	return dto.NewAboutResponse(about, s.resolver), nil
}

func (s *aboutService) Update(ctx context.Context, actor *entity.Account, input dto.UpdateAboutRequest) (*dto.AboutResponse, error) {
	if err := permission.Check(actor, permission.Administer); err != nil {
		return nil, err
	}

	current, err := s.repo.Find(ctx)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		current = &entity.AboutUs{ID: entity.AboutUsID}
	case err != nil:
		return nil, err
	}

	if input.CoordinatorID != nil {
		ok, err := s.repo.CoordinatorExists(ctx, *input.CoordinatorID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperror.NotFound("Coordenador não existe.")
		}
	}

	hours := current.Hours
	days := hours.Days()
	for name, in := range input.Hours {
		day, ok := days[name]
		if !ok {
			return nil, apperror.BadRequest("Dia da semana inválido: " + name + ".")
		}
		if in.Open != nil {
			day.Open = *in.Open
		}
		if in.OpensAt != nil {
			day.OpensAt = *in.OpensAt
		}
		if in.ClosesAt != nil {
			day.ClosesAt = *in.ClosesAt
		}
		if err := checkDay(name, day); err != nil {
			return nil, err
		}
	}

	update := map[string]any{"hours": hours, "status_id": entity.StatusActive}
	create := *current
	create.Hours = hours
	create.Coordinator = nil

	setString := func(column string, v *string, field *string) {
		if v != nil {
			value := strings.TrimSpace(*v)
			update[column] = value
			*field = value
		}
	}
	setString("description", input.Description, &create.Description)
	setString("address", input.Address, &create.Address)
	setString("coordinator_email", input.CoordinatorEmail, &create.CoordinatorEmail)
	setString("phone", input.Phone, &create.Phone)
	if input.CoordinatorID != nil {
		update["coordinator_id"] = *input.CoordinatorID
		create.CoordinatorID = input.CoordinatorID
	}

	if err := s.repo.Save(ctx, &create, update, actor); err != nil {
		return nil, err
	}
	return s.Get(ctx)
}

// checkDay requires both times on open days, with closing after opening.
// HH:MM strings compare in clock order.
func checkDay(name string, day *entity.DayHours) error {
	if !day.Open {
		return nil
	}
	if day.OpensAt == "" || day.ClosesAt == "" {
		return apperror.BadRequest("Horário de " + name + " deve informar abertura e fechamento.")
	}
	if day.ClosesAt <= day.OpensAt {
		return apperror.BadRequest("Horário de fechamento de " + name + " deve ser posterior à abertura.")
	}
	return nil
}
