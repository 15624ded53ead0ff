package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/account/dto"
	"ledes.com/labportal/internal/modules/account/repository"
	"ledes.com/labportal/internal/permission"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/credential"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/storage"
)

const (
	msgNotFound       = "Usuário não encontrado."
	msgDuplicate      = "Usuário já existe."
	msgAdministerOnly = "Somente administradores podem alterar a permissão de administrador."
)

type AccountService interface {
	Create(ctx context.Context, actor *entity.Account, input dto.CreateAccountRequest, photo *media.File) (*dto.AccountResponse, error)
	Update(ctx context.Context, actor *entity.Account, id uint, input dto.UpdateAccountRequest, photo *media.File) (*dto.AccountResponse, error)
	Delete(ctx context.Context, actor *entity.Account, id uint) error
	Get(ctx context.Context, id uint) (*dto.AccountResponse, error)
	List(ctx context.Context, query commonDto.ListQuery) (any, error)
}

type accountService struct {
	repo         repository.AccountRepository
	imageStorage storage.ImageStorage
	resolver     media.Resolver
}

func NewAccountService(repo repository.AccountRepository, imageStorage storage.ImageStorage, resolver media.Resolver) AccountService {
	return &accountService{repo: repo, imageStorage: imageStorage, resolver: resolver}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func photoFolder(email string) string {
	return "accounts/" + credential.DirectoryKey(email)
}

func (s *accountService) Create(ctx context.Context, actor *entity.Account, input dto.CreateAccountRequest, photo *media.File) (*dto.AccountResponse, error) {
	if err := permission.Check(actor, permission.ManageAccounts); err != nil {
		return nil, err
	}

	if input.CanAdminister && !permission.Allowed(actor, permission.Administer) {
		return nil, apperror.Forbidden(msgAdministerOnly)
	}

	email := normalizeEmail(input.Email)
	taken, err := s.repo.EmailTaken(ctx, email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, apperror.Conflict(msgDuplicate)
	}

	hash, err := credential.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	photoRef := media.Remote(credential.AvatarURL(email))
	if photo != nil {
		photoRef, err = storage.Put(ctx, s.imageStorage, photoFolder(email), photo)
		if err != nil {
			return nil, err
		}
	}

	account := &entity.Account{
		FirstName:             strings.TrimSpace(input.FirstName),
		LastName:              strings.TrimSpace(input.LastName),
		Email:                 email,
		PasswordHash:          hash,
		LinkedIn:              input.LinkedIn,
		GitHub:                input.GitHub,
		Course:                input.Course,
		PositionCode:          input.PositionCode,
		Photo:                 photoRef,
		CanAdminister:         input.CanAdminister,
		CanManageAccounts:     input.CanManageAccounts,
		CanManageProjects:     input.CanManageProjects,
		CanManagePublications: input.CanManagePublications,
	}
	if err := s.repo.Create(ctx, account, actor); err != nil {
		if photo != nil {
			storage.Discard(ctx, s.imageStorage, photoRef)
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(msgDuplicate)
		}
		return nil, err
	}

	return dto.NewAccountResponse(account, s.resolver), nil
}

func (s *accountService) Update(ctx context.Context, actor *entity.Account, id uint, input dto.UpdateAccountRequest, photo *media.File) (*dto.AccountResponse, error) {
	if err := permission.Check(actor, permission.ManageAccounts, id); err != nil {
		return nil, err
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.ChangesFlags(current) && !permission.Allowed(actor, permission.ManageAccounts) {
		return nil, apperror.Forbidden("Usuário sem permissão para alterar permissões.")
	}
	if input.CanAdminister != nil && *input.CanAdminister != current.CanAdminister &&
		!permission.Allowed(actor, permission.Administer) {
		return nil, apperror.Forbidden(msgAdministerOnly)
	}

	data := map[string]any{}
	setString := func(column string, v *string) {
		if v != nil {
			data[column] = strings.TrimSpace(*v)
		}
	}
	setString("first_name", input.FirstName)
	setString("last_name", input.LastName)
	setString("linkedin", input.LinkedIn)
	setString("github", input.GitHub)
	setString("course", input.Course)
	setString("position_code", input.PositionCode)

	setBool := func(column string, v *bool) {
		if v != nil {
			data[column] = *v
		}
	}
	setBool("can_administer", input.CanAdminister)
	setBool("can_manage_accounts", input.CanManageAccounts)
	setBool("can_manage_projects", input.CanManageProjects)
	setBool("can_manage_publications", input.CanManagePublications)

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email != current.Email {
			taken, err := s.repo.EmailTaken(ctx, email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, apperror.Conflict(msgDuplicate)
			}
			data["email"] = email
		}
	}

	if input.Password != nil {
		hash, err := credential.HashPassword(*input.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		data["password_hash"] = hash
	}

	var newPhoto media.ImageRef
	if photo != nil {
		newPhoto, err = storage.Put(ctx, s.imageStorage, photoFolder(current.Email), photo)
		if err != nil {
			return nil, err
		}
		data["photo_kind"] = newPhoto.Kind
		data["photo_location"] = newPhoto.Location
	}

	updated, err := s.repo.Update(ctx, id, data, actor)
	if err != nil {
		storage.Discard(ctx, s.imageStorage, newPhoto)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperror.Conflict(msgDuplicate)
		}
		return nil, err
	}
	if photo != nil {
		storage.Discard(ctx, s.imageStorage, current.Photo)
	}

	return dto.NewAccountResponse(updated, s.resolver), nil
}

func (s *accountService) Delete(ctx context.Context, actor *entity.Account, id uint) error {
	if err := permission.Check(actor, permission.ManageAccounts); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	_, err := s.repo.SoftDelete(ctx, id, actor)
	return err
}

func (s *accountService) Get(ctx context.Context, id uint) (*dto.AccountResponse, error) {
	account, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewAccountResponse(account, s.resolver), nil
}

func (s *accountService) List(ctx context.Context, query commonDto.ListQuery) (any, error) {
	if !query.Paginated() {
		accounts, err := s.repo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
		return s.toResponses(accounts), nil
	}

	accounts, total, err := s.repo.FindPage(ctx, query.Page, query.Size())
	if err != nil {
		return nil, err
	}
	return commonDto.Paginated[*dto.AccountResponse]{
		Items: s.toResponses(accounts),
		Meta:  commonDto.NewPaginationMeta(query.Page, query.Size(), total),
	}, nil
}

func (s *accountService) find(ctx context.Context, id uint) (*entity.Account, error) {
	account, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		return nil, err
	}
	return account, nil
}

func (s *accountService) toResponses(accounts []entity.Account) []*dto.AccountResponse {
	out := make([]*dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		out = append(out, dto.NewAccountResponse(&accounts[i], s.resolver))
	}
	return out
}
