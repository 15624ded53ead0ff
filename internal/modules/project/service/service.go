package service

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"ledes.com/labportal/internal/datastore"
	"ledes.com/labportal/internal/entity"
	"ledes.com/labportal/internal/modules/project/dto"
	"ledes.com/labportal/internal/modules/project/repository"
	"ledes.com/labportal/internal/permission"
	"ledes.com/labportal/pkg/apperror"
	"ledes.com/labportal/pkg/credential"
	commonDto "ledes.com/labportal/pkg/dto"
	"ledes.com/labportal/pkg/media"
	"ledes.com/labportal/pkg/storage"
)

const msgNotFound = "Projeto não existe."

type ProjectService interface {
	Create(ctx context.Context, actor *entity.Account, input dto.CreateProjectRequest, cover *media.File) (*dto.ProjectResponse, error)
	Update(ctx context.Context, actor *entity.Account, id uint, input dto.UpdateProjectRequest, cover *media.File) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, actor *entity.Account, id uint) error
	Get(ctx context.Context, id uint) (*dto.ProjectResponse, error)
	List(ctx context.Context, filter dto.ProjectFilter) (any, error)
}

type projectService struct {
	repo         repository.ProjectRepository
	tx           *datastore.Transactor
	imageStorage storage.ImageStorage
	resolver     media.Resolver
	now          func() time.Time
}

func NewProjectService(repo repository.ProjectRepository, tx *datastore.Transactor, imageStorage storage.ImageStorage, resolver media.Resolver) ProjectService {
	return &projectService{repo: repo, tx: tx, imageStorage: imageStorage, resolver: resolver, now: time.Now}
}

func coverFolder(title string) string {
	return "projects/" + credential.DirectoryKey(title)
}

func parseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(dto.DateLayout, value)
	if err != nil {
		return time.Time{}, apperror.BadRequest(field + " deve estar no formato AAAA-MM-DD.")
	}
	return t, nil
}

func (s *projectService) Create(ctx context.Context, actor *entity.Account, input dto.CreateProjectRequest, cover *media.File) (*dto.ProjectResponse, error) {
	if err := permission.Check(actor, permission.ManageProjects); err != nil {
		return nil, err
	}

	start, err := parseDate("Data de início", input.StartDate)
	if err != nil {
		return nil, err
	}
	var end *time.Time
	if input.EndDate != nil && *input.EndDate != "" {
		e, err := parseDate("Data de término", *input.EndDate)
		if err != nil {
			return nil, err
		}
		end = &e
	}
	if err := checkPeriod(start, end); err != nil {
		return nil, err
	}

	members, err := input.MemberList()
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, &input.StatusTypeID, &input.CategoryID, &input.CoordinatorID); err != nil {
		return nil, err
	}
	if err := s.checkMembers(ctx, members); err != nil {
		return nil, err
	}

	coverRef := media.Remote(media.ProjectCoverPlaceholder)
	if cover != nil {
		coverRef, err = storage.Put(ctx, s.imageStorage, coverFolder(input.Title), cover)
		if err != nil {
			return nil, err
		}
	}

	project := &entity.Project{
		Title:         input.Title,
		Description:   input.Description,
		StartDate:     start,
		EndDate:       end,
		Cover:         coverRef,
		StatusTypeID:  input.StatusTypeID,
		CategoryID:    input.CategoryID,
		CoordinatorID: input.CoordinatorID,
	}

	// The project row and its memberships commit together; a failed member
	// write rolls back the project as well.
	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, project, actor); err != nil {
			return err
		}
		return s.syncMembers(ctx, repo, project.ID, members, actor)
	})
	if err != nil {
		if cover != nil {
			storage.Discard(ctx, s.imageStorage, coverRef)
		}
		return nil, err
	}

	return s.Get(ctx, project.ID)
}

func (s *projectService) Update(ctx context.Context, actor *entity.Account, id uint, input dto.UpdateProjectRequest, cover *media.File) (*dto.ProjectResponse, error) {
	if err := permission.Check(actor, permission.ManageProjects); err != nil {
		return nil, err
	}

	current, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	data := map[string]any{}
	if input.Title != nil {
		data["title"] = *input.Title
	}
	if input.Description != nil {
		data["description"] = *input.Description
	}

	start, end := current.StartDate, current.EndDate
	if input.StartDate != nil {
		if start, err = parseDate("Data de início", *input.StartDate); err != nil {
			return nil, err
		}
		data["start_date"] = start
	}
	if input.EndDate != nil {
		if *input.EndDate == "" {
			end = nil
		} else {
			e, err := parseDate("Data de término", *input.EndDate)
			if err != nil {
				return nil, err
			}
			end = &e
		}
		data["end_date"] = end
	}
	if err := checkPeriod(start, end); err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, input.StatusTypeID, input.CategoryID, input.CoordinatorID); err != nil {
		return nil, err
	}
	if input.StatusTypeID != nil {
		data["status_type_id"] = *input.StatusTypeID
	}
	if input.CategoryID != nil {
		data["category_id"] = *input.CategoryID
	}
	if input.CoordinatorID != nil {
		data["coordinator_id"] = *input.CoordinatorID
	}

	members, err := input.MemberList()
	if err != nil {
		return nil, err
	}
	if members != nil {
		if err := s.checkMembers(ctx, *members); err != nil {
			return nil, err
		}
	}

	var newCover media.ImageRef
	if cover != nil {
		title := current.Title
		if input.Title != nil {
			title = *input.Title
		}
		newCover, err = storage.Put(ctx, s.imageStorage, coverFolder(title), cover)
		if err != nil {
			return nil, err
		}
		data["cover_kind"] = newCover.Kind
		data["cover_location"] = newCover.Location
	}

	err = s.tx.Do(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, id, data, actor); err != nil {
			return err
		}
		if members == nil {
			return nil
		}
		return s.syncMembers(ctx, repo, id, *members, actor)
	})
	if err != nil {
		storage.Discard(ctx, s.imageStorage, newCover)
		return nil, err
	}
	if cover != nil {
		storage.Discard(ctx, s.imageStorage, current.Cover)
	}

	return s.Get(ctx, id)
}

func (s *projectService) Delete(ctx context.Context, actor *entity.Account, id uint) error {
	if err := permission.Check(actor, permission.ManageProjects); err != nil {
		return err
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	return s.tx.Do(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.RemoveAllMembers(ctx, id, s.now(), actor); err != nil {
			return err
		}
		return repo.SoftDelete(ctx, id, actor)
	})
}

func (s *projectService) Get(ctx context.Context, id uint) (*dto.ProjectResponse, error) {
	project, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewProjectResponse(project, s.resolver), nil
}

func (s *projectService) List(ctx context.Context, filter dto.ProjectFilter) (any, error) {
	f := repository.Filter{StatusTypeID: filter.StatusTypeID, CategoryID: filter.CategoryID}

	if !filter.Paginated() {
		projects, err := s.repo.FindAll(ctx, f)
		if err != nil {
			return nil, err
		}
		return s.toResponses(projects), nil
	}

	projects, total, err := s.repo.FindPage(ctx, f, filter.Page, filter.Size())
	if err != nil {
		return nil, err
	}
	return commonDto.Paginated[*dto.ProjectResponse]{
		Items: s.toResponses(projects),
		Meta:  commonDto.NewPaginationMeta(filter.Page, filter.Size(), total),
	}, nil
}

// syncMembers reconciles the active memberships of a project with members.
// Rows are matched on (account, link type, role type): matches keep their
// row, missing ones are closed and new ones are created. repo must be bound
// to the caller's transaction so a partial sync never commits.
func (s *projectService) syncMembers(ctx context.Context, repo repository.ProjectRepository, projectID uint, members []dto.MemberInput, actor *entity.Account) error {
	now := s.now()

	pending := make(map[entity.MemberKey]dto.MemberInput, len(members))
	for _, m := range members {
		pending[m.Key()] = m
	}

	existing, err := repo.ActiveMembers(ctx, projectID)
	if err != nil {
		return err
	}
	for _, row := range existing {
		in, ok := pending[row.Key()]
		if !ok {
			if err := repo.RemoveMember(ctx, row.ID, now, actor); err != nil {
				return err
			}
			continue
		}
		delete(pending, row.Key())
		if row.ActiveMember != in.Active() {
			if err := repo.UpdateMember(ctx, row.ID, map[string]any{"active_member": in.Active()}, actor); err != nil {
				return err
			}
		}
	}

	// create in request order
	for _, m := range members {
		if _, ok := pending[m.Key()]; !ok {
			continue
		}
		row := &entity.ProjectMember{
			ProjectID:    projectID,
			AccountID:    m.AccountID,
			LinkTypeID:   m.LinkTypeID,
			RoleTypeID:   m.RoleTypeID,
			ActiveMember: m.Active(),
			JoinedAt:     now,
		}
		if err := repo.CreateMember(ctx, row, actor); err != nil {
			return err
		}
	}
	return nil
}

func checkPeriod(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return apperror.BadRequest("Data de término deve ser posterior à data de início.")
	}
	return nil
}

func (s *projectService) checkReferences(ctx context.Context, statusTypeID, categoryID, coordinatorID *uint) error {
	checks := []struct {
		id      *uint
		exists  func(context.Context, ...uint) (bool, error)
		message string
	}{
		{statusTypeID, s.repo.StatusTypesActive, "Tipo Situação Projeto não existe."},
		{categoryID, s.repo.CategoriesActive, "Tipo Projeto não existe."},
		{coordinatorID, s.repo.AccountsActive, "Coordenador não existe."},
	}
	for _, c := range checks {
		if c.id == nil {
			continue
		}
		ok, err := c.exists(ctx, *c.id)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound(c.message)
		}
	}
	return nil
}

func (s *projectService) checkMembers(ctx context.Context, members []dto.MemberInput) error {
	seen := make(map[entity.MemberKey]struct{}, len(members))
	var accounts, linkTypes, roleTypes []uint
	for _, m := range members {
		if m.AccountID == 0 || m.LinkTypeID == 0 || m.RoleTypeID == 0 {
			return apperror.BadRequest("Membro deve informar usuário, tipo de vínculo e tipo de papel.")
		}
		if _, dup := seen[m.Key()]; dup {
			return apperror.BadRequest("Membro duplicado na lista de membros.")
		}
		seen[m.Key()] = struct{}{}
		accounts = append(accounts, m.AccountID)
		linkTypes = append(linkTypes, m.LinkTypeID)
		roleTypes = append(roleTypes, m.RoleTypeID)
	}

	checks := []struct {
		ids     []uint
		exists  func(context.Context, ...uint) (bool, error)
		message string
	}{
		{accounts, s.repo.AccountsActive, "Usuário membro não existe."},
		{linkTypes, s.repo.LinkTypesActive, "Tipo Vínculo não existe."},
		{roleTypes, s.repo.RoleTypesActive, "Tipo Papel não existe."},
	}
	for _, c := range checks {
		ok, err := c.exists(ctx, c.ids...)
		if err != nil {
			return err
		}
		if !ok {
			return apperror.NotFound(c.message)
		}
	}
	return nil
}

func (s *projectService) find(ctx context.Context, id uint) (*entity.Project, error) {
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.NotFound(msgNotFound)
		}
		return nil, err
	}
	return project, nil
}

func (s *projectService) toResponses(projects []entity.Project) []*dto.ProjectResponse {
	out := make([]*dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, dto.NewProjectResponse(&projects[i], s.resolver))
	}
	return out
}
