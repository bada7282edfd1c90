package portfolio

import (
	"errors"

	"github.com/portfolio-space/core/internal/models"
	"github.com/portfolio-space/core/internal/pkg/pagination"
	"github.com/portfolio-space/core/internal/pkg/response"
	"gorm.io/gorm"
)

type UpdateProfileDTO struct {
	FullName    *string `json:"full_name"`
	Title       *string `json:"title"`
	Intro       *string `json:"intro"`
	About       *string `json:"about"`
	Email       *string `json:"email"`
	Phone       *string `json:"phone"`
	Location    *string `json:"location"`
	GithubURL   *string `json:"github_url"`
	LinkedinURL *string `json:"linkedin_url"`
	TwitterURL  *string `json:"twitter_url"`
	ResumeURL   *string `json:"resume_url"`
}

type ProjectDTO struct {
	Title     string  `json:"title" binding:"required"`
	Summary   string  `json:"summary"`
	TechStack string  `json:"tech_stack"`
	DemoURL   string  `json:"demo_url"`
	SourceURL string  `json:"source_url"`
	Featured  *bool   `json:"featured"`
	Order     *int    `json:"order"`
}

type SkillDTO struct {
	Name     string `json:"name" binding:"required"`
	Category string `json:"category"`
	Level    *int   `json:"level" binding:"omitempty,min=0,max=100"`
	Order    *int   `json:"order"`
}

type EducationDTO struct {
	Degree      string `json:"degree" binding:"required"`
	Institution string `json:"institution" binding:"required"`
	StartYear   int    `json:"start_year"`
	EndYear     *int   `json:"end_year"`
	Description string `json:"description"`
	Order       *int   `json:"order"`
}

type ContactDTO struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"max=200"`
	Message string `json:"message" binding:"required,max=5000"`
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Profile returns the single profile row, or nil when not yet created.
func (s *Service) Profile() (*models.ProfileModel, error) {
	var profile models.ProfileModel
	if err := s.db.First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// UpsertProfile updates the profile row, creating it on first use.
func (s *Service) UpsertProfile(dto *UpdateProfileDTO) (*models.ProfileModel, error) {
	profile, err := s.Profile()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &models.ProfileModel{}
	}

	apply := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	apply(&profile.FullName, dto.FullName)
	apply(&profile.Title, dto.Title)
	apply(&profile.Intro, dto.Intro)
	apply(&profile.About, dto.About)
	apply(&profile.Email, dto.Email)
	apply(&profile.Phone, dto.Phone)
	apply(&profile.Location, dto.Location)
	apply(&profile.GithubURL, dto.GithubURL)
	apply(&profile.LinkedinURL, dto.LinkedinURL)
	apply(&profile.TwitterURL, dto.TwitterURL)
	apply(&profile.ResumeURL, dto.ResumeURL)

	return profile, s.db.Save(profile).Error
}

func (s *Service) ListProjects(featuredOnly bool) ([]models.ProjectModel, error) {
	tx := s.db.Order("`order` ASC, created_at DESC")
	if featuredOnly {
		tx = tx.Where("featured = ?", true)
	}
	var projects []models.ProjectModel
	return projects, tx.Find(&projects).Error
}

func (s *Service) CreateProject(dto *ProjectDTO) (*models.ProjectModel, error) {
	project := models.ProjectModel{
		Title:     dto.Title,
		Summary:   dto.Summary,
		TechStack: dto.TechStack,
		DemoURL:   dto.DemoURL,
		SourceURL: dto.SourceURL,
	}
	if dto.Featured != nil {
		project.Featured = *dto.Featured
	}
	if dto.Order != nil {
		project.Order = *dto.Order
	}
	return &project, s.db.Create(&project).Error
}

func (s *Service) UpdateProject(id string, dto *ProjectDTO) (*models.ProjectModel, error) {
	var project models.ProjectModel
	if err := s.db.First(&project, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	project.Title = dto.Title
	project.Summary = dto.Summary
	project.TechStack = dto.TechStack
	project.DemoURL = dto.DemoURL
	project.SourceURL = dto.SourceURL
	if dto.Featured != nil {
		project.Featured = *dto.Featured
	}
	if dto.Order != nil {
		project.Order = *dto.Order
	}
	return &project, s.db.Save(&project).Error
}

func (s *Service) DeleteProject(id string) error {
	return s.db.Delete(&models.ProjectModel{}, "id = ?", id).Error
}

func (s *Service) ListSkills() ([]models.SkillModel, error) {
	var skills []models.SkillModel
	return skills, s.db.Order("category ASC, `order` ASC").Find(&skills).Error
}

func (s *Service) CreateSkill(dto *SkillDTO) (*models.SkillModel, error) {
	skill := models.SkillModel{Name: dto.Name, Category: dto.Category}
	if dto.Level != nil {
		skill.Level = *dto.Level
	} else {
		skill.Level = 70
	}
	if dto.Order != nil {
		skill.Order = *dto.Order
	}
	return &skill, s.db.Create(&skill).Error
}

func (s *Service) DeleteSkill(id string) error {
	return s.db.Delete(&models.SkillModel{}, "id = ?", id).Error
}

func (s *Service) ListEducation() ([]models.EducationModel, error) {
	var entries []models.EducationModel
	return entries, s.db.Order("`order` ASC, start_year DESC").Find(&entries).Error
}

func (s *Service) CreateEducation(dto *EducationDTO) (*models.EducationModel, error) {
	entry := models.EducationModel{
		Degree:      dto.Degree,
		Institution: dto.Institution,
		StartYear:   dto.StartYear,
		EndYear:     dto.EndYear,
		Description: dto.Description,
	}
	if dto.Order != nil {
		entry.Order = *dto.Order
	}
	return &entry, s.db.Create(&entry).Error
}

func (s *Service) DeleteEducation(id string) error {
	return s.db.Delete(&models.EducationModel{}, "id = ?", id).Error
}

func (s *Service) CreateContactMessage(dto *ContactDTO) (*models.ContactMessageModel, error) {
	msg := models.ContactMessageModel{
		Name:    dto.Name,
		Email:   dto.Email,
		Subject: dto.Subject,
		Message: dto.Message,
	}
	return &msg, s.db.Create(&msg).Error
}

func (s *Service) ListContactMessages(q pagination.Query, unreadOnly bool) ([]models.ContactMessageModel, response.Pagination, error) {
	tx := s.db.Model(&models.ContactMessageModel{}).Order("created_at DESC")
	if unreadOnly {
		tx = tx.Where("is_read = ?", false)
	}
	var msgs []models.ContactMessageModel
	pg, err := pagination.Paginate(tx, q, &msgs)
	return msgs, pg, err
}

func (s *Service) MarkContactRead(id string) (*models.ContactMessageModel, error) {
	var msg models.ContactMessageModel
	if err := s.db.First(&msg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	msg.IsRead = true
	return &msg, s.db.Model(&msg).Update("is_read", true).Error
}

func (s *Service) DeleteContactMessage(id string) error {
	return s.db.Delete(&models.ContactMessageModel{}, "id = ?", id).Error
}
