package models

// ProfileModel is the owner's CV header. A single row is expected.
type ProfileModel struct {
	Base
	FullName    string `json:"full_name" gorm:"not null"`
	Title       string `json:"title"`
	Intro       string `json:"intro"     gorm:"type:text"`
	About       string `json:"about"     gorm:"type:text"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	GithubURL   string `json:"github_url"`
	LinkedinURL string `json:"linkedin_url"`
	TwitterURL  string `json:"twitter_url"`
	ResumeURL   string `json:"resume_url"`
}

func (ProfileModel) TableName() string { return "profiles" }

// ProjectModel is a portfolio project entry.
type ProjectModel struct {
	Base
	Title     string `json:"title"      gorm:"not null"`
	Summary   string `json:"summary"    gorm:"type:text"`
	TechStack string `json:"tech_stack"`
	DemoURL   string `json:"demo_url"`
	SourceURL string `json:"source_url"`
	Featured  bool   `json:"featured"   gorm:"default:false"`
	Order     int    `json:"order"      gorm:"default:0"`
}

func (ProjectModel) TableName() string { return "projects" }

// SkillModel is a named skill with a 0-100 proficiency level.
type SkillModel struct {
	Base
	Name     string `json:"name"     gorm:"uniqueIndex;not null"`
	Category string `json:"category"`
	Level    int    `json:"level"    gorm:"default:70"`
	Order    int    `json:"order"    gorm:"default:0"`
}

func (SkillModel) TableName() string { return "skills" }

// EducationModel is a CV education entry.
type EducationModel struct {
	Base
	Degree      string `json:"degree"      gorm:"not null"`
	Institution string `json:"institution" gorm:"not null"`
	StartYear   int    `json:"start_year"`
	EndYear     *int   `json:"end_year"`
	Description string `json:"description" gorm:"type:text"`
	Order       int    `json:"order"       gorm:"default:0"`
}

func (EducationModel) TableName() string { return "educations" }

// ContactMessageModel is a message from the public contact form.
type ContactMessageModel struct {
	Base
	Name    string `json:"name"    gorm:"not null"`
	Email   string `json:"email"   gorm:"not null"`
	Subject string `json:"subject"`
	Message string `json:"message" gorm:"type:text;not null"`
	IsRead  bool   `json:"is_read" gorm:"default:false;index"`
}

func (ContactMessageModel) TableName() string { return "contact_messages" }
