package portfolio

import "phPortfolio/internal/layout"

const (
	DefaultYearRatio = 20

	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin"
)

// Default 返回首次加载时的内容，newID 用于生成各实体 id。
func Default(newID func() string) Content {
	return Content{
		Hero: defaultHero(),
		Projects: []Project{
			withID(defaultProject(), newID()),
			{
				ID:               newID(),
				Title:            "Project Two",
				Description:      "Another fantastic project",
				ImageAspectRatio: "4/3",
				Layout:           LayoutImageCenter,
				Elements:         []layout.Element{},
			},
		},
		Experiences: []Experience{
			withExpID(defaultExperience(), newID()),
			{ID: newID(), Title: "Junior Designer", Company: "Design Agency", Period: "2018-2020", Description: "Developed design skills and portfolio", Duration: 2},
			{ID: newID(), Title: "Freelance Illustrator", Company: "Self-Employed", Period: "2017-2018", Description: "Worked on various illustration projects for clients.", Duration: 1},
			{ID: newID(), Title: "Design Intern", Company: "Startup Inc.", Period: "2016-2017", Description: "Assisted senior designers and learned industry tools.", Duration: 1},
			{ID: newID(), Title: "Graphic Design Student", Company: "Art University", Period: "2012-2016", Description: "Completed B.A. in Graphic Design.", Duration: 4},
		},
		Contact:    defaultContact(),
		YearRatio:  DefaultYearRatio,
		AdminUsers: []AdminUser{defaultAdmin(newID())},
	}
}

func defaultHero() Hero {
	return Hero{
		Name:            "Muhammad Haider",
		Title:           "Creative Portfolio",
		Tagline:         "Creative professional specializing in innovative design solutions and artistic excellence.",
		CharacterImages: []string{},
	}
}

// defaultProject 同时作为旧数据中缺失字段的回填模板。
func defaultProject() Project {
	return Project{
		Title:            "Project One",
		Description:      "Amazing project description here",
		ImageAspectRatio: "16/9",
		Layout:           LayoutImageRight,
		Elements:         []layout.Element{},
	}
}

// defaultExperience 同时作为旧数据中缺失字段的回填模板。
func defaultExperience() Experience {
	return Experience{
		Title:       "Senior Designer",
		Company:     "Creative Studio",
		Period:      "2020-2023",
		Description: "Led creative projects and team collaboration",
		Duration:    3,
	}
}

func defaultContact() Contact {
	return Contact{
		Email:      "muhammad.haider@example.com",
		LinkedIn:   "https://linkedin.com/in/muhammad-haider",
		ArtStation: "https://artstation.com/muhammad-haider",
		Phone:      "+1 (555) 123-4567",
	}
}

func defaultAdmin(id string) AdminUser {
	return AdminUser{ID: id, Username: DefaultAdminUsername, Password: DefaultAdminPassword}
}

// NewProject 是管理端“添加项目”生成的项目。
func NewProject(id string) Project {
	return Project{
		ID:               id,
		Title:            "New Project",
		Description:      "Project description",
		ImageAspectRatio: "16/9",
		Layout:           LayoutImageRight,
		Elements:         []layout.Element{},
	}
}

// NewExperience 是管理端“添加经历”生成的条目。
func NewExperience(id string) Experience {
	return Experience{
		ID:          id,
		Title:       "New Position",
		Company:     "Company Name",
		Period:      "2023-2024",
		Description: "Job description",
		Duration:    1,
	}
}

func withID(p Project, id string) Project {
	p.ID = id
	return p
}

func withExpID(e Experience, id string) Experience {
	e.ID = id
	return e
}
