package portfolio

import "phPortfolio/internal/layout"

// LayoutMode 决定项目的展示方式；只有 custom 使用 Elements。
type LayoutMode string

const (
	LayoutImageRight  LayoutMode = "imageRight"
	LayoutImageLeft   LayoutMode = "imageLeft"
	LayoutImageCenter LayoutMode = "imageCenter"
	LayoutCustom      LayoutMode = "custom"
)

var layoutModes = map[LayoutMode]struct{}{
	LayoutImageRight:  {},
	LayoutImageLeft:   {},
	LayoutImageCenter: {},
	LayoutCustom:      {},
}

// AspectRatios 是项目主图允许的宽高比。
var AspectRatios = []string{"16/9", "4/3", "1/1", "3/4", "9/16"}

// Content 是可编辑内容的聚合根。
type Content struct {
	Hero        Hero         `json:"hero"`
	Projects    []Project    `json:"projects"`
	Experiences []Experience `json:"experiences"`
	Contact     Contact      `json:"contact"`
	YearRatio   int          `json:"yearRatio"`
	AdminUsers  []AdminUser  `json:"adminUsers"`
}

type Hero struct {
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Tagline         string   `json:"tagline"`
	CharacterImages []string `json:"characterImages"`
	BackgroundImage string   `json:"backgroundImage"`
	RedStripImage   string   `json:"redStripImage"`
}

type Project struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	Image            string           `json:"image"`
	ActionImage      string           `json:"actionImage"`
	ImageAspectRatio string           `json:"imageAspectRatio"`
	Layout           LayoutMode       `json:"layout"`
	Elements         []layout.Element `json:"elements"`
}

// Experience 中 Duration 以年为单位，用于时间轴长度。
type Experience struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Period      string `json:"period"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
}

type Contact struct {
	Email      string `json:"email"`
	LinkedIn   string `json:"linkedin"`
	ArtStation string `json:"artstation"`
	Phone      string `json:"phone"`
}

// AdminUser 的密码以明文保存并以明文比较。
type AdminUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Clone 深拷贝整个内容树。
func (c Content) Clone() Content {
	out := c
	out.Hero.CharacterImages = cloneStrings(c.Hero.CharacterImages)

	out.Projects = make([]Project, len(c.Projects))
	for i, p := range c.Projects {
		p.Elements = layout.Clone(p.Elements)
		out.Projects[i] = p
	}

	out.Experiences = make([]Experience, len(c.Experiences))
	copy(out.Experiences, c.Experiences)

	out.AdminUsers = make([]AdminUser, len(c.AdminUsers))
	copy(out.AdminUsers, c.AdminUsers)
	return out
}

// FindProject 返回项目及其下标。
func (c *Content) FindProject(id string) (*Project, int) {
	for i := range c.Projects {
		if c.Projects[i].ID == id {
			return &c.Projects[i], i
		}
	}
	return nil, -1
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
