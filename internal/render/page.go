package render

import (
	"fmt"

	"phPortfolio/internal/portfolio"
	"phPortfolio/internal/theme"
)

// Options 描述渲染容器；预览与线上只在这里不同。
type Options struct {
	// ContainerAspect 为自定义布局容器的 宽/高。
	ContainerAspect float64 `json:"containerAspect"`
	// ContainerWidth 为容器像素宽度，0 表示不输出像素盒子。
	ContainerWidth float64 `json:"containerWidth"`
	// Scale 为预览缩放系数，线上为 1。
	Scale float64 `json:"scale"`
}

// DefaultOptions 对应线上渲染：16:9 容器，不缩放。
func DefaultOptions() Options {
	return Options{ContainerAspect: 16.0 / 9.0, Scale: 1}
}

type Page struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Theme       ThemeView      `json:"theme"`
	Nav         []NavItem      `json:"nav"`
	Hero        HeroView       `json:"hero"`
	Projects    []ProjectView  `json:"projects"`
	Experience  ExperienceView `json:"experience"`
	Contact     ContactView    `json:"contact"`
}

type ThemeView struct {
	IsDark     bool             `json:"isDark"`
	DataTheme  string           `json:"dataTheme"`
	Variables  []theme.Variable `json:"variables"`
	Stylesheet string           `json:"stylesheet"`
}

type NavItem struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// BuildPage 由主题与内容生成完整的页面视图，不修改输入。
func BuildPage(th theme.Config, c portfolio.Content, opts Options) Page {
	return Page{
		Title:       PageTitle(c.Hero.Name),
		Description: c.Hero.Tagline,
		Theme:       buildTheme(th),
		Nav:         Nav(c.Hero.Name),
		Hero:        buildHero(c.Hero),
		Projects:    BuildProjects(c.Projects, opts),
		Experience:  BuildExperience(c.Experiences, c.YearRatio),
		Contact:     BuildContact(c.Contact),
	}
}

// PageTitle 形如 "<name> - Creative Portfolio"。
func PageTitle(name string) string {
	return fmt.Sprintf("%s - Creative Portfolio", name)
}

// Nav 返回各分区的锚点，顺序即页面顺序。
func Nav(heroName string) []NavItem {
	return []NavItem{
		{ID: "hero", Label: heroName},
		{ID: "projects", Label: "Projects"},
		{ID: "experience", Label: "Experience"},
		{ID: "contact", Label: "Contact Me"},
	}
}

func buildTheme(th theme.Config) ThemeView {
	return ThemeView{
		IsDark:     th.IsDark,
		DataTheme:  th.DataTheme(),
		Variables:  th.CSSVariables(),
		Stylesheet: th.Stylesheet(),
	}
}
