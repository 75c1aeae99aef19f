package render

import (
	"fmt"
	"math"

	"phPortfolio/internal/layout"
	"phPortfolio/internal/portfolio"
)

type HeroView struct {
	Name            string   `json:"name"`
	Title           string   `json:"title"`
	Tagline         string   `json:"tagline"`
	BackgroundImage string   `json:"backgroundImage"`
	RedStripImage   string   `json:"redStripImage"`
	CharacterImages []string `json:"characterImages"`
}

func buildHero(h portfolio.Hero) HeroView {
	imgs := make([]string, len(h.CharacterImages))
	copy(imgs, h.CharacterImages)
	return HeroView{
		Name:            h.Name,
		Title:           h.Title,
		Tagline:         h.Tagline,
		BackgroundImage: h.BackgroundImage,
		RedStripImage:   h.RedStripImage,
		CharacterImages: imgs,
	}
}

// CharacterImageIndex 按指针横向位置（视口宽度百分比）选择角色图片。
// n 为 0 时返回 -1。
func CharacterImageIndex(xPercent float64, n int) int {
	if n <= 0 {
		return -1
	}
	idx := int(math.Floor(xPercent / 100 * float64(n)))
	if idx < 0 {
		return 0
	}
	if idx > n-1 {
		return n - 1
	}
	return idx
}

// ProjectView 中 TextOrder/ImageOrder 只对非 custom 布局有意义。
type ProjectView struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Image       string               `json:"image"`
	ActionImage string               `json:"actionImage"`
	AspectRatio string               `json:"aspectRatio"`
	Layout      portfolio.LayoutMode `json:"layout"`
	Centered    bool                 `json:"centered"`
	TextOrder   int                  `json:"textOrder,omitempty"`
	ImageOrder  int                  `json:"imageOrder,omitempty"`
	Elements    []ElementView        `json:"elements"`
}

type ElementView struct {
	ID      string             `json:"id"`
	Type    layout.ElementType `json:"type"`
	Content string             `json:"content,omitempty"`
	Src     string             `json:"src,omitempty"`
	Box     layout.Box         `json:"box"`
	Style   string             `json:"style"`
	Pixels  *layout.PixelBox   `json:"pixels,omitempty"`
}

func BuildProjects(projects []portfolio.Project, opts Options) []ProjectView {
	out := make([]ProjectView, 0, len(projects))
	for _, p := range projects {
		out = append(out, BuildProject(p, opts))
	}
	return out
}

// BuildProject 渲染单个项目。非 custom 布局忽略 elements；
// 不可见的元素（空图片源）不会出现在结果中。
func BuildProject(p portfolio.Project, opts Options) ProjectView {
	v := ProjectView{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		ActionImage: p.ActionImage,
		AspectRatio: p.ImageAspectRatio,
		Layout:      p.Layout,
		Elements:    []ElementView{},
	}
	if v.AspectRatio == "" {
		v.AspectRatio = "16/9"
	}

	switch p.Layout {
	case portfolio.LayoutImageLeft:
		v.TextOrder, v.ImageOrder = 2, 1
	case portfolio.LayoutImageCenter:
		v.TextOrder, v.ImageOrder = 1, 2
		v.Centered = true
	case portfolio.LayoutCustom:
		v.Elements = buildElements(p.Elements, opts)
	default:
		v.TextOrder, v.ImageOrder = 1, 2
	}
	return v
}

func buildElements(elems []layout.Element, opts Options) []ElementView {
	out := make([]ElementView, 0, len(elems))
	m := layout.Measure{ContainerAspect: opts.ContainerAspect}

	var cw, ch float64
	if opts.ContainerWidth > 0 && opts.ContainerAspect > 0 {
		scale := opts.Scale
		if scale <= 0 {
			scale = 1
		}
		cw = opts.ContainerWidth * scale
		ch = cw / opts.ContainerAspect
	}

	for _, el := range elems {
		box := layout.Resolve(el, m)
		if !box.Visible {
			continue
		}
		ev := ElementView{
			ID:    el.ID,
			Type:  el.Type,
			Box:   box,
			Style: box.Style(),
		}
		if el.Type == layout.TypeText {
			ev.Content = el.Content
		} else {
			ev.Src = el.Src
		}
		if cw > 0 {
			px := box.ToPixels(cw, ch)
			ev.Pixels = &px
		}
		out = append(out, ev)
	}
	return out
}

type ExperienceView struct {
	YearRatio int               `json:"yearRatio"`
	Caption   string            `json:"caption"`
	Entries   []ExperienceEntry `json:"entries"`
}

type ExperienceEntry struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Company       string `json:"company"`
	Period        string `json:"period"`
	Description   string `json:"description"`
	Duration      int    `json:"duration"`
	DurationLabel string `json:"durationLabel"`
	BarPx         int    `json:"barPx"`
}

func BuildExperience(exps []portfolio.Experience, yearRatio int) ExperienceView {
	if yearRatio <= 0 {
		yearRatio = portfolio.DefaultYearRatio
	}
	v := ExperienceView{
		YearRatio: yearRatio,
		Caption:   fmt.Sprintf("Timeline scale: Each segment represents duration based on %dpx/year.", yearRatio),
		Entries:   make([]ExperienceEntry, 0, len(exps)),
	}
	for _, e := range exps {
		v.Entries = append(v.Entries, ExperienceEntry{
			ID:            e.ID,
			Title:         e.Title,
			Company:       e.Company,
			Period:        e.Period,
			Description:   e.Description,
			Duration:      e.Duration,
			DurationLabel: portfolio.DurationLabel(e.Duration),
			BarPx:         portfolio.TimelineBarPx(e.Duration, yearRatio),
		})
	}
	return v
}

type ContactView struct {
	Links []ContactLink `json:"links"`
}

type ContactLink struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
	Value string `json:"value"`
	Href  string `json:"href"`
}

func BuildContact(c portfolio.Contact) ContactView {
	return ContactView{Links: []ContactLink{
		{Kind: "email", Label: "Email", Value: c.Email, Href: "mailto:" + c.Email},
		{Kind: "linkedin", Label: "LinkedIn", Value: "LinkedIn Profile", Href: c.LinkedIn},
		{Kind: "artstation", Label: "ArtStation", Value: "ArtStation Portfolio", Href: c.ArtStation},
		{Kind: "phone", Label: "Phone", Value: c.Phone, Href: "tel:" + c.Phone},
	}}
}
