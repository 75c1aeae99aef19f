package portfolio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"phPortfolio/internal/layout"
)

type fields map[string]json.RawMessage

func decodeFields(raw json.RawMessage) (fields, bool) {
	var f fields
	if len(raw) == 0 || json.Unmarshal(raw, &f) != nil || f == nil {
		return nil, false
	}
	return f, true
}

func (f fields) str(key, def string) string {
	raw, ok := f[key]
	if !ok {
		return def
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return def
	}
	return s
}

// id 兼容旧数据中的数字 id，缺失时生成新 id。
func (f fields) id(newID func() string) string {
	raw, ok := f["id"]
	if ok {
		var s string
		if json.Unmarshal(raw, &s) == nil && s != "" {
			return s
		}
		var n json.Number
		if json.Unmarshal(raw, &n) == nil && n != "" {
			return n.String()
		}
	}
	return newID()
}

func (f fields) number(key string, def float64) float64 {
	raw, ok := f[key]
	if !ok {
		return def
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return n
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return v
		}
	}
	return def
}

func (f fields) int(key string, def int) int {
	return int(f.number(key, float64(def)))
}

func (f fields) list(key string) ([]json.RawMessage, bool) {
	raw, ok := f[key]
	if !ok {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return nil, false
	}
	return items, true
}

// Reconcile 把持久化的（可能是旧版本的）内容与默认值合并。
// 缺失字段取默认值，缺失 id 补新 id，缺失 elements 补空列表，
// yearRatio 缺失或为 0 时取 20，管理员列表为空时补默认管理员。
func Reconcile(raw json.RawMessage, newID func() string) (Content, error) {
	f, ok := decodeFields(raw)
	if !ok {
		return Content{}, fmt.Errorf("%w: content is not a JSON object", ErrValidation)
	}
	out := Default(newID)

	if h, ok := f["hero"]; ok {
		out.Hero = reconcileHero(h)
	}
	if items, ok := f.list("projects"); ok {
		out.Projects = reconcileProjects(items, newID)
	}
	if items, ok := f.list("experiences"); ok {
		out.Experiences = reconcileExperiences(items, newID)
	}
	if c, ok := f["contact"]; ok {
		out.Contact = reconcileContact(c)
	}
	out.YearRatio = reconcileYearRatio(f)
	if items, ok := f.list("adminUsers"); ok {
		out.AdminUsers = reconcileAdminUsers(items, newID)
	}
	return out, nil
}

func reconcileYearRatio(f fields) int {
	r := f.int("yearRatio", DefaultYearRatio)
	if r <= 0 {
		return DefaultYearRatio
	}
	return r
}

func reconcileHero(raw json.RawMessage) Hero {
	def := defaultHero()
	f, ok := decodeFields(raw)
	if !ok {
		return def
	}
	h := Hero{
		Name:            f.str("name", def.Name),
		Title:           f.str("title", def.Title),
		Tagline:         f.str("tagline", def.Tagline),
		BackgroundImage: f.str("backgroundImage", def.BackgroundImage),
		RedStripImage:   f.str("redStripImage", def.RedStripImage),
		CharacterImages: []string{},
	}
	if items, ok := f.list("characterImages"); ok {
		for _, item := range items {
			var s string
			if json.Unmarshal(item, &s) == nil && s != "" {
				h.CharacterImages = append(h.CharacterImages, s)
			}
		}
	}
	return h
}

func reconcileProjects(items []json.RawMessage, newID func() string) []Project {
	out := make([]Project, 0, len(items))
	for _, item := range items {
		if p, ok := reconcileProject(item, newID); ok {
			out = append(out, p)
		}
	}
	return out
}

func reconcileProject(raw json.RawMessage, newID func() string) (Project, bool) {
	f, ok := decodeFields(raw)
	if !ok {
		return Project{}, false
	}
	def := defaultProject()
	p := Project{
		ID:               f.id(newID),
		Title:            f.str("title", def.Title),
		Description:      f.str("description", def.Description),
		Image:            f.str("image", def.Image),
		ActionImage:      f.str("actionImage", def.ActionImage),
		ImageAspectRatio: f.str("imageAspectRatio", def.ImageAspectRatio),
		Layout:           LayoutMode(f.str("layout", string(def.Layout))),
		Elements:         []layout.Element{},
	}
	if !validAspect(p.ImageAspectRatio) {
		p.ImageAspectRatio = def.ImageAspectRatio
	}
	if _, ok := layoutModes[p.Layout]; !ok {
		p.Layout = def.Layout
	}
	if items, ok := f.list("elements"); ok {
		for _, item := range items {
			if el, ok := reconcileElement(item, newID); ok {
				p.Elements = append(p.Elements, el)
			}
		}
	}
	return p, true
}

func reconcileElement(raw json.RawMessage, newID func() string) (layout.Element, bool) {
	f, ok := decodeFields(raw)
	if !ok {
		return layout.Element{}, false
	}
	typ := layout.ElementType(f.str("type", ""))
	if typ != layout.TypeText && typ != layout.TypeImage {
		if f.str("src", "") != "" {
			typ = layout.TypeImage
		} else {
			typ = layout.TypeText
		}
	}
	el, _ := layout.NewElement(f.id(newID), typ)
	el.Content = f.str("content", "")
	el.Src = f.str("src", "")

	if pos, ok := decodeFields(f["position"]); ok {
		el.Position.X = clampPercent(pos.number("x", layout.DefaultX))
		el.Position.Y = clampPercent(pos.number("y", layout.DefaultY))
	}
	if size, ok := decodeFields(f["size"]); ok {
		if w := size.number("width", layout.DefaultWidth); w > 0 && w <= 100 {
			el.Size.Width = w
		}
		if h, ok := size["height"]; ok {
			var height layout.Height
			if json.Unmarshal(h, &height) == nil && (height.Auto || (height.Percent > 0 && height.Percent <= 100)) {
				el.Size.Height = height
			}
		}
	}
	if a, err := layout.ParseAnchor(f.str("presetPosition", "")); err == nil {
		el.PresetPosition = a
	}
	if el.Src != "" {
		el.NaturalWidth = f.int("naturalWidth", 0)
		el.NaturalHeight = f.int("naturalHeight", 0)
	}
	return el, true
}

func reconcileExperiences(items []json.RawMessage, newID func() string) []Experience {
	def := defaultExperience()
	out := make([]Experience, 0, len(items))
	for _, item := range items {
		f, ok := decodeFields(item)
		if !ok {
			continue
		}
		e := Experience{
			ID:          f.id(newID),
			Title:       f.str("title", def.Title),
			Company:     f.str("company", def.Company),
			Period:      f.str("period", def.Period),
			Description: f.str("description", def.Description),
			Duration:    f.int("duration", def.Duration),
		}
		if e.Duration < 0 {
			e.Duration = 0
		}
		out = append(out, e)
	}
	return out
}

func reconcileContact(raw json.RawMessage) Contact {
	def := defaultContact()
	f, ok := decodeFields(raw)
	if !ok {
		return def
	}
	return Contact{
		Email:      f.str("email", def.Email),
		LinkedIn:   f.str("linkedin", def.LinkedIn),
		ArtStation: f.str("artstation", def.ArtStation),
		Phone:      f.str("phone", def.Phone),
	}
}

func reconcileAdminUsers(items []json.RawMessage, newID func() string) []AdminUser {
	out := make([]AdminUser, 0, len(items))
	seen := map[string]struct{}{}
	for _, item := range items {
		f, ok := decodeFields(item)
		if !ok {
			continue
		}
		u := AdminUser{
			ID:       f.id(newID),
			Username: f.str("username", ""),
			Password: f.str("password", ""),
		}
		if strings.TrimSpace(u.Username) == "" || u.Password == "" {
			continue
		}
		if _, dup := seen[u.Username]; dup {
			continue
		}
		seen[u.Username] = struct{}{}
		out = append(out, u)
	}
	if len(out) == 0 {
		out = append(out, defaultAdmin(newID()))
	}
	return out
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func validAspect(s string) bool {
	for _, a := range AspectRatios {
		if a == s {
			return true
		}
	}
	return false
}
