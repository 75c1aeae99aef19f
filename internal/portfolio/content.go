package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"phPortfolio/internal/layout"
)

// 以下变更方法都先校验再写入：返回错误时 Content 保持不变。

func (c *Content) ReplaceHero(h Hero) {
	if h.CharacterImages == nil {
		h.CharacterImages = []string{}
	}
	h.CharacterImages = cloneStrings(h.CharacterImages)
	c.Hero = h
}

func (c *Content) AddCharacterImage(src string) error {
	if strings.TrimSpace(src) == "" {
		return validationf("character image source is empty")
	}
	c.Hero.CharacterImages = append(cloneStrings(c.Hero.CharacterImages), src)
	return nil
}

func (c *Content) RemoveCharacterImage(index int) error {
	imgs := c.Hero.CharacterImages
	if index < 0 || index >= len(imgs) {
		return fmt.Errorf("%w: character image %d", ErrNotFound, index)
	}
	out := make([]string, 0, len(imgs)-1)
	out = append(out, imgs[:index]...)
	c.Hero.CharacterImages = append(out, imgs[index+1:]...)
	return nil
}

func (c *Content) ReplaceContact(ct Contact) {
	c.Contact = ct
}

// SetYearRatio 拒绝负数；0 回落到默认值 20。
func (c *Content) SetYearRatio(r int) error {
	if r < 0 {
		return validationf("yearRatio %d is negative", r)
	}
	if r == 0 {
		r = DefaultYearRatio
	}
	c.YearRatio = r
	return nil
}

// ReplaceProjects 整体替换项目列表，缺失 id 由 newID 补齐。
func (c *Content) ReplaceProjects(list []Project, newID func() string) error {
	out := make([]Project, len(list))
	for i, p := range list {
		if p.ID == "" {
			p.ID = newID()
		}
		if p.Elements == nil {
			p.Elements = []layout.Element{}
		}
		if err := p.Validate(); err != nil {
			return err
		}
		p.Elements = layout.Clone(p.Elements)
		out[i] = p
	}
	c.Projects = out
	return nil
}

// Validate 校验布局、宽高比以及所有元素的几何参数。
func (p Project) Validate() error {
	if _, ok := layoutModes[p.Layout]; !ok {
		return validationf("unknown layout %q", p.Layout)
	}
	if !validAspect(p.ImageAspectRatio) {
		return validationf("unknown aspect ratio %q", p.ImageAspectRatio)
	}
	for _, el := range p.Elements {
		if err := validateElement(el); err != nil {
			return err
		}
	}
	return nil
}

func (c *Content) AddProject(id string) Project {
	p := NewProject(id)
	c.Projects = append(c.Projects, p)
	return p
}

// ProjectPatch 中 nil 字段保持原值。
type ProjectPatch struct {
	Title            *string     `json:"title"`
	Description      *string     `json:"description"`
	Image            *string     `json:"image"`
	ActionImage      *string     `json:"actionImage"`
	ImageAspectRatio *string     `json:"imageAspectRatio"`
	Layout           *LayoutMode `json:"layout"`
}

func (c *Content) UpdateProject(id string, patch ProjectPatch) error {
	p, _ := c.FindProject(id)
	if p == nil {
		return notFoundf("project", id)
	}
	next := *p
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Image != nil {
		next.Image = *patch.Image
	}
	if patch.ActionImage != nil {
		next.ActionImage = *patch.ActionImage
	}
	if patch.ImageAspectRatio != nil {
		next.ImageAspectRatio = *patch.ImageAspectRatio
	}
	if patch.Layout != nil {
		next.Layout = *patch.Layout
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*p = next
	return nil
}

func (c *Content) DeleteProject(id string) error {
	_, idx := c.FindProject(id)
	if idx < 0 {
		return notFoundf("project", id)
	}
	out := make([]Project, 0, len(c.Projects)-1)
	out = append(out, c.Projects[:idx]...)
	c.Projects = append(out, c.Projects[idx+1:]...)
	return nil
}

// ReplaceElements 整体替换项目的元素集合。
func (c *Content) ReplaceElements(projectID string, elems []layout.Element) error {
	p, _ := c.FindProject(projectID)
	if p == nil {
		return notFoundf("project", projectID)
	}
	for _, el := range elems {
		if err := validateElement(el); err != nil {
			return err
		}
	}
	p.Elements = layout.Clone(elems)
	return nil
}

func (c *Content) AddElement(projectID, elementID string, typ layout.ElementType) (layout.Element, error) {
	p, _ := c.FindProject(projectID)
	if p == nil {
		return layout.Element{}, notFoundf("project", projectID)
	}
	elems, el, err := layout.Add(p.Elements, elementID, typ)
	if err != nil {
		return layout.Element{}, layoutErr(err)
	}
	p.Elements = elems
	return el, nil
}

func (c *Content) UpdateElement(projectID, elementID string, patch layout.Patch) (layout.Element, error) {
	return c.editElement(projectID, elementID, func(elems []layout.Element) ([]layout.Element, error) {
		return layout.Update(elems, elementID, patch)
	})
}

func (c *Content) DeleteElement(projectID, elementID string) error {
	p, _ := c.FindProject(projectID)
	if p == nil {
		return notFoundf("project", projectID)
	}
	elems, err := layout.Delete(p.Elements, elementID)
	if err != nil {
		return layoutErr(err)
	}
	p.Elements = elems
	return nil
}

func (c *Content) ApplyPreset(projectID, elementID string, anchor layout.Anchor) (layout.Element, error) {
	return c.editElement(projectID, elementID, func(elems []layout.Element) ([]layout.Element, error) {
		return layout.ApplyPreset(elems, elementID, anchor)
	})
}

func (c *Content) editElement(projectID, elementID string, fn func([]layout.Element) ([]layout.Element, error)) (layout.Element, error) {
	p, _ := c.FindProject(projectID)
	if p == nil {
		return layout.Element{}, notFoundf("project", projectID)
	}
	elems, err := fn(p.Elements)
	if err != nil {
		return layout.Element{}, layoutErr(err)
	}
	p.Elements = elems
	el, _ := layout.Find(elems, elementID)
	return el, nil
}

func (c *Content) ReplaceExperiences(list []Experience, newID func() string) error {
	out := make([]Experience, len(list))
	for i, e := range list {
		if e.ID == "" {
			e.ID = newID()
		}
		if e.Duration < 0 {
			return validationf("duration %d is negative", e.Duration)
		}
		out[i] = e
	}
	c.Experiences = out
	return nil
}

func (c *Content) AddExperience(id string) Experience {
	e := NewExperience(id)
	c.Experiences = append(c.Experiences, e)
	return e
}

type ExperiencePatch struct {
	Title       *string `json:"title"`
	Company     *string `json:"company"`
	Period      *string `json:"period"`
	Description *string `json:"description"`
	Duration    *int    `json:"duration"`
}

func (c *Content) UpdateExperience(id string, patch ExperiencePatch) error {
	idx := c.experienceIndex(id)
	if idx < 0 {
		return notFoundf("experience", id)
	}
	next := c.Experiences[idx]
	if patch.Title != nil {
		next.Title = *patch.Title
	}
	if patch.Company != nil {
		next.Company = *patch.Company
	}
	if patch.Period != nil {
		next.Period = *patch.Period
	}
	if patch.Description != nil {
		next.Description = *patch.Description
	}
	if patch.Duration != nil {
		if *patch.Duration < 0 {
			return validationf("duration %d is negative", *patch.Duration)
		}
		next.Duration = *patch.Duration
	}
	c.Experiences[idx] = next
	return nil
}

func (c *Content) DeleteExperience(id string) error {
	idx := c.experienceIndex(id)
	if idx < 0 {
		return notFoundf("experience", id)
	}
	out := make([]Experience, 0, len(c.Experiences)-1)
	out = append(out, c.Experiences[:idx]...)
	c.Experiences = append(out, c.Experiences[idx+1:]...)
	return nil
}

func (c *Content) experienceIndex(id string) int {
	for i := range c.Experiences {
		if c.Experiences[i].ID == id {
			return i
		}
	}
	return -1
}

// ReplaceAdminUsers 要求列表非空且用户名唯一、字段非空。
func (c *Content) ReplaceAdminUsers(list []AdminUser, newID func() string) error {
	if len(list) == 0 {
		return ErrLastAdmin
	}
	seen := make(map[string]struct{}, len(list))
	out := make([]AdminUser, len(list))
	for i, u := range list {
		if err := validateCredentials(u.Username, u.Password); err != nil {
			return err
		}
		if _, dup := seen[u.Username]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateUsername, u.Username)
		}
		seen[u.Username] = struct{}{}
		if u.ID == "" {
			u.ID = newID()
		}
		out[i] = u
	}
	c.AdminUsers = out
	return nil
}

func (c *Content) AddUser(id, username, password string) (AdminUser, error) {
	if err := validateCredentials(username, password); err != nil {
		return AdminUser{}, err
	}
	if c.FindUserByName(username) != nil {
		return AdminUser{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}
	u := AdminUser{ID: id, Username: username, Password: password}
	c.AdminUsers = append(c.AdminUsers, u)
	return u, nil
}

// UpdateUser 替换用户名和密码；用户名不能与其他用户重复。
func (c *Content) UpdateUser(id, username, password string) error {
	idx := c.userIndex(id)
	if idx < 0 {
		return notFoundf("user", id)
	}
	if err := validateCredentials(username, password); err != nil {
		return err
	}
	if other := c.FindUserByName(username); other != nil && other.ID != id {
		return fmt.Errorf("%w: %s", ErrDuplicateUsername, username)
	}
	c.AdminUsers[idx].Username = username
	c.AdminUsers[idx].Password = password
	return nil
}

func (c *Content) DeleteUser(id string) error {
	idx := c.userIndex(id)
	if idx < 0 {
		return notFoundf("user", id)
	}
	if len(c.AdminUsers) <= 1 {
		return ErrLastAdmin
	}
	out := make([]AdminUser, 0, len(c.AdminUsers)-1)
	out = append(out, c.AdminUsers[:idx]...)
	c.AdminUsers = append(out, c.AdminUsers[idx+1:]...)
	return nil
}

// FindUserByName 精确匹配用户名。
func (c *Content) FindUserByName(username string) *AdminUser {
	for i := range c.AdminUsers {
		if c.AdminUsers[i].Username == username {
			return &c.AdminUsers[i]
		}
	}
	return nil
}

func (c *Content) userIndex(id string) int {
	for i := range c.AdminUsers {
		if c.AdminUsers[i].ID == id {
			return i
		}
	}
	return -1
}

// Sections 是导入数据中 portfolioData 允许出现的顶层键。
var Sections = []string{"hero", "projects", "experiences", "contact", "yearRatio", "adminUsers"}

// ReplaceSection 用导入数据替换一个顶层分区，按加载旧数据的同一规则补齐缺省值。
func (c *Content) ReplaceSection(key string, raw json.RawMessage, newID func() string) error {
	var items []json.RawMessage
	decodeList := func() error {
		if err := json.Unmarshal(raw, &items); err != nil {
			return validationf("%s must be an array", key)
		}
		return nil
	}

	switch key {
	case "hero":
		if _, ok := decodeFields(raw); !ok {
			return validationf("hero must be an object")
		}
		c.Hero = reconcileHero(raw)
	case "contact":
		if _, ok := decodeFields(raw); !ok {
			return validationf("contact must be an object")
		}
		c.Contact = reconcileContact(raw)
	case "projects":
		if err := decodeList(); err != nil {
			return err
		}
		c.Projects = reconcileProjects(items, newID)
	case "experiences":
		if err := decodeList(); err != nil {
			return err
		}
		c.Experiences = reconcileExperiences(items, newID)
	case "adminUsers":
		if err := decodeList(); err != nil {
			return err
		}
		c.AdminUsers = reconcileAdminUsers(items, newID)
	case "yearRatio":
		var r float64
		if err := json.Unmarshal(raw, &r); err != nil {
			return validationf("yearRatio must be a number")
		}
		return c.SetYearRatio(int(r))
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSection, key)
	}
	return nil
}

func validateCredentials(username, password string) error {
	if strings.TrimSpace(username) == "" || password == "" {
		return validationf("username and password are required")
	}
	return nil
}

func validateElement(el layout.Element) error {
	if el.ID == "" {
		return validationf("element id is empty")
	}
	if _, err := layout.NewElement(el.ID, el.Type); err != nil {
		return layoutErr(err)
	}
	if _, err := layout.Update([]layout.Element{el}, el.ID, layout.Patch{
		Position:       &el.Position,
		Size:           &el.Size,
		PresetPosition: &el.PresetPosition,
	}); err != nil {
		return layoutErr(err)
	}
	return nil
}

// layoutErr 把 layout 包的错误归入本包的分类。
func layoutErr(err error) error {
	if errors.Is(err, layout.ErrElementNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", ErrValidation, err)
}
