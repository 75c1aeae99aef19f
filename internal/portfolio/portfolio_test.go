package portfolio

import (
	"encoding/json"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phPortfolio/internal/layout"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + strconv.Itoa(n)
	}
}

func TestDefaultContent(t *testing.T) {
	c := Default(seqIDs())
	assert.Equal(t, "Muhammad Haider", c.Hero.Name)
	require.Len(t, c.Projects, 2)
	assert.Equal(t, LayoutImageCenter, c.Projects[1].Layout)
	assert.NotNil(t, c.Projects[0].Elements)
	require.Len(t, c.Experiences, 5)
	assert.Equal(t, 4, c.Experiences[4].Duration)
	assert.Equal(t, DefaultYearRatio, c.YearRatio)
	require.Len(t, c.AdminUsers, 1)
	assert.Equal(t, "admin", c.AdminUsers[0].Username)
}

func TestReconcileBackfillsOldShape(t *testing.T) {
	raw := json.RawMessage(`{
		"hero": {"name": "Ada"},
		"projects": [{"id": 7, "title": "Legacy", "layout": "imageLeft"}],
		"experiences": [{"title": "Dev", "duration": "3"}],
		"adminUsers": []
	}`)
	c, err := Reconcile(raw, seqIDs())
	require.NoError(t, err)

	assert.Equal(t, "Ada", c.Hero.Name)
	assert.Equal(t, defaultHero().Tagline, c.Hero.Tagline)
	assert.Equal(t, []string{}, c.Hero.CharacterImages)

	require.Len(t, c.Projects, 1)
	p := c.Projects[0]
	assert.Equal(t, "7", p.ID)
	assert.Equal(t, "Legacy", p.Title)
	assert.Equal(t, LayoutImageLeft, p.Layout)
	assert.Equal(t, "16/9", p.ImageAspectRatio)
	assert.NotNil(t, p.Elements)
	assert.Empty(t, p.Elements)

	require.Len(t, c.Experiences, 1)
	assert.NotEmpty(t, c.Experiences[0].ID)
	assert.Equal(t, 3, c.Experiences[0].Duration)
	assert.Equal(t, defaultExperience().Company, c.Experiences[0].Company)

	assert.Equal(t, defaultContact(), c.Contact)
	assert.Equal(t, 20, c.YearRatio)
	require.Len(t, c.AdminUsers, 1)
	assert.Equal(t, DefaultAdminUsername, c.AdminUsers[0].Username)
}

func TestReconcileElements(t *testing.T) {
	raw := json.RawMessage(`{"projects": [{"id": "p", "layout": "custom", "elements": [
		{"id": "a", "type": "text", "content": "hi", "position": {"x": 10}, "size": {"width": 40, "height": "25"}},
		{"id": "b", "src": "data:image/png;base64,AA", "presetPosition": "top-right", "naturalWidth": 4, "naturalHeight": 2},
		"garbage"
	]}]}`)
	c, err := Reconcile(raw, seqIDs())
	require.NoError(t, err)
	elems := c.Projects[0].Elements
	require.Len(t, elems, 2)

	assert.Equal(t, layout.TypeText, elems[0].Type)
	assert.Equal(t, 10.0, elems[0].Position.X)
	assert.Equal(t, layout.DefaultY, elems[0].Position.Y)
	assert.Equal(t, 40.0, elems[0].Size.Width)
	assert.Equal(t, layout.PercentHeight(25), elems[0].Size.Height)

	assert.Equal(t, layout.TypeImage, elems[1].Type)
	assert.Equal(t, layout.AnchorTopRight, elems[1].PresetPosition)
	assert.True(t, elems[1].Size.Height.Auto)
	assert.Equal(t, 4, elems[1].NaturalWidth)
}

func TestReconcileYearRatioZero(t *testing.T) {
	c, err := Reconcile(json.RawMessage(`{"yearRatio": 0}`), seqIDs())
	require.NoError(t, err)
	assert.Equal(t, 20, c.YearRatio)

	c, err = Reconcile(json.RawMessage(`{"yearRatio": 35}`), seqIDs())
	require.NoError(t, err)
	assert.Equal(t, 35, c.YearRatio)

	_, err = Reconcile(json.RawMessage(`[1,2]`), seqIDs())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCloneIsDeep(t *testing.T) {
	c := Default(seqIDs())
	_, err := c.AddElement(c.Projects[0].ID, "e1", layout.TypeText)
	require.NoError(t, err)

	cp := c.Clone()
	cp.Projects[0].Elements[0].Content = "changed"
	cp.Hero.CharacterImages = append(cp.Hero.CharacterImages, "x")
	cp.AdminUsers[0].Password = "other"

	assert.Equal(t, layout.DefaultText, c.Projects[0].Elements[0].Content)
	assert.Empty(t, c.Hero.CharacterImages)
	assert.Equal(t, DefaultAdminPassword, c.AdminUsers[0].Password)
}

func TestAddProjectLeavesOthersUntouched(t *testing.T) {
	ids := seqIDs()
	c := Default(ids)
	prior := c.Clone().Projects

	p := c.AddProject(ids())
	for _, old := range prior {
		assert.NotEqual(t, old.ID, p.ID)
	}
	require.Len(t, c.Projects, len(prior)+1)
	assert.Equal(t, prior, c.Projects[:len(prior)])
	assert.Equal(t, p, c.Projects[len(prior)])
}

func TestProjectLifecycle(t *testing.T) {
	c := Default(seqIDs())
	p := c.AddProject("new")
	assert.Equal(t, "New Project", p.Title)
	assert.Equal(t, "Project description", p.Description)
	require.Len(t, c.Projects, 3)

	custom := LayoutCustom
	title := "Renamed"
	require.NoError(t, c.UpdateProject("new", ProjectPatch{Title: &title, Layout: &custom}))
	got, _ := c.FindProject("new")
	assert.Equal(t, "Renamed", got.Title)
	assert.Equal(t, LayoutCustom, got.Layout)

	bad := "2/1"
	err := c.UpdateProject("new", ProjectPatch{Title: &bad, ImageAspectRatio: &bad})
	assert.ErrorIs(t, err, ErrValidation)
	got, _ = c.FindProject("new")
	assert.Equal(t, "Renamed", got.Title)

	assert.ErrorIs(t, c.UpdateProject("missing", ProjectPatch{}), ErrNotFound)
	require.NoError(t, c.DeleteProject("new"))
	assert.Len(t, c.Projects, 2)
	assert.ErrorIs(t, c.DeleteProject("new"), ErrNotFound)
}

func TestElementOpsThroughContent(t *testing.T) {
	c := Default(seqIDs())
	pid := c.Projects[0].ID

	el, err := c.AddElement(pid, "e1", layout.TypeImage)
	require.NoError(t, err)
	assert.Equal(t, "", el.Src)

	el, err = c.ApplyPreset(pid, "e1", layout.AnchorBottomLeft)
	require.NoError(t, err)
	assert.Equal(t, layout.Position{X: 0, Y: 100}, el.Position)

	_, err = c.ApplyPreset(pid, "nope", layout.AnchorBottomLeft)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.UpdateElement(pid, "e1", layout.Patch{Position: &layout.Position{X: 120, Y: 0}})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = c.AddElement(pid, "e2", layout.ElementType("video"))
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, c.DeleteElement(pid, "e1"))
	assert.Empty(t, c.Projects[0].Elements)
	assert.ErrorIs(t, c.DeleteElement(pid, "e1"), ErrNotFound)
	_, err = c.AddElement("ghost", "e3", layout.TypeText)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceElementsValidates(t *testing.T) {
	c := Default(seqIDs())
	pid := c.Projects[0].ID
	good, _ := layout.NewElement("a", layout.TypeText)
	bad := good
	bad.ID = "b"
	bad.Size.Width = 0

	assert.ErrorIs(t, c.ReplaceElements(pid, []layout.Element{good, bad}), ErrValidation)
	assert.Empty(t, c.Projects[0].Elements)

	require.NoError(t, c.ReplaceElements(pid, []layout.Element{good}))
	assert.Len(t, c.Projects[0].Elements, 1)
}

func TestExperienceOps(t *testing.T) {
	c := Default(seqIDs())
	e := c.AddExperience("x")
	assert.Equal(t, "New Position", e.Title)
	assert.Equal(t, 1, e.Duration)

	neg := -1
	assert.ErrorIs(t, c.UpdateExperience("x", ExperiencePatch{Duration: &neg}), ErrValidation)
	five := 5
	require.NoError(t, c.UpdateExperience("x", ExperiencePatch{Duration: &five}))
	assert.Equal(t, 5, c.Experiences[len(c.Experiences)-1].Duration)

	require.NoError(t, c.DeleteExperience("x"))
	assert.ErrorIs(t, c.DeleteExperience("x"), ErrNotFound)
}

func TestUserRules(t *testing.T) {
	c := Default(seqIDs())
	adminID := c.AdminUsers[0].ID

	_, err := c.AddUser("u2", "", "pw")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = c.AddUser("u2", "admin", "pw")
	assert.ErrorIs(t, err, ErrDuplicateUsername)

	assert.ErrorIs(t, c.DeleteUser(adminID), ErrLastAdmin)
	assert.Len(t, c.AdminUsers, 1)

	_, err = c.AddUser("u2", "editor", "pw")
	require.NoError(t, err)
	assert.ErrorIs(t, c.UpdateUser("u2", "admin", "pw"), ErrDuplicateUsername)
	require.NoError(t, c.UpdateUser("u2", "editor2", "pw2"))
	assert.NotNil(t, c.FindUserByName("editor2"))

	require.NoError(t, c.DeleteUser(adminID))
	assert.ErrorIs(t, c.DeleteUser("u2"), ErrLastAdmin)
	assert.True(t, errors.Is(ErrLastAdmin, ErrValidation))

	assert.ErrorIs(t, c.ReplaceAdminUsers(nil, seqIDs()), ErrLastAdmin)
}

func TestReplaceSection(t *testing.T) {
	c := Default(seqIDs())
	require.NoError(t, c.ReplaceSection("contact", json.RawMessage(`{"email":"a@b.c"}`), seqIDs()))
	assert.Equal(t, "a@b.c", c.Contact.Email)
	assert.Equal(t, defaultContact().Phone, c.Contact.Phone)

	require.NoError(t, c.ReplaceSection("projects", json.RawMessage(`[{"title":"Only"}]`), seqIDs()))
	require.Len(t, c.Projects, 1)
	assert.Equal(t, []layout.Element{}, c.Projects[0].Elements)

	assert.ErrorIs(t, c.ReplaceSection("projects", json.RawMessage(`{}`), seqIDs()), ErrValidation)
	assert.ErrorIs(t, c.ReplaceSection("yearRatio", json.RawMessage(`-2`), seqIDs()), ErrValidation)
	assert.ErrorIs(t, c.ReplaceSection("theme", json.RawMessage(`{}`), seqIDs()), ErrUnknownSection)
}

func TestHeroCharacterImages(t *testing.T) {
	c := Default(seqIDs())
	require.NoError(t, c.AddCharacterImage("a"))
	require.NoError(t, c.AddCharacterImage("b"))
	assert.ErrorIs(t, c.AddCharacterImage(" "), ErrValidation)
	require.NoError(t, c.RemoveCharacterImage(0))
	assert.Equal(t, []string{"b"}, c.Hero.CharacterImages)
	assert.ErrorIs(t, c.RemoveCharacterImage(3), ErrNotFound)
}

func TestApplyImage(t *testing.T) {
	c := Default(seqIDs())
	pid := c.Projects[0].ID
	_, err := c.AddElement(pid, "img", layout.TypeImage)
	require.NoError(t, err)
	_, err = c.AddElement(pid, "txt", layout.TypeText)
	require.NoError(t, err)

	res := ImageResult{Src: "data:image/png;base64,AA", Width: 640, Height: 480}
	require.NoError(t, c.ApplyImage(ImageTarget{Field: ImageHeroBackground}, res))
	assert.Equal(t, res.Src, c.Hero.BackgroundImage)

	require.NoError(t, c.ApplyImage(ImageTarget{Field: ImageElementSrc, ProjectID: pid, ElementID: "img"}, res))
	el, _ := layout.Find(c.Projects[0].Elements, "img")
	assert.Equal(t, res.Src, el.Src)
	assert.Equal(t, 640, el.NaturalWidth)

	err = c.ApplyImage(ImageTarget{Field: ImageElementSrc, ProjectID: pid, ElementID: "txt"}, res)
	assert.ErrorIs(t, err, ErrValidation)
	err = c.ApplyImage(ImageTarget{Field: ImageProjectImage, ProjectID: "gone"}, res)
	assert.ErrorIs(t, err, ErrNotFound)
	err = c.ApplyImage(ImageTarget{Field: ImageProjectImage}, res)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTimeline(t *testing.T) {
	assert.Equal(t, 60, TimelineBarPx(3, 20))
	assert.Equal(t, 10, TimelineBarPx(0, 20))
	assert.Equal(t, 10, TimelineBarPx(1, 5))
	assert.Equal(t, "1 year", DurationLabel(1))
	assert.Equal(t, "4 years", DurationLabel(4))
	assert.Equal(t, "0 years", DurationLabel(0))
}
