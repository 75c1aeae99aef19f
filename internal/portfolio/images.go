package portfolio

import (
	"fmt"

	"phPortfolio/internal/layout"
)

// ImageField 标识一次图片上传要写入的字段。
type ImageField string

const (
	ImageHeroBackground ImageField = "hero.backgroundImage"
	ImageHeroRedStrip   ImageField = "hero.redStripImage"
	ImageHeroCharacter  ImageField = "hero.characterImages"
	ImageProjectImage   ImageField = "project.image"
	ImageProjectAction  ImageField = "project.actionImage"
	ImageElementSrc     ImageField = "element.src"
)

// ImageTarget 在上传时确定，异步结果只会写入这一个字段。
type ImageTarget struct {
	Field     ImageField `json:"field"`
	ProjectID string     `json:"projectId,omitempty"`
	ElementID string     `json:"elementId,omitempty"`
}

func (t ImageTarget) Validate() error {
	switch t.Field {
	case ImageHeroBackground, ImageHeroRedStrip, ImageHeroCharacter:
		return nil
	case ImageProjectImage, ImageProjectAction:
		if t.ProjectID == "" {
			return validationf("%s requires projectId", t.Field)
		}
		return nil
	case ImageElementSrc:
		if t.ProjectID == "" || t.ElementID == "" {
			return validationf("%s requires projectId and elementId", t.Field)
		}
		return nil
	default:
		return validationf("unknown image field %q", t.Field)
	}
}

// ImageResult 是解码完成的图片：data URL 及像素尺寸。
type ImageResult struct {
	Src    string `json:"src"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ApplyImage 把结果写入目标字段。目标已被删除时返回 ErrNotFound。
func (c *Content) ApplyImage(t ImageTarget, r ImageResult) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if r.Src == "" {
		return validationf("image source is empty")
	}

	switch t.Field {
	case ImageHeroBackground:
		c.Hero.BackgroundImage = r.Src
	case ImageHeroRedStrip:
		c.Hero.RedStripImage = r.Src
	case ImageHeroCharacter:
		return c.AddCharacterImage(r.Src)
	case ImageProjectImage, ImageProjectAction:
		p, _ := c.FindProject(t.ProjectID)
		if p == nil {
			return notFoundf("project", t.ProjectID)
		}
		if t.Field == ImageProjectImage {
			p.Image = r.Src
		} else {
			p.ActionImage = r.Src
		}
	case ImageElementSrc:
		p, _ := c.FindProject(t.ProjectID)
		if p == nil {
			return notFoundf("project", t.ProjectID)
		}
		el, ok := layout.Find(p.Elements, t.ElementID)
		if !ok {
			return notFoundf("element", t.ElementID)
		}
		if el.Type != layout.TypeImage {
			return validationf("element %s is not an image", t.ElementID)
		}
		elems := layout.Clone(p.Elements)
		for i := range elems {
			if elems[i].ID == t.ElementID {
				elems[i].Src = r.Src
				elems[i].NaturalWidth = r.Width
				elems[i].NaturalHeight = r.Height
			}
		}
		p.Elements = elems
	default:
		return fmt.Errorf("%w: %s", ErrValidation, t.Field)
	}
	return nil
}
