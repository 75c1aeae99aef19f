package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ElementType 区分自定义布局中的文本与图片元素。
type ElementType string

const (
	TypeText  ElementType = "text"
	TypeImage ElementType = "image"
)

// 新元素的默认几何参数（百分比）。
const (
	DefaultX     = 50
	DefaultY     = 50
	DefaultWidth = 30

	DefaultText = "Your text here"
)

var (
	ErrElementNotFound = errors.New("element not found")
	ErrInvalidType     = errors.New("invalid element type")
	ErrInvalidGeometry = errors.New("invalid element geometry")
)

// Position 是元素中心点在容器内的百分比坐标。
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Height 为 "auto"（由渲染内容决定）或容器高度的百分比。
type Height struct {
	Auto    bool
	Percent float64
}

func AutoHeight() Height { return Height{Auto: true} }

func PercentHeight(p float64) Height { return Height{Percent: p} }

func (h Height) MarshalJSON() ([]byte, error) {
	if h.Auto {
		return []byte(`"auto"`), nil
	}
	return json.Marshal(h.Percent)
}

func (h *Height) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*h = AutoHeight()
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "%")
		if s == "" || strings.EqualFold(s, "auto") {
			*h = AutoHeight()
			return nil
		}
		// 表单输入可能以字符串形式保存数值
		p, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("parse height %q: %w", s, err)
		}
		*h = PercentHeight(p)
		return nil
	}
	var p float64
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*h = PercentHeight(p)
	return nil
}

// Size 描述元素宽度（容器宽度百分比）与高度。
type Size struct {
	Width  float64 `json:"width"`
	Height Height  `json:"height"`
}

// UnmarshalJSON 缺省 height 时按 "auto" 处理。
func (s *Size) UnmarshalJSON(data []byte) error {
	type plain Size
	aux := plain{Height: AutoHeight()}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Size(aux)
	return nil
}

// Element 是自定义布局中的一个可定位单元。
// Position 决定渲染位置；PresetPosition 只记录最近一次选择的预设，可与 Position 不一致。
type Element struct {
	ID             string      `json:"id"`
	Type           ElementType `json:"type"`
	Content        string      `json:"content,omitempty"`
	Src            string      `json:"src,omitempty"`
	Position       Position    `json:"position"`
	Size           Size        `json:"size"`
	PresetPosition Anchor      `json:"presetPosition,omitempty"`
	NaturalWidth   int         `json:"naturalWidth,omitempty"`
	NaturalHeight  int         `json:"naturalHeight,omitempty"`
}

// NewElement 按类型构造带默认值的元素。
func NewElement(id string, typ ElementType) (Element, error) {
	el := Element{
		ID:       id,
		Type:     typ,
		Position: Position{X: DefaultX, Y: DefaultY},
		Size:     Size{Width: DefaultWidth, Height: AutoHeight()},
	}
	switch typ {
	case TypeText:
		el.Content = DefaultText
	case TypeImage:
		el.Src = ""
	default:
		return Element{}, fmt.Errorf("%w: %q", ErrInvalidType, typ)
	}
	return el, nil
}

// Patch 只携带需要替换的字段，nil 表示保持不变。
type Patch struct {
	Position       *Position `json:"position,omitempty"`
	Size           *Size     `json:"size,omitempty"`
	Content        *string   `json:"content,omitempty"`
	Src            *string   `json:"src,omitempty"`
	PresetPosition *Anchor   `json:"presetPosition,omitempty"`
}

// Add 追加一个新元素，返回新的切片。
func Add(elems []Element, id string, typ ElementType) ([]Element, Element, error) {
	el, err := NewElement(id, typ)
	if err != nil {
		return elems, Element{}, err
	}
	out := Clone(elems)
	out = append(out, el)
	return out, el, nil
}

// Update 替换指定元素中 patch 给出的字段。
func Update(elems []Element, id string, patch Patch) ([]Element, error) {
	idx := indexOf(elems, id)
	if idx < 0 {
		return elems, fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	el := elems[idx]

	if patch.Position != nil {
		if err := validatePosition(*patch.Position); err != nil {
			return elems, err
		}
		el.Position = *patch.Position
	}
	if patch.Size != nil {
		if err := validateSize(*patch.Size); err != nil {
			return elems, err
		}
		el.Size = *patch.Size
	}
	if patch.Content != nil {
		el.Content = *patch.Content
	}
	if patch.Src != nil {
		el.Src = *patch.Src
		if *patch.Src == "" {
			el.NaturalWidth, el.NaturalHeight = 0, 0
		}
	}
	if patch.PresetPosition != nil {
		anchor := *patch.PresetPosition
		if anchor != AnchorNone {
			if _, ok := presets[anchor]; !ok {
				return elems, fmt.Errorf("%w: %q", ErrUnknownPreset, anchor)
			}
		}
		el.PresetPosition = anchor
	}

	out := Clone(elems)
	out[idx] = el
	return out, nil
}

// Delete 按 id 删除元素。
func Delete(elems []Element, id string) ([]Element, error) {
	idx := indexOf(elems, id)
	if idx < 0 {
		return elems, fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	out := make([]Element, 0, len(elems)-1)
	out = append(out, elems[:idx]...)
	out = append(out, elems[idx+1:]...)
	return out, nil
}

// Find 返回指定 id 的元素。
func Find(elems []Element, id string) (Element, bool) {
	idx := indexOf(elems, id)
	if idx < 0 {
		return Element{}, false
	}
	return elems[idx], true
}

// Clone 返回元素切片的拷贝；nil 输入得到空切片。
func Clone(elems []Element) []Element {
	out := make([]Element, len(elems))
	copy(out, elems)
	return out
}

func indexOf(elems []Element, id string) int {
	for i := range elems {
		if elems[i].ID == id {
			return i
		}
	}
	return -1
}

func validatePosition(p Position) error {
	if p.X < 0 || p.X > 100 || p.Y < 0 || p.Y > 100 {
		return fmt.Errorf("%w: position (%v,%v) outside 0-100", ErrInvalidGeometry, p.X, p.Y)
	}
	return nil
}

func validateSize(s Size) error {
	if s.Width <= 0 || s.Width > 100 {
		return fmt.Errorf("%w: width %v outside (0,100]", ErrInvalidGeometry, s.Width)
	}
	if !s.Height.Auto && (s.Height.Percent <= 0 || s.Height.Percent > 100) {
		return fmt.Errorf("%w: height %v outside (0,100]", ErrInvalidGeometry, s.Height.Percent)
	}
	return nil
}
