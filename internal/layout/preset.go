package layout

import (
	"errors"
	"fmt"
	"strings"
)

// Anchor 是九个命名预设位置之一。
type Anchor string

const (
	AnchorNone         Anchor = ""
	AnchorTopLeft      Anchor = "top-left"
	AnchorTopCenter    Anchor = "top-center"
	AnchorTopRight     Anchor = "top-right"
	AnchorCenterLeft   Anchor = "center-left"
	AnchorCenterCenter Anchor = "center-center"
	AnchorCenterRight  Anchor = "center-right"
	AnchorBottomLeft   Anchor = "bottom-left"
	AnchorBottomCenter Anchor = "bottom-center"
	AnchorBottomRight  Anchor = "bottom-right"
)

var ErrUnknownPreset = errors.New("unknown preset position")

var presets = map[Anchor]Position{
	AnchorTopLeft:      {X: 0, Y: 0},
	AnchorTopCenter:    {X: 50, Y: 0},
	AnchorTopRight:     {X: 100, Y: 0},
	AnchorCenterLeft:   {X: 0, Y: 50},
	AnchorCenterCenter: {X: 50, Y: 50},
	AnchorCenterRight:  {X: 100, Y: 50},
	AnchorBottomLeft:   {X: 0, Y: 100},
	AnchorBottomCenter: {X: 50, Y: 100},
	AnchorBottomRight:  {X: 100, Y: 100},
}

// Anchors 按行优先顺序列出全部预设，供编辑器展示。
func Anchors() []Anchor {
	return []Anchor{
		AnchorTopLeft, AnchorTopCenter, AnchorTopRight,
		AnchorCenterLeft, AnchorCenterCenter, AnchorCenterRight,
		AnchorBottomLeft, AnchorBottomCenter, AnchorBottomRight,
	}
}

// ParseAnchor 解析预设名称（忽略大小写与首尾空白）。
func ParseAnchor(name string) (Anchor, error) {
	a := Anchor(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := presets[a]; !ok {
		return AnchorNone, fmt.Errorf("%w: %q", ErrUnknownPreset, name)
	}
	return a, nil
}

// PresetPosition 返回预设对应的规范坐标。
func PresetPosition(a Anchor) (Position, bool) {
	p, ok := presets[a]
	return p, ok
}

// ApplyPreset 同时写入 position 与 presetPosition。
// 之后的自由拖动不会被预设约束。
func ApplyPreset(elems []Element, id string, anchor Anchor) ([]Element, error) {
	pos, ok := presets[anchor]
	if !ok {
		return elems, fmt.Errorf("%w: %q", ErrUnknownPreset, anchor)
	}
	idx := indexOf(elems, id)
	if idx < 0 {
		return elems, fmt.Errorf("%w: %s", ErrElementNotFound, id)
	}
	out := Clone(elems)
	out[idx].Position = pos
	out[idx].PresetPosition = anchor
	return out, nil
}
