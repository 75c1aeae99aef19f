package layout

import (
	"strconv"
	"strings"
)

// Measure 提供渲染端才知道的信息。
type Measure struct {
	// ContainerAspect 为容器 宽/高，0 表示未知。
	ContainerAspect float64
	// IntrinsicHeight 为实际渲染后测得的高度（容器高度百分比），仅用于 auto 高度。
	IntrinsicHeight *float64
}

// Box 是元素在容器中的渲染几何，全部为百分比。
// 元素以中心点对齐 (CenterX, CenterY)；Height/Top 为 nil 表示高度由内容决定，
// 此时依赖 translate(-50%,-50%) 完成纵向居中。
type Box struct {
	CenterX    float64  `json:"centerX"`
	CenterY    float64  `json:"centerY"`
	Width      float64  `json:"width"`
	Height     *float64 `json:"height"`
	Left       float64  `json:"left"`
	Top        *float64 `json:"top"`
	TranslateX float64  `json:"translateX"`
	TranslateY float64  `json:"translateY"`
	Visible    bool     `json:"visible"`
}

// Resolve 将元素的 position/size 映射为以中心为锚点的盒子。
// 预览与线上渲染必须共用此函数。
func Resolve(el Element, m Measure) Box {
	box := Box{
		CenterX:    el.Position.X,
		CenterY:    el.Position.Y,
		Width:      el.Size.Width,
		TranslateX: -50,
		TranslateY: -50,
		Visible:    true,
	}
	if el.Type == TypeImage && strings.TrimSpace(el.Src) == "" {
		box.Visible = false
	}

	box.Left = box.CenterX - box.Width/2

	if h, ok := resolveHeight(el, m); ok {
		top := box.CenterY - h/2
		box.Height = &h
		box.Top = &top
	}
	return box
}

func resolveHeight(el Element, m Measure) (float64, bool) {
	if !el.Size.Height.Auto {
		return el.Size.Height.Percent, true
	}
	if m.IntrinsicHeight != nil {
		return *m.IntrinsicHeight, true
	}
	if el.Type == TypeImage && el.NaturalWidth > 0 && el.NaturalHeight > 0 && m.ContainerAspect > 0 {
		ratio := float64(el.NaturalHeight) / float64(el.NaturalWidth)
		return el.Size.Width * m.ContainerAspect * ratio, true
	}
	return 0, false
}

// PixelBox 是 Box 在具体容器尺寸下的像素表示。
type PixelBox struct {
	Left   float64  `json:"left"`
	Top    *float64 `json:"top"`
	Width  float64  `json:"width"`
	Height *float64 `json:"height"`
}

// ToPixels 按容器像素尺寸换算。
func (b Box) ToPixels(containerW, containerH float64) PixelBox {
	pb := PixelBox{
		Left:  b.Left / 100 * containerW,
		Width: b.Width / 100 * containerW,
	}
	if b.Height != nil && b.Top != nil {
		h := *b.Height / 100 * containerH
		t := *b.Top / 100 * containerH
		pb.Height = &h
		pb.Top = &t
	}
	return pb
}

// Style 生成绝对定位所需的内联 CSS。
func (b Box) Style() string {
	var sb strings.Builder
	sb.WriteString("position:absolute;")
	sb.WriteString("left:" + pct(b.CenterX) + ";")
	sb.WriteString("top:" + pct(b.CenterY) + ";")
	sb.WriteString("width:" + pct(b.Width) + ";")
	if b.Height != nil {
		sb.WriteString("height:" + pct(*b.Height) + ";")
	} else {
		sb.WriteString("height:auto;")
	}
	sb.WriteString("transform:translate(" + pct(b.TranslateX) + "," + pct(b.TranslateY) + ");")
	return sb.String()
}

func pct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
