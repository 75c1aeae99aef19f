package theme

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidColor = errors.New("invalid color")

// Config 是站点主题：四个颜色与暗色开关。
type Config struct {
	IsDark         bool   `json:"isDark"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	HighValue      string `json:"highValue"`
	LowValue       string `json:"lowValue"`
}

// Default 返回首次加载时使用的主题。
func Default() Config {
	return Config{
		IsDark:         false,
		PrimaryColor:   "#dc2626",
		SecondaryColor: "#16a34a",
		HighValue:      "#374151",
		LowValue:       "#ffffff",
	}
}

// Patch 描述管理端的一次主题修改，nil 字段保持不变。
type Patch struct {
	IsDark         *bool   `json:"isDark,omitempty"`
	PrimaryColor   *string `json:"primaryColor,omitempty"`
	SecondaryColor *string `json:"secondaryColor,omitempty"`
	HighValue      *string `json:"highValue,omitempty"`
	LowValue       *string `json:"lowValue,omitempty"`
}

// Merge 应用 patch，颜色非法时返回错误且不修改 c。
// 先切换暗色模式，再写入显式提交的颜色，提交的值原样保存。
func (c Config) Merge(p Patch) (Config, error) {
	out := c
	if p.IsDark != nil && *p.IsDark != out.IsDark {
		out = out.ToggleDark()
	}
	for _, f := range []struct {
		name string
		src  *string
		dst  *string
	}{
		{"primaryColor", p.PrimaryColor, &out.PrimaryColor},
		{"secondaryColor", p.SecondaryColor, &out.SecondaryColor},
		{"highValue", p.HighValue, &out.HighValue},
		{"lowValue", p.LowValue, &out.LowValue},
	} {
		if f.src == nil {
			continue
		}
		norm, err := NormalizeColor(*f.src)
		if err != nil {
			return c, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = norm
	}
	return out, nil
}

// ToggleDark 切换暗色模式，并交换 highValue/lowValue（不重新取色）。
func (c Config) ToggleDark() Config {
	c.IsDark = !c.IsDark
	c.HighValue, c.LowValue = c.LowValue, c.HighValue
	return c
}

// Validate 检查所有颜色格式。
func (c Config) Validate() error {
	for name, v := range map[string]string{
		"primaryColor":   c.PrimaryColor,
		"secondaryColor": c.SecondaryColor,
		"highValue":      c.HighValue,
		"lowValue":       c.LowValue,
	} {
		if _, err := ParseColor(v); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// RGB 是颜色的十进制分量。
type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("%d, %d, %d", c.R, c.G, c.B)
}

// ParseColor 解析 #rrggbb 或 rrggbb（不区分大小写）。
func ParseColor(s string) (RGB, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// NormalizeColor 统一为小写 #rrggbb。
func NormalizeColor(s string) (string, error) {
	if _, err := ParseColor(s); err != nil {
		return "", err
	}
	return "#" + strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "#")), nil
}

// Normalize 校验并统一所有颜色的写法。
func (c Config) Normalize() (Config, error) {
	return c.Merge(Patch{
		PrimaryColor:   &c.PrimaryColor,
		SecondaryColor: &c.SecondaryColor,
		HighValue:      &c.HighValue,
		LowValue:       &c.LowValue,
	})
}
