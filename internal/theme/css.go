package theme

import "strings"

// Variable 是一个 CSS 自定义属性。
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CSSVariables 派生根元素上的自定义属性。
// 无法解析的颜色不输出对应的 -rgb 变量。
func (c Config) CSSVariables() []Variable {
	vars := make([]Variable, 0, 8)
	colors := []struct {
		name  string
		value string
	}{
		{"primary", c.PrimaryColor},
		{"secondary", c.SecondaryColor},
		{"high-value", c.HighValue},
		{"low-value", c.LowValue},
	}
	for _, col := range colors {
		if rgb, err := ParseColor(col.value); err == nil {
			vars = append(vars, Variable{Name: "--" + col.name + "-rgb", Value: rgb.String()})
		}
	}
	vars = append(vars,
		Variable{Name: "--primary-color", Value: c.PrimaryColor},
		Variable{Name: "--secondary-color", Value: c.SecondaryColor},
		Variable{Name: "--high-value", Value: c.HighValue},
		Variable{Name: "--low-value", Value: c.LowValue},
	)
	return vars
}

// DataTheme 返回根元素 data-theme 属性值，空串表示移除该属性。
func (c Config) DataTheme() string {
	if c.IsDark {
		return "dark"
	}
	return ""
}

// Stylesheet 渲染 :root 规则，暗色时附带 [data-theme="dark"] 选择器。
func (c Config) Stylesheet() string {
	var sb strings.Builder
	selector := ":root"
	if c.IsDark {
		selector = `:root, [data-theme="dark"]`
	}
	sb.WriteString(selector)
	sb.WriteString(" {\n")
	for _, v := range c.CSSVariables() {
		sb.WriteString("  ")
		sb.WriteString(v.Name)
		sb.WriteString(": ")
		sb.WriteString(v.Value)
		sb.WriteString(";\n")
	}
	sb.WriteString("}\n")
	return sb.String()
}
