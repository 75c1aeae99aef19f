package theme

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleDarkTwiceRestoresPair(t *testing.T) {
	orig := Default()
	once := orig.ToggleDark()
	assert.True(t, once.IsDark)
	assert.Equal(t, orig.LowValue, once.HighValue)
	assert.Equal(t, orig.HighValue, once.LowValue)

	twice := once.ToggleDark()
	assert.Equal(t, orig, twice)
}

func TestMerge(t *testing.T) {
	primary := "#ABCDEF"
	out, err := Default().Merge(Patch{PrimaryColor: &primary})
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", out.PrimaryColor)
	assert.Equal(t, Default().SecondaryColor, out.SecondaryColor)

	bad := "red"
	orig := Default()
	got, err := orig.Merge(Patch{PrimaryColor: &primary, LowValue: &bad})
	assert.True(t, errors.Is(err, ErrInvalidColor))
	assert.Equal(t, orig, got)
}

func TestMergeDarkFlagSwaps(t *testing.T) {
	dark := true
	out, err := Default().Merge(Patch{IsDark: &dark})
	require.NoError(t, err)
	assert.True(t, out.IsDark)
	assert.Equal(t, "#ffffff", out.HighValue)

	// 已是暗色时再设为 true 不应再次交换
	again, err := out.Merge(Patch{IsDark: &dark})
	require.NoError(t, err)
	assert.Equal(t, out, again)

	// 同时提交暗色与颜色时，颜色按提交值保存，不被交换
	black := "#000000"
	both, err := Default().Merge(Patch{IsDark: &dark, HighValue: &black})
	require.NoError(t, err)
	assert.True(t, both.IsDark)
	assert.Equal(t, "#000000", both.HighValue)
	assert.Equal(t, Default().HighValue, both.LowValue)
}

func TestParseColor(t *testing.T) {
	rgb, err := ParseColor("#dc2626")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 220, G: 38, B: 38}, rgb)
	assert.Equal(t, "220, 38, 38", rgb.String())

	rgb, err = ParseColor("16A34A")
	require.NoError(t, err)
	assert.Equal(t, RGB{R: 22, G: 163, B: 74}, rgb)

	for _, s := range []string{"", "#fff", "#gggggg", "#1234567"} {
		_, err := ParseColor(s)
		assert.Error(t, err, s)
	}
}

func TestCSSVariables(t *testing.T) {
	vars := Default().CSSVariables()
	byName := map[string]string{}
	for _, v := range vars {
		byName[v.Name] = v.Value
	}
	assert.Equal(t, "220, 38, 38", byName["--primary-rgb"])
	assert.Equal(t, "22, 163, 74", byName["--secondary-rgb"])
	assert.Equal(t, "55, 65, 81", byName["--high-value-rgb"])
	assert.Equal(t, "255, 255, 255", byName["--low-value-rgb"])
	assert.Equal(t, "#dc2626", byName["--primary-color"])
	assert.Equal(t, "#ffffff", byName["--low-value"])

	broken := Default()
	broken.PrimaryColor = "nope"
	for _, v := range broken.CSSVariables() {
		assert.NotEqual(t, "--primary-rgb", v.Name)
	}
}

func TestDataThemeAndStylesheet(t *testing.T) {
	assert.Equal(t, "", Default().DataTheme())
	dark := Default().ToggleDark()
	assert.Equal(t, "dark", dark.DataTheme())

	css := dark.Stylesheet()
	assert.True(t, strings.HasPrefix(css, `:root, [data-theme="dark"] {`))
	assert.Contains(t, css, "--high-value: #ffffff;")
}

func TestNormalize(t *testing.T) {
	c := Default()
	c.PrimaryColor = "ABCDEF"
	out, err := c.Normalize()
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", out.PrimaryColor)

	c.LowValue = "white"
	_, err = c.Normalize()
	assert.ErrorIs(t, err, ErrInvalidColor)
}
