package worker

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/webp"

	"phPortfolio/internal/portfolio"
)

// maxImageBytes 限制单张图片的大小，data URL 会完整写入内容文档。
const maxImageBytes = 8 << 20

var (
	errUnknownImageFormat = errors.New("unknown image format")
	errImageTooLarge      = errors.New("image exceeds size limit")
)

// detectImageFormat 通过文件头判断格式。
func detectImageFormat(data []byte) (string, error) {
	if len(data) < 12 {
		return "", errUnknownImageFormat
	}
	switch {
	case data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF:
		return "jpeg", nil
	case data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47:
		return "png", nil
	case string(data[0:6]) == "GIF87a" || string(data[0:6]) == "GIF89a":
		return "gif", nil
	case string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return "webp", nil
	}
	return "", errUnknownImageFormat
}

// decodeImage 读取像素尺寸并生成 data URL。
func decodeImage(data []byte) (portfolio.ImageResult, error) {
	if len(data) > maxImageBytes {
		return portfolio.ImageResult{}, errImageTooLarge
	}
	format, err := detectImageFormat(data)
	if err != nil {
		return portfolio.ImageResult{}, err
	}

	var cfg image.Config
	reader := bytes.NewReader(data)
	switch format {
	case "jpeg":
		cfg, err = jpeg.DecodeConfig(reader)
	case "png":
		cfg, err = png.DecodeConfig(reader)
	case "gif":
		cfg, err = gif.DecodeConfig(reader)
	case "webp":
		cfg, err = webp.DecodeConfig(reader)
	}
	if err != nil {
		return portfolio.ImageResult{}, fmt.Errorf("decode %s header: %w", format, err)
	}

	src := "data:image/" + format + ";base64," + base64.StdEncoding.EncodeToString(data)
	return portfolio.ImageResult{Src: src, Width: cfg.Width, Height: cfg.Height}, nil
}
