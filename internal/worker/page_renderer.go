package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Snapshotter 打开一个页面并返回 JPEG 截图。
type Snapshotter interface {
	Capture(ctx context.Context, targetURL string) ([]byte, error)
}

// RodSnapshotter 用无头 Chromium 渲染前端预览页。
type RodSnapshotter struct {
	logger  *slog.Logger
	quality int
	width   int
}

func NewRodSnapshotter(logger *slog.Logger, width int) *RodSnapshotter {
	if width <= 0 {
		width = 1280
	}
	return &RodSnapshotter{logger: logger, quality: 80, width: width}
}

// Capture 等待 #preview-ready 出现后截取 #preview-root，找不到时截取整页。
func (s *RodSnapshotter) Capture(ctx context.Context, targetURL string) ([]byte, error) {
	page, cleanup, err := s.render(ctx, targetURL)
	defer cleanup()
	if err != nil {
		return nil, err
	}
	return s.screenshot(page)
}

func (s *RodSnapshotter) render(ctx context.Context, targetURL string) (_ *rod.Page, cleanup func(), err error) {
	cleanup = func() {}

	s.logger.Info("Worker: Navigating to frontend preview page...", slog.String("url", targetURL))

	launch := launcher.New().
		Headless(true).
		NoSandbox(true)
	defer func() {
		if err != nil {
			launch.Cleanup()
		}
	}()

	if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, cleanup, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().Context(ctx).ControlURL(browserURL).Timeout(90 * time.Second)
	if err := browser.Connect(); err != nil {
		return nil, cleanup, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: targetURL})
	if err != nil {
		_ = browser.Close()
		return nil, cleanup, fmt.Errorf("open page: %w", err)
	}
	cleanup = func() {
		_ = page.Close()
		_ = browser.Close()
		launch.Cleanup()
	}

	// 16:9 视口，与公开页的容器比例一致
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             s.width,
		Height:            s.width * 9 / 16,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, cleanup, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.WaitLoad(); err != nil {
		return nil, cleanup, fmt.Errorf("wait page load: %w", err)
	}

	s.logger.Info("Worker: Waiting for frontend render signal (#preview-ready)...")
	if _, err := page.Timeout(30 * time.Second).Element("#preview-ready"); err != nil {
		return nil, cleanup, fmt.Errorf("wait preview ready: %w", err)
	}

	// 额外等待 WebFont 就绪，避免回退字体度量导致排版差异
	if _, evalErr := page.Timeout(5 * time.Second).Eval(`() => {
	  if (document && document.fonts && document.fonts.ready) {
	    return Promise.race([
	      document.fonts.ready.then(() => true),
	      new Promise((resolve) => setTimeout(() => resolve(true), 3000))
	    ]);
	  }
	  return true;
	}`); evalErr != nil {
		s.logger.Warn("Worker: document.fonts.ready wait failed, continue", slog.Any("error", evalErr))
	}

	if err := page.AddStyleTag("", previewCleanupCSS); err != nil {
		return nil, cleanup, fmt.Errorf("inject cleanup css: %w", err)
	}

	if err := page.WaitIdle(5 * time.Second); err != nil {
		s.logger.Warn("Worker: wait idle failed, continue", slog.Any("error", err))
	}
	s.logger.Info("Worker: Render signal received.")
	return page, cleanup, nil
}

func (s *RodSnapshotter) screenshot(page *rod.Page) ([]byte, error) {
	element, err := page.Timeout(5 * time.Second).Element("#preview-root")
	if err == nil {
		if data, shotErr := element.Screenshot(proto.PageCaptureScreenshotFormatJpeg, s.quality); shotErr == nil {
			return data, nil
		}
	}

	quality := s.quality
	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: &quality,
	})
	if err != nil {
		return nil, fmt.Errorf("page screenshot: %w", err)
	}
	return data, nil
}

const previewCleanupCSS = `
  #nextjs-devtools,
  [data-nextjs-devtools],
  [data-next-devtools],
  #__next-build-watcher,
  #__next-dev-overlay,
  nextjs-portal {
    display: none !important;
  }
  html, body {
    margin: 0 !important;
    padding: 0 !important;
  }
  * {
    animation: none !important;
    transition: none !important;
  }
`
