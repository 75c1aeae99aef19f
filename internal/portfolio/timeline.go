package portfolio

import "fmt"

// MinTimelineBarPx 是时间轴条的最小长度。
const MinTimelineBarPx = 10

// TimelineBarPx 返回经历条的像素长度：max(duration*yearRatio, 10)。
func TimelineBarPx(duration, yearRatio int) int {
	px := duration * yearRatio
	if px < MinTimelineBarPx {
		return MinTimelineBarPx
	}
	return px
}

// DurationLabel 渲染 "1 year" / "N years"。
func DurationLabel(duration int) string {
	if duration == 1 {
		return "1 year"
	}
	return fmt.Sprintf("%d years", duration)
}
