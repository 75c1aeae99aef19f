package contact

import (
	"fmt"
	"net/url"
	"strings"

	"phPortfolio/internal/portfolio"
)

const gmailComposeBase = "https://mail.google.com/mail/?view=cm&fs=1"

// Message 是访客在联系表单中填写的内容。
type Message struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func (m Message) Validate() error {
	if strings.TrimSpace(m.Name) == "" || strings.TrimSpace(m.Email) == "" || strings.TrimSpace(m.Message) == "" {
		return fmt.Errorf("%w: name, email and message are required", portfolio.ErrValidation)
	}
	return nil
}

// ComposeURL 生成预填好的 Gmail 写信链接，正文以 "From: name (email)" 开头。
func ComposeURL(to string, m Message) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", fmt.Errorf("%w: recipient address is empty", portfolio.ErrValidation)
	}
	if err := m.Validate(); err != nil {
		return "", err
	}
	body := fmt.Sprintf("From: %s (%s)\n\n%s", m.Name, m.Email, m.Message)
	return gmailComposeBase +
		"&to=" + escape(to) +
		"&su=" + escape(m.Subject) +
		"&body=" + escape(body), nil
}

// escape 与浏览器 encodeURIComponent 一致地把空格编码为 %20。
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
