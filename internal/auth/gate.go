package auth

import (
	"errors"
	"fmt"
	"strings"

	"phPortfolio/internal/portfolio"
)

// ErrInvalidCredentials 对未知用户与密码错误返回同一个错误。
var ErrInvalidCredentials = errors.New("invalid username or password")

// ErrMissingCredentials 表示用户名或密码为空。
var ErrMissingCredentials = fmt.Errorf("%w: username and password are required", portfolio.ErrValidation)

// Authenticate 在管理员列表中精确匹配用户名与密码（明文比较）。
func Authenticate(users []portfolio.AdminUser, username, password string) (portfolio.AdminUser, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return portfolio.AdminUser{}, ErrMissingCredentials
	}
	for _, u := range users {
		if u.Username == username && u.Password == password {
			return u, nil
		}
	}
	return portfolio.AdminUser{}, ErrInvalidCredentials
}
