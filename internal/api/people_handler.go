package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"phPortfolio/internal/portfolio"
)

func (h *AdminHandler) CreateExperience(c *gin.Context) {
	id := h.store.NewID()
	h.mutate(c, "experiences", http.StatusCreated, func(content *portfolio.Content) (any, error) {
		return content.AddExperience(id), nil
	})
}

func (h *AdminHandler) UpdateExperience(c *gin.Context) {
	var patch portfolio.ExperiencePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		ParseError(c, err.Error())
		return
	}
	id := c.Param("id")
	h.mutate(c, "experiences", http.StatusOK, func(content *portfolio.Content) (any, error) {
		if err := content.UpdateExperience(id, patch); err != nil {
			return nil, err
		}
		for _, e := range content.Experiences {
			if e.ID == id {
				return e, nil
			}
		}
		return nil, nil
	})
}

func (h *AdminHandler) DeleteExperience(c *gin.Context) {
	id := c.Param("id")
	h.mutate(c, "experiences", http.StatusNoContent, func(content *portfolio.Content) (any, error) {
		return nil, content.DeleteExperience(id)
	})
}

// userView 不回传密码。
type userView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func userViews(users []portfolio.AdminUser) []userView {
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, userView{ID: u.ID, Username: u.Username})
	}
	return out
}

type userRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AdminHandler) ListUsers(c *gin.Context) {
	c.JSON(http.StatusOK, userViews(h.store.Content().AdminUsers))
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}
	id := h.store.NewID()
	h.mutate(c, "adminUsers", http.StatusCreated, func(content *portfolio.Content) (any, error) {
		u, err := content.AddUser(id, req.Username, req.Password)
		if err != nil {
			return nil, err
		}
		return userView{ID: u.ID, Username: u.Username}, nil
	})
}

// UpdateUser 同时替换用户名与密码，两者都必须非空。
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ParseError(c, err.Error())
		return
	}
	id := c.Param("id")
	h.mutate(c, "adminUsers", http.StatusOK, func(content *portfolio.Content) (any, error) {
		if err := content.UpdateUser(id, req.Username, req.Password); err != nil {
			return nil, err
		}
		return userView{ID: id, Username: req.Username}, nil
	})
}

// DeleteUser 拒绝删除最后一个管理员。
func (h *AdminHandler) DeleteUser(c *gin.Context) {
	id := c.Param("id")
	h.mutate(c, "adminUsers", http.StatusNoContent, func(content *portfolio.Content) (any, error) {
		return nil, content.DeleteUser(id)
	})
}
