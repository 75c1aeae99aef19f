package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	backupFilename = "portfolio-backup.json"
	maxImportBytes = 32 << 20
)

// Export 以附件形式下载 {theme, portfolioData} 备份。
func (h *AdminHandler) Export(c *gin.Context) {
	c.Header("Content-Disposition", `attachment; filename="`+backupFilename+`"`)
	c.IndentedJSON(http.StatusOK, h.store.Export())
}

// Import 整体校验后一次提交；格式错误时什么都不改变。
func (h *AdminHandler) Import(c *gin.Context) {
	raw, err := readImportBody(c)
	if err != nil {
		ParseError(c, err.Error())
		return
	}
	if err := h.store.Import(c.Request.Context(), raw); err != nil {
		RespondError(c, err)
		return
	}
	th, content := h.store.Snapshot()
	content.AdminUsers = nil
	c.JSON(http.StatusOK, gin.H{"theme": th, "portfolioData": content})
}

// readImportBody 同时接受 multipart 文件字段 file 与原始 JSON 请求体。
func readImportBody(c *gin.Context) ([]byte, error) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxImportBytes))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
}

// Reset 删除已保存的数据并恢复默认内容。
func (h *AdminHandler) Reset(c *gin.Context) {
	if err := h.store.Reset(c.Request.Context()); err != nil {
		RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
