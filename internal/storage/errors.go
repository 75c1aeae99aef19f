package storage

import (
	"errors"
	"net/http"

	"github.com/minio/minio-go/v7"
)

// ErrObjectNotFound 表示上传对象已被清理或从未写入。
var ErrObjectNotFound = errors.New("object not found")

// IsNoSuchKey 对 ErrObjectNotFound 以及 MinIO 的 NoSuchKey/404 响应返回 true。
func IsNoSuchKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrObjectNotFound) {
		return true
	}
	var resp minio.ErrorResponse
	if !errors.As(err, &resp) {
		return false
	}
	return resp.Code == "NoSuchKey" || resp.Code == "NotFound" || resp.StatusCode == http.StatusNotFound
}
