package portfolio

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound 表示目标 id 已不存在，调用方应视为无操作。
	ErrNotFound = errors.New("not found")
	// ErrValidation 表示输入被本地校验拒绝，状态不变。
	ErrValidation = errors.New("validation failed")
	// ErrLastAdmin 禁止删除最后一个管理员。
	ErrLastAdmin = fmt.Errorf("%w: cannot delete the last admin user", ErrValidation)
	// ErrDuplicateUsername 用户名需唯一。
	ErrDuplicateUsername = fmt.Errorf("%w: username already exists", ErrValidation)
	// ErrUnknownSection 表示导入数据中的未知顶层键。
	ErrUnknownSection = errors.New("unknown section")
)

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

func notFoundf(kind, id string) error {
	return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
}
