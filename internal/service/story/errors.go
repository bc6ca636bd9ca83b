package story

import (
	"errors"
	"fmt"
)

// ErrConnectionUnavailable 表示存储客户端初始化失败，远程操作被禁用。
var ErrConnectionUnavailable = errors.New("storage connection not available")

// RemoteError wraps a failed write or read against a storage table.
type RemoteError struct {
	Op    string
	Table string
	Err   error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Table, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
