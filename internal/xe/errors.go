package xe

import "github.com/go-orz/orz"

var (
	ErrInvalidParams = orz.NewError(10400, "参数无效")
	ErrNotFound      = orz.NewError(10404, "数据不存在")
	ErrAlreadyExists = orz.NewError(10409, "记录已存在")
	ErrStateConflict = orz.NewError(10410, "状态冲突，禁止回退")

	ErrOversell = orz.NewError(10011, "卖出数量超过持仓数量")
)
