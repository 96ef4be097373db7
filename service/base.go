package service

import (
	"github.com/ihsann009/anonchat/store"
)

// Service 基础服务，持有选定的 store 实现和本机身份
type Service struct {
	Store    store.Store
	Identity *IdentityService

	// Debug 打开后多打一些过程日志
	Debug bool
}
