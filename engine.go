package anonchat

import (
	"log"
	"sync"

	"github.com/ihsann009/anonchat/service"
	"github.com/ihsann009/anonchat/store"
)

type ChatEngine struct {
	config *Config

	// Store 启动时选定的存储实现（remote / memory），之后不再切换
	Store store.Store

	Identity         *service.IdentityService
	DirectoryService *service.DirectoryService
	RoomService      *service.RoomService
	WsServer         *WsServer
}

var (
	Instance *ChatEngine
	once     sync.Once
)

// NewEngine 创建实例
// 使用选项模式传入配置，Option回调
func NewEngine(opts ...Option) *ChatEngine {
	once.Do(func() {
		c := &Config{}
		for _, opt := range opts {
			opt(c)
		}

		Instance = &ChatEngine{config: c}

		// 选定 store 变体（唯一一处判断后端是否配置）
		Instance.Store = store.New(c.DB, c.RDB)

		// 远端变体需要建表
		if c.DB != nil && c.RDB != nil {
			if err := Instance.AutoMigrate(); err != nil {
				log.Printf("AutoMigrate failed: %v", err)
			}
		}

		Instance.Identity = service.NewIdentityService(c.IdentityDir)

		baseService := &service.Service{
			Store:    Instance.Store,
			Identity: Instance.Identity,
			Debug:    c.Service.Debug,
		}
		Instance.DirectoryService = service.NewDirectoryService(baseService)
		Instance.RoomService = service.NewRoomService(baseService)

		// 话题目录同步：HTTP 接口从这份快照读列表
		if err := Instance.DirectoryService.Start(); err != nil {
			log.Printf("directory sync failed to start: %v", err)
		}

		// WS 推送网关
		Instance.WsServer = NewWsServer()
		Instance.bindWsHandlers()
		go Instance.WsServer.Run()
	})
	return Instance
}

// GuestID 本机 guest 身份（懒生成）。
func (c *ChatEngine) GuestID() string {
	return c.Identity.GetOrCreateGuestID()
}

// Shutdown 停止同步、结束 WS 网关并释放 store 资源。
func (c *ChatEngine) Shutdown() {
	c.DirectoryService.Stop()
	c.WsServer.Stop()
	if err := c.Store.Close(); err != nil {
		log.Printf("store close failed: %v", err)
	}
}
