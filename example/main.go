package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	anonchat "github.com/ihsann009/anonchat"
	"github.com/ihsann009/anonchat/middleware"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	// 1. 后端配置：两个环境变量都给了才用远端 store，
	// 否则跑内存 mock（本地演示，不需要任何后端）
	var opts []anonchat.Option
	dsn := os.Getenv("ANONCHAT_MYSQL_DSN")
	redisAddr := os.Getenv("ANONCHAT_REDIS_ADDR")
	remote := dsn != "" && redisAddr != ""
	if remote {
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			log.Fatal("数据库连接失败:", err)
		}
		rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
		opts = append(opts, anonchat.WithDB(db), anonchat.WithRDB(rdb))
	} else {
		log.Println("未配置后端，使用内存 store（数据不落盘）")
	}

	// 2. 初始化 Engine（单例模式，全局只需调用一次）
	engine := anonchat.NewEngine(append(opts, anonchat.WithServiceDebug(true))...)

	// 内存模式塞几个演示话题
	if !remote {
		seedDemoTopics(engine)
	}

	// 3. 创建 Gin 路由
	r := gin.Default()

	// 设置 CORS（如果需要）
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Guest-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	// 注册 Swagger UI
	anonchat.RegisterSwagger(r, "/swagger/*any")

	// 4. WebSocket 连接路由
	// 客户端连接：ws://localhost:6789/ws?guest_id=guest_00001
	r.GET("/ws", func(c *gin.Context) {
		engine.WsServer.ServeWS(c.Writer, c.Request, c.Query("guest_id"))
	})

	// 5. API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.GinGuestMiddleware(nil))

	topicAPI := api.Group("/topic")
	{
		topicAPI.GET("/list", engine.GinHandleListTopics)
		topicAPI.POST("/create", engine.GinHandleCreateTopic)
		topicAPI.POST("/close", engine.GinHandleCloseTopic)
	}

	messageAPI := api.Group("/message")
	{
		messageAPI.GET("/list", engine.GinHandleListMessages)
		messageAPI.POST("/send", engine.GinHandleSendMessage)
	}

	if err := r.Run(":6789"); err != nil {
		log.Fatal(err)
	}
}

// seedDemoTopics 内存模式下的演示数据
func seedDemoTopics(engine *anonchat.ChatEngine) {
	ctx := context.Background()
	seeds := []struct {
		title, description, ownerID, ownerName string
	}{
		{"Welcome Lounge", "Introduce yourself!", "guest_12345", "Alex"},
		{"Tech Talk", "Discuss the latest in tech.", "guest_22222", "DevSam"},
		{"Random", "Anything goes.", "guest_99999", "Guest"},
	}
	for _, s := range seeds {
		topic, err := engine.Store.CreateTopic(ctx, s.title, s.description, s.ownerID, s.ownerName)
		if err != nil {
			log.Printf("seed %q failed: %v", s.title, err)
			continue
		}
		if topic.Title == "Welcome Lounge" {
			_, _ = engine.Store.SendMessage(ctx, topic.ID, "Hello everyone!", "guest_12345")
			_, _ = engine.Store.SendMessage(ctx, topic.ID, "Welcome to the chat.", "guest_99999")
		}
	}
}
