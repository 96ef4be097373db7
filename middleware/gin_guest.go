package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ihsann009/anonchat/service"
)

const (
	// ContextGuestIDKey gin context 里保存 guest id 的 key
	ContextGuestIDKey = "guest_id"
)

// GuestOptions 可选配置。
type GuestOptions struct {
	// HeaderKey 默认 X-Guest-ID
	HeaderKey string
	// QueryKey 默认 guest_id
	QueryKey string
	// GuestIDKey 默认 guest_id
	GuestIDKey string
}

func (o *GuestOptions) withDefaults() GuestOptions {
	if o == nil {
		return GuestOptions{HeaderKey: "X-Guest-ID", QueryKey: "guest_id", GuestIDKey: ContextGuestIDKey}
	}
	out := *o
	if out.HeaderKey == "" {
		out.HeaderKey = "X-Guest-ID"
	}
	if out.QueryKey == "" {
		out.QueryKey = "guest_id"
	}
	if out.GuestIDKey == "" {
		out.GuestIDKey = ContextGuestIDKey
	}
	return out
}

/*
	GinGuestMiddleware Gin 匿名身份中间件：

- 优先从 X-Guest-ID 请求头读取
- 如果没有，再从 query 参数读取（默认 guest_id=xxx）
- 还没有就现场生成一个临时 guest id（不持久化、不校验——身份只是归属标记，不是凭证）

使用：router.Use(middleware.GinGuestMiddleware(nil))
*/
func GinGuestMiddleware(opt *GuestOptions) gin.HandlerFunc {
	o := opt.withDefaults()
	return func(c *gin.Context) {
		guestID := strings.TrimSpace(c.GetHeader(o.HeaderKey))
		if guestID == "" {
			guestID = strings.TrimSpace(c.Query(o.QueryKey))
		}
		if guestID == "" {
			guestID = service.NewGuestID()
		}
		c.Set(o.GuestIDKey, guestID)
		c.Next()
	}
}

// GuestIDFromContext 取中间件放进去的 guest id，没有时返回空串。
func GuestIDFromContext(c *gin.Context) string {
	if v, ok := c.Get(ContextGuestIDKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
