package service

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	guestIDKey   = "guest_id"
	guestNameKey = "guest_name"
)

// IdentityService 本机匿名身份。
//
// guest id 在首次访问时生成一次，之后一直复用；格式是 guest_ 前缀加
// 5 位补零随机数字，只是展示/归属标记，不做防碰撞也不做鉴权。
// 持久化是目录下两个纯文本文件（guest_id / guest_name）；目录不可用时
// 退化为本次进程内的内存值。
type IdentityService struct {
	dir string

	mu      sync.Mutex
	cache   map[string]string
	persist bool
}

// NewIdentityService 创建身份服务。dir 为空时用系统配置目录下的 anonchat 子目录。
func NewIdentityService(dir string) *IdentityService {
	s := &IdentityService{cache: make(map[string]string)}

	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			log.Printf("identity: no user config dir, falling back to in-memory identity: %v", err)
			return s
		}
		dir = filepath.Join(base, "anonchat")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("identity: cannot create %s, falling back to in-memory identity: %v", dir, err)
		return s
	}

	s.dir = dir
	s.persist = true
	return s
}

// NewGuestID 生成一个新的 guest id（guest_00000 ~ guest_99999）。
func NewGuestID() string {
	return fmt.Sprintf("guest_%05d", rand.Intn(100000))
}

// load 先查内存缓存，再读文件（调用方持有 s.mu）。
func (s *IdentityService) load(key string) string {
	if v, ok := s.cache[key]; ok {
		return v
	}
	if !s.persist {
		return ""
	}
	b, err := os.ReadFile(filepath.Join(s.dir, key))
	if err != nil {
		return ""
	}
	v := strings.TrimSpace(string(b))
	s.cache[key] = v
	return v
}

// save 总是写缓存，文件写失败只降级不报错（调用方持有 s.mu）。
func (s *IdentityService) save(key, value string) {
	s.cache[key] = value
	if !s.persist {
		return
	}
	if err := os.WriteFile(filepath.Join(s.dir, key), []byte(value), 0o644); err != nil {
		log.Printf("identity: persist %s failed, keeping value in memory: %v", key, err)
	}
}

// GetOrCreateGuestID 返回已持久化的 guest id，没有则生成并持久化后返回。
// 同一次安装内重复调用返回同一个值。
func (s *IdentityService) GetOrCreateGuestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id := s.load(guestIDKey); id != "" {
		return id
	}
	id := NewGuestID()
	s.save(guestIDKey, id)
	return id
}

// GuestName 返回持久化的展示昵称，可能为空。
func (s *IdentityService) GuestName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(guestNameKey)
}

// SetGuestName 持久化展示昵称。长度截断由调用方负责。
func (s *IdentityService) SetGuestName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(guestNameKey, name)
}
