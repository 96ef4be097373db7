package anonchat

import "gorm.io/gorm"
import "github.com/go-redis/redis/v8"

type ServiceConfig struct {
	Debug bool
}

type Config struct {
	// DB + RDB 都配置时启用远端 store（gorm 持久化 + Redis 推送），
	// 否则使用内存 mock。选择在 NewEngine 里做一次，之后不再切换。
	DB  *gorm.DB
	RDB *redis.Client

	// IdentityDir 本机身份（guest_id / guest_name）的持久化目录。
	// 为空时用系统配置目录下的 anonchat 子目录。
	IdentityDir string

	Service ServiceConfig
}

type Option func(*Config)

func WithDB(db *gorm.DB) Option {
	return func(c *Config) {
		c.DB = db
	}
}

func WithRDB(RDB *redis.Client) Option {
	return func(c *Config) {
		c.RDB = RDB
	}
}

func WithIdentityDir(dir string) Option {
	return func(c *Config) {
		c.IdentityDir = dir
	}
}

func WithServiceDebug(debug bool) Option {
	return func(c *Config) {
		c.Service.Debug = debug
	}
}
