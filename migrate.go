package anonchat

import (
	"github.com/ihsann009/anonchat/models"
)

// AutoMigrate 迁移话题/消息两张表（仅远端变体需要）。
func (c *ChatEngine) AutoMigrate() error {
	return c.config.DB.AutoMigrate(
		&models.Topic{},
		&models.Message{},
	)
}
