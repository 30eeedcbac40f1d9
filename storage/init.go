package storage

import (
	"reservationapi/storage/database"
	"reservationapi/storage/mq"
	"reservationapi/storage/redis"
)

// Init 初始化存储层。Redis 和 RabbitMQ 只在配置启用时连接
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
