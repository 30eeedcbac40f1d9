package model

import (
	"strings"
)

// ChannelKind 通知渠道，未知名称统一归为 unsupported
type ChannelKind string

const (
	ChannelEmail       ChannelKind = "email"
	ChannelSMS         ChannelKind = "sms"
	ChannelUnsupported ChannelKind = "unsupported"
)

// ParseChannelKind 根据联系方式名称解析渠道，大小写不敏感
func ParseChannelKind(name string) ChannelKind {
	switch {
	case strings.EqualFold(name, ContactMethodEmail):
		return ChannelEmail
	case strings.EqualFold(name, ContactMethodSMS):
		return ChannelSMS
	default:
		return ChannelUnsupported
	}
}

// contactMethodPriority 多个联系方式时的优先顺序，数值越小越优先
var contactMethodPriority = map[string]int{
	strings.ToLower(ContactMethodEmail): 0,
	strings.ToLower(ContactMethodSMS):   1,
	strings.ToLower(ContactMethodPhone): 2,
}

// ContactMethodRank 返回名称的优先级，未登记的名称排在最后
func ContactMethodRank(name string) int {
	if rank, ok := contactMethodPriority[strings.ToLower(name)]; ok {
		return rank
	}
	return len(contactMethodPriority)
}

// NotificationMessage 投递到消息队列的通知
type NotificationMessage struct {
	MessageID     string      `json:"message_id"`
	Channel       ChannelKind `json:"channel"`
	ReservationID int64       `json:"reservation_id"`
	Recipient     string      `json:"recipient"`
	RecipientName string      `json:"recipient_name,omitempty"`
	Subject       string      `json:"subject,omitempty"`
	Body          string      `json:"body"`
	CreatedAt     string      `json:"created_at"`
}
