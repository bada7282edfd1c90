package models

// ChatMessageModel is a chatbot transcript row. One row is written for every
// accepted request, whatever the upstream call produced.
type ChatMessageModel struct {
	Base
	IP               string `json:"-"                 gorm:"index"`
	UserMessage      string `json:"user_message"      gorm:"type:text;not null"`
	AssistantMessage string `json:"assistant_message" gorm:"type:text"`
}

func (ChatMessageModel) TableName() string { return "chat_messages" }
