package models

// Message is immutable once persisted; re-saving an existing id is a
// no-op, never an update.
type Message struct {
	MessageID  int64  `dynamodbav:"messageId" json:"messageId"`
	Content    string `dynamodbav:"content" json:"content"`
	SentAt     string `dynamodbav:"sentAt" json:"sentAt"`
	SenderID   int64  `dynamodbav:"senderId" json:"senderId"`
	ReceiverID int64  `dynamodbav:"receiverId" json:"receiverId"`
	ChatroomID int64  `dynamodbav:"chatroomId" json:"chatroomId"`
}

// ChatHistoryEntry is one rendered line of chatroom history. SenderName
// is the SelfSenderName sentinel for the requesting user's own
// messages.
type ChatHistoryEntry struct {
	Content    string `json:"content"`
	SentAt     string `json:"sentAt"`
	SenderID   int64  `json:"senderId"`
	SenderName string `json:"senderName"`
}

// MessagesTable is the DynamoDB table name for message records
const MessagesTable = "Messages"
