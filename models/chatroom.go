package models

// Chatroom defines the structure for a per-match chat room. The
// message id list is append-only; message bodies live only in the
// Messages table.
type Chatroom struct {
	ChatroomID int64   `dynamodbav:"chatroomId" json:"chatroomId"`
	UserID1    int64   `dynamodbav:"userId1" json:"userId1"`
	UserID2    int64   `dynamodbav:"userId2" json:"userId2"`
	MatchID    int64   `dynamodbav:"matchId" json:"matchId"`
	MessageIDs []int64 `dynamodbav:"messageIds" json:"messageIds"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Chatroom) HasParticipant(userID int64) bool {
	return c.UserID1 == userID || c.UserID2 == userID
}

// OtherParticipant returns the other participant's id relative to userID.
func (c *Chatroom) OtherParticipant(userID int64) int64 {
	if c.UserID1 == userID {
		return c.UserID2
	}
	return c.UserID1
}

// ChatroomsTable is the DynamoDB table name for chatroom records
const ChatroomsTable = "Chatrooms"
