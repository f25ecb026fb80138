package models

// Match defines the structure for a recorded match between two users.
// Participants are stored as user ids, never as object references;
// resolution always goes through the UserStore.
type Match struct {
	MatchID            int64          `dynamodbav:"matchId" json:"matchId"`
	UserID1            int64          `dynamodbav:"userId1" json:"userId1"`
	UserID2            int64          `dynamodbav:"userId2" json:"userId2"`
	DescriptionToUser1 string         `dynamodbav:"descriptionToUser1" json:"descriptionToUser1"`
	DescriptionToUser2 string         `dynamodbav:"descriptionToUser2" json:"descriptionToUser2"`
	IsLiked            bool           `dynamodbav:"isLiked" json:"isLiked"`
	MatchScore         int            `dynamodbav:"matchScore" json:"matchScore"`
	GameScores         map[string]int `dynamodbav:"gameScores" json:"gameScores"`
	ChatroomID         *int64         `dynamodbav:"chatroomId,omitempty" json:"chatroomId,omitempty"`
	CreatedAt          string         `dynamodbav:"createdAt" json:"createdAt"`
}

// HasParticipant reports whether userID is one of the two participants.
func (m *Match) HasParticipant(userID int64) bool {
	return m.UserID1 == userID || m.UserID2 == userID
}

// TargetUser returns the other participant's id relative to userID.
func (m *Match) TargetUser(userID int64) int64 {
	if m.UserID1 == userID {
		return m.UserID2
	}
	return m.UserID1
}

// DescriptionFor returns the match description addressed to userID.
func (m *Match) DescriptionFor(userID int64) string {
	if m.UserID1 == userID {
		return m.DescriptionToUser1
	}
	return m.DescriptionToUser2
}

// MatchInfo is the requester-relative view of a match returned by
// MatchStore.GetMatchInfo.
type MatchInfo struct {
	MatchID      int64  `json:"matchId"`
	TargetUserID int64  `json:"targetUserId"`
	Description  string `json:"description"`
	IsLiked      bool   `json:"isLiked"`
	MatchScore   int    `json:"matchScore"`
	ChatroomID   *int64 `json:"chatroomId,omitempty"`
}

// MatchCandidate is a candidate pair returned by the external
// recommendation service.
type MatchCandidate struct {
	UserID1    int64  `json:"user_id_1"`
	UserID2    int64  `json:"user_id_2"`
	Reason1    string `json:"reason_1"`
	Reason2    string `json:"reason_2"`
	MatchScore int    `json:"match_score"`
}

// MatchesTable is the DynamoDB table name for match records
const MatchesTable = "Matches"
