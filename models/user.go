package models

// User defines the structure for user records. The identifier is
// externally supplied (the messenger account id) rather than
// sequencer-assigned.
type User struct {
	UserID             int64   `dynamodbav:"userId" json:"userId"`
	DisplayName        string  `dynamodbav:"displayName" json:"displayName"`
	Gender             int     `dynamodbav:"gender" json:"gender"`
	Age                *int    `dynamodbav:"age,omitempty" json:"age,omitempty"`
	TargetGender       *int    `dynamodbav:"targetGender,omitempty" json:"targetGender,omitempty"`
	PersonalitySummary string  `dynamodbav:"personalitySummary,omitempty" json:"personalitySummary,omitempty"`
	MatchIDs           []int64 `dynamodbav:"matchIds" json:"matchIds"`
	BlockedUserIDs     []int64 `dynamodbav:"blockedUserIds" json:"blockedUserIds"`
}

// HasMatch reports whether the given match id is in the user's match set.
func (u *User) HasMatch(matchID int64) bool {
	for _, id := range u.MatchIDs {
		if id == matchID {
			return true
		}
	}
	return false
}

// UsersTable is the DynamoDB table name for user records
const UsersTable = "Users"
