package services

import "errors"

var (
	ErrUserNotFound     = errors.New("user does not exist")
	ErrMatchNotFound    = errors.New("match does not exist")
	ErrChatroomNotFound = errors.New("chatroom does not exist")
	ErrMessageNotFound  = errors.New("message does not exist")
	ErrNotParticipant   = errors.New("sender is not a chatroom participant")
)
