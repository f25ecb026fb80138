package models

// Gender categories
const (
	GenderMale   = 1
	GenderFemale = 2
)

// SelfSenderName is substituted for the requesting user's own messages
// in chat history so renderers need no identity comparison of their own.
const SelfSenderName = "Me"
