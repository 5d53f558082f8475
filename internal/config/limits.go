package config

const (
	// MaxDraftTitleLength is the maximum length for draft titles.
	// Titles also become filenames, so they stay well below path limits.
	MaxDraftTitleLength = 200

	// MaxDraftContentLength is the maximum size of draft content accepted
	// from a request or tool call.
	MaxDraftContentLength = 500_000

	// MaxChatMessageLength is the maximum length of a single chat message.
	MaxChatMessageLength = 20_000

	// MaxListLimit caps list endpoints and the documents snapshot.
	MaxListLimit = 200
)
