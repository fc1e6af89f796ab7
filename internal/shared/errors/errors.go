package errors

import "errors"

var (
	ErrMissingBotToken = errors.New("telegram_bot_token is required")
	ErrMissingPassword = errors.New("operator_password is required")

	ErrStorage           = errors.New("storage failure")
	ErrMalformedDocument = errors.New("malformed store document")

	ErrLinkageNotFound       = errors.New("linkage not found")
	ErrLinkageExists         = errors.New("linkage already exists")
	ErrItemNotFound          = errors.New("pending item not found")
	ErrUnauthorizedModerator = errors.New("chat is not the moderation chat of this linkage")
	ErrNoResources           = errors.New("no resources provided")
	ErrNotChannelAdmin       = errors.New("bot is not an administrator of the channel")
)
