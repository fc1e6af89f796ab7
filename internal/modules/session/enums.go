//go:generate go run github.com/abice/go-enum --file=$GOFILE --names --nocase

package session

// Step represents the step an operator's multi-step dialogue is waiting on
// ENUM(awaiting_password,awaiting_linkage_name,awaiting_resources,awaiting_moderation_chat,awaiting_publication_channel,delete_linkage,select_linkage_to_edit,select_edit_action,awaiting_resources_to_add,awaiting_resource_to_remove,awaiting_prompt_change)
type Step string
