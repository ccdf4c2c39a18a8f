package dto

import "checklistapp/model"

// Messages exchanged on a live view socket.
const (
	MessageView      = "view"
	MessageAlert     = "alert"
	MessageAck       = "ack"
	MessageConnected = "connected"
)

// ViewMessage is sent by the server.
type ViewMessage struct {
	Type       string      `json:"type"`
	View       string      `json:"view,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	MutationID string      `json:"mutationId,omitempty"`
	RequestID  string      `json:"requestId,omitempty"`
	Alert      interface{} `json:"alert,omitempty"`
}

// MutationRequest is sent by the client to change a task optimistically.
type MutationRequest struct {
	RequestID string                `json:"requestId"`
	Op        string                `json:"op" validate:"required,oneof=toggle_task update_task toggle_item edit_item add_item remove_item reorder_items"`
	TaskID    string                `json:"taskId" validate:"required"`
	ItemID    string                `json:"itemId"`
	Item      *ChecklistItemRequest `json:"item"`
	Edit      *ChecklistItemEdit    `json:"edit"`
	Patch     *model.TaskPatch      `json:"patch"`
	ItemIDs   []string              `json:"itemIds"`
}
