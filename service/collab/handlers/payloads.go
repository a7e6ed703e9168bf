package handlers

// Inbound payload shapes. Decoded weakly typed (tools/decode), so browser
// clients that send numeric IDs still land here as strings.

type connectPayload struct {
	Token string `json:"token"`
}

type projectPayload struct {
	ProjectID string `json:"project_id"`
}

type scenePayload struct {
	ProjectID string `json:"project_id"`
	SceneData any    `json:"scene_data"`
}

type typingPayload struct {
	ProjectID string `json:"project_id"`
	SceneID   string `json:"scene_id"`
	IsTyping  bool   `json:"is_typing"`
}

type cursorPayload struct {
	ProjectID string `json:"project_id"`
	SceneID   string `json:"scene_id"`
	Position  any    `json:"position"`
}

type commentPayload struct {
	ProjectID   string `json:"project_id"`
	CommentData any    `json:"comment_data"`
}
