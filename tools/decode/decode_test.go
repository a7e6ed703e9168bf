package decode

import "testing"

type joinPayload struct {
	ProjectID string `json:"project_id"`
}

type typingPayload struct {
	ProjectID string `json:"project_id"`
	SceneID   string `json:"scene_id"`
	IsTyping  bool   `json:"is_typing"`
}

func TestPayloadWeakTyping(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want string
	}{
		{"string id", map[string]any{"project_id": "p_42"}, "p_42"},
		{"numeric id", map[string]any{"project_id": float64(42)}, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Payload[joinPayload](tt.in)
			if err != nil {
				t.Fatalf("Payload: %v", err)
			}
			if got.ProjectID != tt.want {
				t.Fatalf("project_id = %q, want %q", got.ProjectID, tt.want)
			}
		})
	}
}

func TestPayloadBoolAndExtraFields(t *testing.T) {
	got, err := Payload[typingPayload](map[string]any{
		"project_id": "p1",
		"scene_id":   "s1",
		"is_typing":  true,
		"unknown":    "ignored",
	})
	if err != nil {
		t.Fatalf("Payload: %v", err)
	}
	if !got.IsTyping || got.SceneID != "s1" {
		t.Fatalf("unexpected decode: %+v", got)
	}
}

func TestPayloadNil(t *testing.T) {
	if _, err := Payload[joinPayload](nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}

func TestReadString(t *testing.T) {
	m := map[string]any{"a": "x", "b": 1}
	if s, err := ReadString(m, "a"); err != nil || s != "x" {
		t.Fatalf("ReadString(a) = %q, %v", s, err)
	}
	if _, err := ReadString(m, "b"); err == nil {
		t.Fatal("expected type error for non-string field")
	}
	if _, err := ReadString(m, "missing"); err == nil {
		t.Fatal("expected error for missing field")
	}
}
