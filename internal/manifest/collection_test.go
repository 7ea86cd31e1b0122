package manifest

import "testing"

const collectionYAML = `id: project-planning
name: Project Planning
description: Planning prompts and agents
tags:
  - planning
items:
  - path: prompts/breakdown.prompt.md
    kind: prompt
  - path: chatmodes/architect.chatmode.md
    kind: chat-mode
  - path: agents/planner.agent.md
    kind: agent
`

func TestParseCollection(t *testing.T) {
	col, err := ParseCollection([]byte(collectionYAML))
	if err != nil {
		t.Fatalf("ParseCollection error: %v", err)
	}
	if col.ID != "project-planning" {
		t.Errorf("ID = %q", col.ID)
	}
	if len(col.Items) != 3 {
		t.Fatalf("Items len = %d, want 3", len(col.Items))
	}
	if got := col.Items[1].Subdirectory(); got != "chatmodes" {
		t.Errorf("chat-mode subdirectory = %q, want chatmodes", got)
	}
	if got := len(col.ItemsByKind("agent")); got != 1 {
		t.Errorf("ItemsByKind(agent) len = %d, want 1", got)
	}
}

func TestParseCollection_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no id", "name: x\ndescription: y\nitems:\n  - path: a.md\n    kind: prompt\n"},
		{"no items", "id: x\nname: x\ndescription: y\n"},
		{"item without kind", "id: x\nname: x\ndescription: y\nitems:\n  - path: a.md\n"},
		{"item without path", "id: x\nname: x\ndescription: y\nitems:\n  - kind: prompt\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseCollection([]byte(tt.yaml)); err == nil {
				t.Errorf("expected error for %s", tt.name)
			}
		})
	}
}

func TestCollectionItem_UnknownKindDefaultsToPrompts(t *testing.T) {
	it := CollectionItem{Path: "x.md", Kind: "mystery"}
	if got := it.Subdirectory(); got != "prompts" {
		t.Errorf("Subdirectory = %q, want prompts", got)
	}
}
