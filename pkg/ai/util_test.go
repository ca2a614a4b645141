package ai

import (
	"testing"
)

type edgesOut struct {
	Edges []struct {
		Source   string `json:"source"`
		Relation string `json:"relation"`
		Target   string `json:"target"`
		Evidence string `json:"evidence"`
	} `json:"edges"`
}

func TestUnmarshalFlexible(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantEdges int
		wantErr   bool
	}{
		{
			name:      "valid json",
			input:     `{"edges": [{"source": "C001", "relation": "is_a", "target": "C002", "evidence": "a b c d"}]}`,
			wantEdges: 1,
		},
		{
			name:      "fenced json",
			input:     "```json\n{\"edges\": []}\n```",
			wantEdges: 0,
		},
		{
			name:      "double encoded",
			input:     `"{\"edges\": [{\"source\": \"C001\", \"relation\": \"causes\", \"target\": \"C003\", \"evidence\": \"w x y z\"}]}"`,
			wantEdges: 1,
		},
		{
			name:      "unquoted keys repaired",
			input:     `{edges: [{source: "C001", relation: "uses", target: "C002", evidence: "one two three four"}]}`,
			wantEdges: 1,
		},
		{
			name:      "json embedded in prose",
			input:     `Here are the extracted edges: {"edges": [{"source": "C002", "relation": "part_of", "target": "C001", "evidence": "quoted words go here"}]} Hope that helps!`,
			wantEdges: 1,
		},
		{
			name:      "duplicate leading brace",
			input:     `{{"edges": []}`,
			wantEdges: 0,
		},
		{
			name:    "no json at all",
			input:   "I could not find any relations in this segment.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out edgesOut
			err := UnmarshalFlexible(tt.input, &out)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if len(out.Edges) != tt.wantEdges {
				t.Errorf("got %d edges, want %d", len(out.Edges), tt.wantEdges)
			}
		})
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"a": 1}`, `{"a": 1}`},
		{"plain fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"language fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  ```json\n{}\n```  ", "{}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripCodeFences(tt.input); got != tt.want {
				t.Errorf("StripCodeFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare object", `{"a": 1}`, `{"a": 1}`},
		{"leading prose", `the result is {"a": 1} done`, `{"a": 1}`},
		{"nested objects", `{"a": {"b": 2}} trailing`, `{"a": {"b": 2}}`},
		{"brace inside string", `{"a": "}"} extra`, `{"a": "}"}`},
		{"unbalanced", `{"a": 1`, ""},
		{"no object", "nothing here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractFirstJSONObject(tt.input); got != tt.want {
				t.Errorf("ExtractFirstJSONObject() = %q, want %q", got, tt.want)
			}
		})
	}
}
