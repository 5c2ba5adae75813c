package techvocab

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExtract(t *testing.T) {
	t.Parallel()

	m := New(Default())

	tests := []struct {
		name   string
		input  string
		expect []string
	}{
		{
			name:   "label line",
			input:  "Technologies: Python, React, Docker",
			expect: []string{"docker", "python", "react"},
		},
		{
			name:   "aliases fold into one token",
			input:  "Golang services on K8s with Postgres; we also use Go and PostgreSQL",
			expect: []string{"go", "kubernetes", "postgresql"},
		},
		{
			name:   "dotted framework names",
			input:  "Node.js, Vue.js, Next.js and ASP.NET",
			expect: []string{"dotnet", "nextjs", "node", "vue"},
		},
		{
			name:   "symbols are part of the term",
			input:  "C++, C# and F# developers",
			expect: []string{"c#", "c++", "f#"},
		},
		{
			name:   "whole words only",
			input:  "Javascript gurus, gopher, sqlalchemy, reactive",
			expect: []string{"javascript"},
		},
		{
			name:   "multi word terms",
			input:  "Machine Learning with Ruby on Rails",
			expect: []string{"machine learning", "rails"},
		},
		{
			name:   "nested terms count once",
			input:  "React Native, Ruby on Rails, Go",
			expect: []string{"go", "rails", "react native"},
		},
		{
			name:   "hyphenated alias masks inner term",
			input:  "react-native and plain React",
			expect: []string{"react", "react native"},
		},
		{
			name:   "outer term alone",
			input:  "Ruby and Rails",
			expect: []string{"rails", "ruby"},
		},
		{
			name:   "unknown text",
			input:  "We sell shoes.",
			expect: []string{},
		},
		{
			name:   "empty",
			input:  "",
			expect: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tt.expect, m.Extract(tt.input)); diff != "" {
				t.Fatalf("unexpected tokens (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExtractDropsNumericTokens(t *testing.T) {
	m := New(NewVocabulary([]string{"python", "3.11", "10+"}, nil))

	got := m.Extract("Python 3.11, 10+ years")
	if diff := cmp.Diff([]string{"python"}, got); diff != "" {
		t.Fatalf("unexpected tokens (-want +got):\n%s", diff)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	m := New(Default())
	text := "AWS, GCP, Azure, Terraform, Kubernetes, Docker, Go, Rust, TypeScript"

	first := m.Extract(text)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if diff := cmp.Diff(first, m.Extract(text)); diff != "" {
				t.Errorf("non deterministic output (-first +got):\n%s", diff)
			}
		}()
	}
	wg.Wait()
}

func TestVocabularyWithDoesNotMutateReceiver(t *testing.T) {
	base := Default()
	extended := base.With([]string{"Zig"}, map[string]string{"ziglang": "zig"})

	if got := New(base).Extract("Zig and ziglang"); len(got) != 0 {
		t.Fatalf("base vocabulary changed: %v", got)
	}
	if diff := cmp.Diff([]string{"zig"}, New(extended).Extract("Zig and ziglang")); diff != "" {
		t.Fatalf("unexpected tokens (-want +got):\n%s", diff)
	}
}

func TestCanonicalIsIdempotent(t *testing.T) {
	m := New(Default())

	tokens := m.Extract("React Native, node.js, Postgres, Machine Learning")
	if diff := cmp.Diff(tokens, m.Canonical(tokens)); diff != "" {
		t.Fatalf("canonical changed tokens (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff([]string{"go", "kubernetes"}, m.Canonical([]string{"golang", "k8s", "unknown"})); diff != "" {
		t.Fatalf("unexpected canonical tokens (-want +got):\n%s", diff)
	}
}

func TestOverlap(t *testing.T) {
	got := Overlap([]string{"react", "python", "docker"}, []string{"python", "docker", "kubernetes"})
	if diff := cmp.Diff([]string{"docker", "python"}, got); diff != "" {
		t.Fatalf("unexpected overlap (-want +got):\n%s", diff)
	}

	if got := Overlap(nil, []string{"go"}); len(got) != 0 {
		t.Fatalf("expected empty overlap, got %v", got)
	}
}
