// Package techvocab detects technology names in free text against a fixed vocabulary.
package techvocab

import (
	"sort"
	"strings"
)

// Vocabulary is an immutable set of technology terms plus an alias table that
// folds spelling variants into one canonical token.
type Vocabulary struct {
	terms   []string
	aliases map[string]string
}

var defaultTerms = []string{
	// languages
	"javascript", "typescript", "python", "java", "c#", "c++", "ruby", "php", "swift", "kotlin",
	"rust", "go", "scala", "elixir", "erlang", "haskell", "clojure", "ocaml", "f#", "dart", "lua",
	"perl", "julia", "objective-c", "bash", "sql", "nosql", "graphql", "html", "css", "sass", "solidity",
	// frameworks and libraries
	"react", "react native", "angular", "vue", "svelte", "nextjs", "nuxt", "node", "nestjs", "django",
	"flask", "fastapi", "rails", "spring", "laravel", "symfony", "dotnet", "phoenix", "flutter",
	"tensorflow", "pytorch", "pandas", "spark", "hadoop", "kafka", "rabbitmq", "airflow", "dbt",
	"jquery", "tailwind", "redux", "webpack", "grpc",
	// clouds and infrastructure
	"aws", "azure", "gcp", "heroku", "vercel", "cloudflare", "terraform", "ansible", "docker",
	"kubernetes", "helm", "linux", "git", "ci/cd", "jenkins", "github actions",
	// databases
	"postgresql", "mysql", "mongodb", "redis", "elasticsearch", "sqlite", "dynamodb", "cassandra",
	"clickhouse", "snowflake", "bigquery", "oracle",
	// methodologies and domains
	"agile", "scrum", "tdd", "devops", "microservices", "machine learning", "deep learning",
	"data science", "nlp", "computer vision", "llm", "blockchain", "mobile", "android", "ios",
	"frontend", "backend", "fullstack", "ui", "ux", "ai",
}

var defaultAliases = map[string]string{
	"golang":                "go",
	"postgres":              "postgresql",
	"k8s":                   "kubernetes",
	"nodejs":                "node",
	"node.js":               "node",
	"vuejs":                 "vue",
	"vue.js":                "vue",
	"reactjs":               "react",
	"react.js":              "react",
	"react-native":          "react native",
	"next.js":               "nextjs",
	"nuxt.js":               "nuxt",
	".net":                  "dotnet",
	"asp.net":               "dotnet",
	"ruby on rails":         "rails",
	"ror":                   "rails",
	"mongo":                 "mongodb",
	"elastic search":        "elasticsearch",
	"amazon web services":   "aws",
	"google cloud":          "gcp",
	"google cloud platform": "gcp",
	"ml":                    "machine learning",
	"llms":                  "llm",
	"cicd":                  "ci/cd",
	"c sharp":               "c#",
	"cpp":                   "c++",
	"full-stack":            "fullstack",
	"full stack":            "fullstack",
	"front-end":             "frontend",
	"front end":             "frontend",
	"back-end":              "backend",
	"back end":              "backend",
}

// Default returns the built-in vocabulary.
func Default() Vocabulary {
	return NewVocabulary(defaultTerms, defaultAliases)
}

// NewVocabulary copies terms and aliases into a new vocabulary. Terms and alias
// keys are lower-cased; blank entries are skipped.
func NewVocabulary(terms []string, aliases map[string]string) Vocabulary {
	v := Vocabulary{aliases: make(map[string]string, len(aliases))}

	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.ToLower(strings.TrimSpace(term))
		if term == "" {
			continue
		}
		if _, ok := seen[term]; ok {
			continue
		}
		seen[term] = struct{}{}
		v.terms = append(v.terms, term)
	}
	sort.Strings(v.terms)

	for from, to := range aliases {
		from = strings.ToLower(strings.TrimSpace(from))
		to = strings.ToLower(strings.TrimSpace(to))
		if from == "" || to == "" {
			continue
		}
		v.aliases[from] = to
	}

	return v
}

// With returns a new vocabulary extended by the given terms and aliases.
// The receiver is left untouched.
func (v Vocabulary) With(terms []string, aliases map[string]string) Vocabulary {
	mergedTerms := append(append([]string{}, v.terms...), terms...)

	mergedAliases := make(map[string]string, len(v.aliases)+len(aliases))
	for from, to := range v.aliases {
		mergedAliases[from] = to
	}
	for from, to := range aliases {
		mergedAliases[from] = to
	}

	return NewVocabulary(mergedTerms, mergedAliases)
}

// Terms returns a sorted copy of the vocabulary terms.
func (v Vocabulary) Terms() []string {
	return append([]string{}, v.terms...)
}

// Canonical folds a term through the alias table.
func (v Vocabulary) Canonical(term string) string {
	term = strings.ToLower(strings.TrimSpace(term))
	if to, ok := v.aliases[term]; ok {
		return to
	}
	return term
}
