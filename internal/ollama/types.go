package ollama

import (
	"strings"
	"time"
)

// Model is a locally stored model as reported by /api/tags.
type Model struct {
	Name       string       `json:"name"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest,omitempty"`
	ModifiedAt time.Time    `json:"modified_at"`
	Details    ModelDetails `json:"details"`
}

type ModelDetails struct {
	Format            string `json:"format,omitempty"`
	Family            string `json:"family,omitempty"`
	ParameterSize     string `json:"parameter_size,omitempty"`
	QuantizationLevel string `json:"quantization_level,omitempty"`
}

// Repo returns the part of the name before the tag.
func (m Model) Repo() string {
	repo, _ := SplitName(m.Name)
	return repo
}

// Tag returns the part of the name after the colon, "latest" when absent.
func (m Model) Tag() string {
	_, tag := SplitName(m.Name)
	return tag
}

// SplitName splits "<repo>:<tag>". A colon inside a registry host
// ("host:5000/repo") is not a tag separator.
func SplitName(name string) (repo, tag string) {
	slash := strings.LastIndex(name, "/")
	colon := strings.LastIndex(name, ":")
	if colon > slash {
		return name[:colon], name[colon+1:]
	}
	return name, "latest"
}

// SameName reports whether two model names refer to the same model,
// treating a missing tag as ":latest".
func SameName(a, b string) bool {
	ra, ta := SplitName(strings.ToLower(strings.TrimSpace(a)))
	rb, tb := SplitName(strings.ToLower(strings.TrimSpace(b)))
	return ra == rb && ta == tb
}

// ContainsModel reports whether models holds a model with the given name.
func ContainsModel(models []Model, name string) bool {
	for _, m := range models {
		if SameName(m.Name, name) {
			return true
		}
	}
	return false
}

type listResponse struct {
	Models []Model `json:"models"`
}

type deleteRequest struct {
	Name string `json:"name"`
}

type pullRequest struct {
	Name   string `json:"name"`
	Stream bool   `json:"stream"`
}

// errorResponse is the body the daemon sends with non-2xx statuses.
type errorResponse struct {
	Error string `json:"error"`
}
