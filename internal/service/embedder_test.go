package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildEmbeddingText(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		overview   string
		genreNames []string
		want       string
	}{
		{
			name:  "仅标题",
			title: "Inception",
			want:  "Inception",
		},
		{
			name:       "标题加类型",
			title:      "Inception",
			genreNames: []string{"Action", "Science Fiction"},
			want:       "Inception. Genre: Action, Science Fiction",
		},
		{
			name:     "标题加简介",
			title:    "Inception",
			overview: "A thief who steals corporate secrets.",
			want:     "Inception. A thief who steals corporate secrets.",
		},
		{
			name:       "完整拼接顺序",
			title:      "Inception",
			overview:   "A thief who steals corporate secrets.",
			genreNames: []string{"Action", "Science Fiction"},
			want:       "Inception. Genre: Action, Science Fiction. A thief who steals corporate secrets.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildEmbeddingText(tt.title, tt.overview, tt.genreNames)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildEmbeddingTextDeterministic(t *testing.T) {
	a := BuildEmbeddingText("Dune", "Paul Atreides leads a rebellion.", []string{"Science Fiction", "Adventure"})
	b := BuildEmbeddingText("Dune", "Paul Atreides leads a rebellion.", []string{"Science Fiction", "Adventure"})
	assert.Equal(t, a, b)
}
