package gen

import (
	"artify/internal/entity"
	"strings"
	"testing"
)

func TestBuildPrompt(t *testing.T) {
	style, ok := entity.StyleByID("watercolor")
	if !ok {
		t.Fatal("watercolor style should exist")
	}

	tests := []struct {
		name     string
		category entity.Category
		opts     entity.GenerationOptions
		contains []string
		excludes []string
	}{
		{
			name:     "宠物分类使用宠物主体",
			category: entity.CategoryPets,
			contains: []string{"the pet in this photo", style.Prompt},
		},
		{
			name:     "家庭分类使用人物主体",
			category: entity.CategoryFamily,
			contains: []string{"the people in this photo"},
		},
		{
			name:     "携带性别与自定义提示词",
			category: entity.CategoryKids,
			opts:     entity.GenerationOptions{Gender: "girl", CustomPrompt: "wearing a red scarf"},
			contains: []string{"the child in this photo", "girl", "wearing a red scarf"},
		},
		{
			name:     "空白自定义提示词被忽略",
			category: entity.CategoryPets,
			opts:     entity.GenerationOptions{CustomPrompt: "   "},
			excludes: []string{"  ."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildPrompt(*style, tt.category, tt.opts)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("prompt %q missing %q", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("prompt %q should not contain %q", got, unwanted)
				}
			}
		})
	}
}

func TestBuildRelaxedPrompt(t *testing.T) {
	style, ok := entity.StyleByID("baroque")
	if !ok {
		t.Fatal("baroque style should exist")
	}

	got := BuildRelaxedPrompt(*style, entity.CategoryPets)
	if !strings.Contains(got, style.RelaxedPrompt) {
		t.Errorf("relaxed prompt %q missing %q", got, style.RelaxedPrompt)
	}
	if strings.Contains(got, style.Prompt) {
		t.Error("relaxed prompt should not reuse the full style prompt")
	}
}
