package entity

import "strings"

// Style 固定风格白名单中的一项。Prompt 为完整的风格描述片段，
// RelaxedPrompt 是触发内容过滤时使用的简化变体。
type Style struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Categories    []Category `json:"categories"`
	Prompt        string     `json:"-"`
	RelaxedPrompt string     `json:"-"`
}

var styleCatalogue = []Style{
	{
		ID:            "baroque",
		Name:          "Baroque Oil",
		Categories:    []Category{CategoryPets, CategoryFamily},
		Prompt:        "a dramatic baroque oil painting with rich chiaroscuro lighting, ornate gilded costume details and a dark renaissance palace backdrop",
		RelaxedPrompt: "a classical oil painting portrait with warm lighting",
	},
	{
		ID:            "watercolor",
		Name:          "Watercolor",
		Categories:    []Category{CategoryPets, CategoryFamily, CategoryKids},
		Prompt:        "a soft watercolor painting with loose translucent washes, gentle color bleeds and white paper showing through",
		RelaxedPrompt: "a light watercolor style painting",
	},
	{
		ID:            "pop-art",
		Name:          "Pop Art",
		Categories:    []Category{CategoryPets, CategoryFamily, CategoryKids},
		Prompt:        "a bold pop art portrait with flat saturated colors, halftone dots and thick black outlines in the style of 1960s screen prints",
		RelaxedPrompt: "a colorful pop art style portrait",
	},
	{
		ID:            "renaissance",
		Name:          "Renaissance",
		Categories:    []Category{CategoryPets, CategoryFamily},
		Prompt:        "a renaissance portrait with sfumato shading, muted earth tones and formal period clothing against a distant landscape",
		RelaxedPrompt: "a renaissance style painted portrait",
	},
	{
		ID:            "anime",
		Name:          "Anime",
		Categories:    []Category{CategoryKids, CategoryPets},
		Prompt:        "a vibrant anime illustration with large expressive eyes, clean cel shading and a pastel sky background",
		RelaxedPrompt: "a friendly anime style illustration",
	},
	{
		ID:            "pencil-sketch",
		Name:          "Pencil Sketch",
		Categories:    []Category{CategoryPets, CategoryFamily, CategoryKids},
		Prompt:        "a detailed graphite pencil sketch with fine cross-hatching, soft smudged shadows and textured drawing paper",
		RelaxedPrompt: "a simple pencil sketch drawing",
	},
	{
		ID:            "royal-portrait",
		Name:          "Royal Portrait",
		Categories:    []Category{CategoryPets},
		Prompt:        "a regal royal portrait wearing an embroidered velvet robe and jeweled crown, posed before heavy drapery in the manner of court painters",
		RelaxedPrompt: "a dignified painted portrait in fancy clothing",
	},
	{
		ID:            "storybook",
		Name:          "Storybook",
		Categories:    []Category{CategoryKids, CategoryFamily},
		Prompt:        "a whimsical storybook illustration with warm golden light, rounded friendly shapes and hand-painted gouache textures",
		RelaxedPrompt: "a cheerful storybook illustration",
	},
}

// Styles 返回风格白名单的副本。
func Styles() []Style {
	out := make([]Style, len(styleCatalogue))
	copy(out, styleCatalogue)
	return out
}

// StyleByID 在白名单中查找风格。
func StyleByID(id string) (*Style, bool) {
	trimmed := strings.TrimSpace(id)
	for i := range styleCatalogue {
		if styleCatalogue[i].ID == trimmed {
			s := styleCatalogue[i]
			return &s, true
		}
	}
	return nil, false
}
