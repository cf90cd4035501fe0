package gen

import (
	"artify/internal/entity"
	"strings"
)

func subjectForCategory(category entity.Category) string {
	switch category {
	case entity.CategoryPets:
		return "the pet in this photo"
	case entity.CategoryKids:
		return "the child in this photo"
	default:
		return "the people in this photo"
	}
}

// BuildPrompt 由风格模板、分类主体和可选参数拼出主提示词。
func BuildPrompt(style entity.Style, category entity.Category, opts entity.GenerationOptions) string {
	var b strings.Builder
	b.WriteString("Recreate ")
	b.WriteString(subjectForCategory(category))
	b.WriteString(" as ")
	b.WriteString(style.Prompt)
	b.WriteString(". Keep the subject's likeness, pose and expression recognizable.")

	if gender := strings.TrimSpace(opts.Gender); gender != "" {
		b.WriteString(" The subject presents as ")
		b.WriteString(gender)
		b.WriteString(".")
	}
	if custom := strings.TrimSpace(opts.CustomPrompt); custom != "" {
		b.WriteString(" ")
		b.WriteString(custom)
	}

	return b.String()
}

// BuildRelaxedPrompt 构造简化提示词，去掉自定义片段以降低触发内容过滤的概率。
func BuildRelaxedPrompt(style entity.Style, category entity.Category) string {
	var b strings.Builder
	b.WriteString("Recreate ")
	b.WriteString(subjectForCategory(category))
	b.WriteString(" as ")
	b.WriteString(style.RelaxedPrompt)
	b.WriteString(".")
	return b.String()
}
