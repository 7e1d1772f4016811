package llm

import "strings"

// BuildSystemPrompt states the extraction contract: one JSON array of
// {product, price, notes} objects and nothing else.
func BuildSystemPrompt() string {
	parts := []string{
		"You are a purchases-tracking assistant. Users send free-form shopping text, often in Arabic.",
		"Extract every purchased item and return ONLY a JSON array of objects with exactly these keys:",
		`"product" for the item name, "price" for its price as a plain number without currency words or symbols, "notes" for extra details such as weight or quantity.`,
		"One object per item. Do not add commentary, code fences, or any keys beyond product, price, and notes.",
		`Example output: [{"product": "تفاح", "price": 50, "notes": "1 كيلو"}]`,
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the raw message. Multi-line messages carry one
// item per line; the model is told so to keep it from merging lines.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	if strings.Count(strings.TrimSpace(text), "\n") > 0 {
		b.WriteString("The user sent a multi-line shopping list; each line is a separate item:\n")
	} else {
		b.WriteString("The user sent this purchase message:\n")
	}
	b.WriteString(text)
	b.WriteString("\n\nReturn ONLY the JSON array.")
	return b.String()
}
