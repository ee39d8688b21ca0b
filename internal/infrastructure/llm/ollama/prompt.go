package ollama

import "strings"

const deductionSystemPrompt = `Du bedömer om ett hantverksjobb i Sverige ger rätt till ROT- eller RUT-avdrag.
ROT: reparation, underhåll, om- och tillbyggnad av befintlig bostad.
RUT: hushållsnära tjänster som städning, trädgårdsskötsel och flytt.
Inget avdrag: nybyggnation, material, arbete på annans fastighet.
Svara ENDAST med JSON: {"deductionType":"rot|rut|none","confidence":0-1,"reasoning":"kort motivering på svenska"}`

func buildDeductionPrompt(description, workType string) string {
	const maxSnippet = 2000
	snippet := strings.TrimSpace(description)
	if r := []rune(snippet); len(r) > maxSnippet {
		snippet = string(r[:maxSnippet])
	}

	var b strings.Builder
	b.WriteString("Jobbeskrivning:\n")
	b.WriteString(snippet)
	if wt := strings.TrimSpace(workType); wt != "" {
		b.WriteString("\n\nYrkeskategori: ")
		b.WriteString(wt)
	}
	return b.String()
}
