package chat

import (
	"encoding/json"
	"strings"
)

// CompletionResponse es la forma (tolerante) de una respuesta estilo chat completions.
// content puede venir como string o como lista de partes.
type CompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string          `json:"role"`
			Content json.RawMessage `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	OutputText string `json:"output_text"`
}

// Reply extrae el texto del asistente; "" si no hay.
func (r CompletionResponse) Reply() string {
	var content json.RawMessage
	if len(r.Choices) > 0 {
		content = r.Choices[0].Message.Content
	}

	if text := contentText(content); text != "" {
		return text
	}
	return strings.TrimSpace(r.OutputText)
}

func contentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return ""
	}

	var b strings.Builder
	for _, part := range parts {
		var ps string
		if err := json.Unmarshal(part, &ps); err == nil {
			b.WriteString(ps)
			continue
		}
		var obj struct {
			Text *string `json:"text"`
		}
		if err := json.Unmarshal(part, &obj); err == nil && obj.Text != nil {
			b.WriteString(*obj.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
