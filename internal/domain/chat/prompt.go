package chat

import (
	"fmt"
	"strings"
)

const noHistory = "(no previous messages yet)"

type PromptInput struct {
	UserInput  string
	Species    string
	Friendship int
	Context    string
}

// BuildRoleplayPrompt arma el mensaje de usuario que se manda al modelo.
// La amistad ya debe venir acotada a [0,100].
func BuildRoleplayPrompt(in PromptInput) string {
	species := strings.TrimSpace(in.Species)
	if species == "" {
		species = "Pokémon"
	}
	ctx := strings.TrimSpace(in.Context)
	if ctx == "" {
		ctx = noHistory
	}

	return strings.Join([]string{
		"Pokémon roleplay",
		"🎯 Objective:",
		"Generate a realistic response that a pokemon would make if its able to talk, in the same language as user input for a specified Your Persona being a pokemon species.",
		"The output will be a concise 2-3 sentences response.",
		"",
		"User Input: " + in.UserInput,
		"Your Persona: " + species,
		fmt.Sprintf("Your Friendship: %d", in.Friendship),
		"Context: " + ctx,
		"",
		"📌 General Rules:",
		"",
		"    Context is the previous chat history in the user current session.",
		"    your personality depends on friendship score (1 being the saddest/most negative, 50 being neutral and 100 being the most happy/positive)",
		"    answer in a concise 2-3 sentences response. Except only when the output wouldn't meet user demand in just 2-3 sentences.",
		"    Output only the messages in the same language as user input (no explanations, no JSON, no prose).",
		"    -Nickname is the name user gave. You dont need to introduce yourself.",
	}, "\n")
}

// FormatConversationContext convierte el historial en una transcripción "Nombre: texto".
// Solo entran turnos user/assistant con contenido.
func FormatConversationContext(history []Message, trainerName, petName string) string {
	trainerName = orDefault(trainerName, "Trainer")
	petName = orDefault(petName, "Companion")

	lines := make([]string, 0, len(history))
	for _, m := range history {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch m.Role {
		case RoleUser:
			lines = append(lines, trainerName+": "+content)
		case RoleAssistant:
			lines = append(lines, petName+": "+content)
		}
	}
	return strings.Join(lines, "\n")
}

// RequestMessages: persona opcional como system y el prompt como user.
func RequestMessages(persona, prompt string) []Message {
	out := make([]Message, 0, 2)
	if p := strings.TrimSpace(persona); p != "" {
		out = append(out, Message{Role: RoleSystem, Content: p})
	}
	return append(out, Message{Role: RoleUser, Content: prompt})
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
