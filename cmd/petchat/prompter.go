package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"pet-companion-chat/internal/domain/lifecycle"
	"pet-companion-chat/internal/domain/trainers"
)

// linePrompter pregunta por la terminal, una línea por respuesta.
// Implementa session.Prompter.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

func (p *linePrompter) TrainerName(ctx context.Context, initial, problem string) (string, error) {
	return p.ask(ctx, "Trainer name", initial, problem)
}

func (p *linePrompter) PetName(ctx context.Context, initial, problem string) (string, error) {
	return p.ask(ctx, "Name your Pokémon", initial, problem)
}

func (p *linePrompter) RunAway(ctx context.Context, petName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fmt.Fprintf(p.out, "%s has ran away.\n", petName)
	return nil
}

// ask muestra el error previo y el valor sugerido. Enter vacío acepta el sugerido.
func (p *linePrompter) ask(ctx context.Context, label, initial, problem string) (string, error) {
	if problem != "" {
		fmt.Fprintf(p.out, "! %s\n", problem)
	}
	prompt := label
	if initial != "" {
		prompt += " [" + initial + "]"
	}

	answer, err := p.Line(ctx, prompt+": ")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return initial, nil
	}
	return answer, nil
}

// Line lee una línea sin el salto final. Al terminar la entrada devuelve io.EOF
// salvo que quede texto sin salto de línea.
func (p *linePrompter) Line(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil {
		if err == io.EOF && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func printMessages(out io.Writer, msgs []lifecycle.Message) {
	for _, m := range msgs {
		fmt.Fprintf(out, "%s: %s\n", m.Sender, m.Text)
	}
}

// statusLine: "Sparky the Pichu | friendship 50 (medium) | streak 2/7".
func statusLine(p trainers.Pet) string {
	friendship := lifecycle.ClampFriendship(float64(p.Friendship))
	line := fmt.Sprintf("%s the %s | friendship %d (%s)",
		p.Name, lifecycle.SpeciesOf(p), friendship, lifecycle.FriendshipTier(float64(friendship)))
	if p.Stage < trainers.MaxStage {
		line += fmt.Sprintf(" | streak %d/%d", p.TalkingStreak, lifecycle.EvolutionStreak)
	}
	return line
}
