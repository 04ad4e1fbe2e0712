package services

import (
	"context"
	"fmt"
	"strings"

	utils "mindmemos/pkg/utills"
)

// AskCompanionLocal is the offline fallback for the AI companion. It keeps
// the UX consistent when Ollama is disabled or unreachable.
func AskCompanionLocal(ctx context.Context, question string, hasRecommendations bool) string {
	q := strings.TrimSpace(question)
	if q == "" {
		q = "what you shared"
	}

	b := &strings.Builder{}
	fmt.Fprintf(b, "Thank you for sharing about %s.\n\n", utils.TruncateRunes(q, 60))
	fmt.Fprintln(b, "It takes courage to put feelings into words, and what you're experiencing matters.")
	if hasRecommendations {
		fmt.Fprintln(b, "Other members of the community have written about similar experiences - you might find comfort in reading their posts below.")
	} else {
		fmt.Fprintln(b, "Even though no similar posts were found yet, you're not alone in this.")
	}
	fmt.Fprintln(b, "\nA few things that often help:")
	fmt.Fprintln(b, "- Write down what you're feeling, without judging it.")
	fmt.Fprintln(b, "- Take slow breaths and give yourself permission to rest.")
	fmt.Fprintln(b, "- Reach out to someone you trust, even with a short message.")
	fmt.Fprintln(b, "\nPlease remember this is peer support, not professional care. If things feel heavy, consider talking to a mental health professional or a crisis line.")
	return b.String()
}
