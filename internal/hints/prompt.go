package hints

import (
	"fmt"
	"strings"

	"github.com/abhisek/adaptiq/internal/itembank"
)

const hintSystemPrompt = `You are a patient tutor inside an adaptive assessment.
Give exactly one hint for the question. Never reveal or restate the correct answer.
Match the hint to the learner: low ability and repeated attempts need foundational
support, long time on the question needs a strategy, a first request needs orientation.`

const describeSystemPrompt = `You describe assessment questions for learners.
Say what skill the question exercises in plain language. Do not hint at the answer.`

func hintUserMessage(r Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Section: %s\n", itembank.SectionDisplayName(r.Item.Section))
	if r.Item.Domain != "" {
		fmt.Fprintf(&b, "Domain: %s\n", r.Item.Domain)
	}
	fmt.Fprintf(&b, "Question: %s\n", r.Item.Content.Prompt)
	if len(r.Item.Content.Options) > 0 {
		fmt.Fprintf(&b, "Options: %s\n", strings.Join(r.Item.Content.Options, " | "))
	}
	fmt.Fprintf(&b, "Item difficulty (logits): %.2f\n", r.Item.Params.Difficulty)
	fmt.Fprintf(&b, "Learner ability estimate (logits): %.2f\n", r.Theta)
	fmt.Fprintf(&b, "Hint requests on this question so far: %d\n", r.AttemptCount)
	fmt.Fprintf(&b, "Seconds on this question: %d\n", r.TimeSpentMs/1000)
	if len(r.PreviousIncorrectAnswers) > 0 {
		fmt.Fprintf(&b, "Previous incorrect answers: %s\n", strings.Join(r.PreviousIncorrectAnswers, ", "))
	}
	return b.String()
}

func describeUserMessage(it itembank.Item) string {
	return fmt.Sprintf("Section: %s\nQuestion: %s\n",
		itembank.SectionDisplayName(it.Section), it.Content.Prompt)
}
