package app

import (
	"fmt"
	"strings"

	"daily-quiz-bot/internal/domain"
)

const (
	scoredTitle = "📚 **Today's Quiz** 📚"
	trialTitle  = "🧪 **Test Quiz** 🧪"
)

// PromptMessage renders a session's question with its answer surface attached.
func PromptMessage(s *Session) domain.Message {
	title := scoredTitle
	if !s.Scored() {
		title = trialTitle
	}
	q := s.Question()

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(q.Text)
	for i, choice := range q.Choices {
		fmt.Fprintf(&b, "\n%d. %s", i+1, choice)
	}
	return domain.Message{
		Text:    b.String(),
		Answers: &domain.AnswerSurface{SessionID: s.ID(), Choices: domain.ChoiceCount},
	}
}

// RevealText renders the answer to the previous day's question.
func RevealText(q domain.QuestionRecord) string {
	return fmt.Sprintf("📖 **Yesterday's answer**\n**Question:** %s\n**Answer:** %d\n**Explanation:** %s",
		q.Text, q.CorrectChoice, q.Explanation)
}

// RankingText renders the monthly leaderboard. mention formats a participant
// for the chat surface in use.
func RankingText(r domain.Ranking, mention func(string) string) string {
	if r.NoParticipants {
		return "🏆 No quiz records this month."
	}
	lines := []string{"🏆 **This month's quiz champions** 🏆", ""}
	for _, e := range r.Entries {
		lines = append(lines, fmt.Sprintf("%d. %s — %.1f%% (%d/%d)", e.Position, mention(e.ParticipantID), e.Accuracy, e.Correct, e.Total))
	}
	return strings.Join(lines, "\n")
}

// AnswerReplyText renders the private reply to a submission.
func AnswerReplyText(res domain.AnswerResult) string {
	var msg string
	switch res.Outcome {
	case domain.OutcomeAlreadyAnswered:
		return "You have already answered!"
	case domain.OutcomeCorrect:
		msg = "🎉 **Correct!** Well done!"
	default:
		msg = fmt.Sprintf("❌ **Incorrect!** The answer is **%d**.", res.CorrectChoice)
	}
	return fmt.Sprintf("%s\n\n📖 **Explanation:** %s", msg, res.Explanation)
}
