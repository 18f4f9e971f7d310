package utils

import "strings"

// Strict blacklist - questions containing these are off-topic regardless of
// anything else they mention.
var blacklistKeywords = []string{
	"weather", "joke", "cook", "recipe", "movie", "song", "game", "sport",
	"news", "stock", "crypto", "bitcoin", "politics", "health", "medicine",
	"travel", "hotel", "restaurant", "shopping", "fashion", "celebrity",
	"math problem", "homework", "essay", "translate", "definition of",
}

// Whitelist - a question must contain at least one of these to reach the
// AI backend.
var hackathonKeywords = []string{
	"hackathon", "numreno", "registration", "register", "team", "member",
	"project", "submission", "submit", "deadline", "prize", "win", "rule",
	"schedule", "judge", "judging", "criteria", "problem statement", "track",
	"tech stack", "event", "certificate", "participant", "id card", "id verification",
	"upload", "dashboard", "login", "christmas", "festive", "theme",
	"mentor", "support", "help", "when", "what", "how", "where", "eligib",
}

// Question topics that always need a human, no matter how the bot answers.
var escalationTriggers = []string{
	"payment", "refund", "money", "account problem", "can't register",
	"registration failed", "dispute", "exception", "special request",
	"accommodation", "certificate issue", "prize claim", "urgent",
	"technical issue", "bug", "error", "not working",
}

// Phrases in a bot answer that signal it could not actually help.
var uncertaintyPhrases = []string{
	"i'm not sure", "i don't know", "unclear", "contact admin",
	"reach out to", "suggest escalating", "human assistance",
	"escalate this to our admin",
}

// IsHackathonRelated reports whether a support question is in scope for
// the chat bot.
func IsHackathonRelated(question string) bool {
	lower := strings.ToLower(question)

	for _, keyword := range blacklistKeywords {
		if strings.Contains(lower, keyword) {
			return false
		}
	}
	for _, keyword := range hackathonKeywords {
		if strings.Contains(lower, keyword) {
			return true
		}
	}
	return false
}

// ShouldEscalate decides whether a question/answer pair needs the admin
// team: either the question hits an escalation trigger or the answer
// admits uncertainty.
func ShouldEscalate(question, botResponse string) bool {
	lowerQuestion := strings.ToLower(question)
	lowerResponse := strings.ToLower(botResponse)

	for _, trigger := range escalationTriggers {
		if strings.Contains(lowerQuestion, trigger) {
			return true
		}
	}
	for _, phrase := range uncertaintyPhrases {
		if strings.Contains(lowerResponse, phrase) {
			return true
		}
	}
	return false
}
