package llm

import (
	"fmt"
	"strings"
)

const (
	chatSystemPrompt = "You are an AI assistant integrated with the MCP Agentic Server. " +
		"You can help with various tasks including text analysis, information retrieval, " +
		"data validation, and general conversation. Be helpful and informative."
	analysisSystemPrompt   = "You are an expert text analyst. Provide clear, structured analysis."
	completionSystemPrompt = "You are a helpful writing assistant. Complete the given text naturally and coherently."
	summarySystemPrompt    = "You are an expert at creating clear, informative summaries."
)

// AnalysisTypes lists the accepted analysis_type values.
var AnalysisTypes = []string{"general", "sentiment", "summary", "keywords", "classification"}

func analysisPrompt(kind, text string) string {
	switch kind {
	case "sentiment":
		return "Analyze the sentiment of the following text. Provide a clear sentiment classification (positive, negative, neutral) and confidence score:\n\n" + text
	case "summary":
		return "Provide a concise summary of the following text:\n\n" + text
	case "keywords":
		return "Extract the key topics, themes, and important keywords from the following text:\n\n" + text
	case "classification":
		return "Classify the following text by category, genre, or type. Explain your classification:\n\n" + text
	default:
		return "Perform a comprehensive analysis of the following text, including sentiment, key themes, and important insights:\n\n" + text
	}
}

var lengthInstructions = map[string]string{
	"short":  "in 2-3 sentences",
	"medium": "in 1-2 paragraphs",
	"long":   "in 3-4 paragraphs with detailed key points",
}

var styleInstructions = map[string]string{
	"bullet_points": "using bullet points",
	"paragraph":     "in paragraph form",
	"abstract":      "as an academic abstract",
}

func summaryPrompt(length, style, text string) string {
	l, ok := lengthInstructions[length]
	if !ok {
		l = "concisely"
	}
	head := strings.TrimSpace(fmt.Sprintf("Summarize the following text %s %s", l, styleInstructions[style]))
	return head + ":\n\n" + text
}
