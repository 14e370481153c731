package services

import (
	"fmt"
	"strings"

	"github.com/archivist-labs/docq-cli/internal/core/domain"
)

// contextDelimiter separates retrieved chunks inside the LLM prompt.
const contextDelimiter = "\n\n---\n\n"

// Canned responses returned without an LLM call when retrieval produces
// nothing, or when the answering flow degrades on a service failure.
const (
	notFoundEnglish = "No relevant content was found in the document for this question."
	notFoundChinese = "未能在文档中找到与该问题相关的内容。"

	noAnswerEnglish = "The question could not be answered at this time. Please try again later."
	noAnswerChinese = "暂时无法回答该问题，请稍后重试。"
)

const answerPromptEnglish = `You are a document question-answering assistant. Answer the question using ONLY the context below. If the context does not contain the answer, say "The document does not contain this information." Do not use outside knowledge.

Context:
%s

Question: %s

Answer:`

const answerPromptChinese = `你是一个文档问答助手。请仅根据下面提供的上下文回答问题。如果上下文中没有答案，请回答“文档中不包含该信息”。不要使用上下文以外的知识。

上下文：
%s

问题：%s

回答：`

// notFoundText returns the canned empty-retrieval answer.
func notFoundText(lang domain.Language) string {
	if lang == domain.LanguageChinese {
		return notFoundChinese
	}
	return notFoundEnglish
}

// noAnswerText returns the canned degraded-service answer.
func noAnswerText(lang domain.Language) string {
	if lang == domain.LanguageChinese {
		return noAnswerChinese
	}
	return noAnswerEnglish
}

// buildPrompt assembles the grounded prompt from the full text of every
// retrieved chunk.
func buildPrompt(question string, results []domain.RetrievalResult, lang domain.Language) string {
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Text
	}
	context := strings.Join(texts, contextDelimiter)

	tmpl := answerPromptEnglish
	if lang == domain.LanguageChinese {
		tmpl = answerPromptChinese
	}
	return fmt.Sprintf(tmpl, context, question)
}
