package answer

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/docchat/internal/domain/conversation"
	"github.com/kailas-cloud/docchat/internal/domain/language"
	"github.com/kailas-cloud/docchat/internal/domain/retrieval"
)

const chineseTemplate = `使用以下上下文信息来回答问题。如果你不知道答案，就说你不知道，不要试图编造答案。

上下文信息:
%s

问题: %s

请提供详细且准确的答案，并在可能的情况下引用相关的文档来源：`

const englishTemplate = `Use the following pieces of context to answer the question. If you don't know the answer, just say that you don't know, don't try to make up an answer.

Context:
%s

Question: %s

Please provide a detailed and accurate answer, citing relevant document sources when possible:`

// buildPrompt assembles the full model prompt from retrieved context, bounded
// history and the question, in the session language.
func buildPrompt(lang language.Language, hits []retrieval.Hit, history []conversation.Turn, question string) string {
	question = enhanceQuestion(lang, history, question)

	tmpl := englishTemplate
	if lang == language.Chinese {
		tmpl = chineseTemplate
	}
	return fmt.Sprintf(tmpl, buildContext(hits), question)
}

// buildContext renders each hit as a source-attributed block.
func buildContext(hits []retrieval.Hit) string {
	if len(hits) == 0 {
		return ""
	}
	blocks := make([]string, len(hits))
	for i := range hits {
		c := hits[i].Chunk()
		blocks[i] = fmt.Sprintf("[%s]\n%s", c.Source(), c.Text())
	}
	return strings.Join(blocks, "\n\n")
}

// enhanceQuestion prefixes the question with recent conversation history so
// follow-up questions resolve their references.
func enhanceQuestion(lang language.Language, history []conversation.Turn, question string) string {
	if len(history) == 0 {
		return question
	}

	var b strings.Builder
	for i := range history {
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", history[i].Question(), history[i].Answer())
	}

	if lang == language.Chinese {
		return fmt.Sprintf("基于以下对话历史：\n%s\n当前问题：%s", b.String(), question)
	}
	return fmt.Sprintf("Based on the following conversation history:\n%s\nCurrent question: %s", b.String(), question)
}
