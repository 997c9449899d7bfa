package service

import (
	"strings"
	"unicode"

	"campaign-bot/internal/models"
)

const (
	LangEnglish = "en"
	LangSpanish = "es"
	LangArabic  = "ar"
	LangFrench  = "fr"
)

var supportedLanguages = map[string]bool{
	LangEnglish: true,
	LangSpanish: true,
	LangArabic:  true,
	LangFrench:  true,
}

const (
	spanishChars = "ñüéáíóú¿¡"
	frenchChars  = "çàèùâêîôû"
)

var spanishMarkers = map[string]struct{}{
	"qué": {}, "cómo": {}, "dónde": {}, "cuál": {}, "quién": {},
	"cuánto": {}, "usted": {}, "hola": {}, "gracias": {},
}

var frenchMarkers = map[string]struct{}{
	"pourquoi": {}, "comment": {}, "où": {}, "quel": {}, "quelle": {},
	"combien": {}, "bonjour": {}, "merci": {}, "vous": {},
}

var stopWords = map[string]map[string]struct{}{
	LangEnglish: wordSet("the", "is", "are", "was", "were", "will", "would", "should", "could",
		"a", "an", "and", "or", "to", "of", "for", "on", "at", "in", "it", "i",
		"my", "me", "you", "your", "that", "this", "what", "how", "do", "does", "can", "about", "with"),
	LangSpanish: wordSet("el", "la", "los", "las", "es", "son", "fue", "fueron", "será",
		"de", "en", "y", "que", "qué", "cómo", "un", "una", "por", "para", "con", "su", "mi"),
	LangArabic: wordSet("في", "من", "إلى", "على", "هو", "هي", "كان", "كانت", "ما", "هل", "أن", "عن"),
	LangFrench: wordSet("le", "la", "les", "est", "sont", "était", "étaient", "sera",
		"de", "du", "des", "un", "une", "et", "en", "pour", "que", "qui", "à", "au", "aux", "je", "mon", "ma"),
}

func wordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Normalize prepares one raw user message for matching: trims and lowercases
// the text, collapses whitespace, strips terminal punctuation and tokenizes
// the result with the stop list of the detected language. An explicit
// language hint from the request wins over detection.
func Normalize(raw, languageHint string) models.QueryContext {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	normalized = collapseWhitespace(normalized)
	normalized = strings.TrimRight(normalized, "?!.¿¡؟ ")

	lang := strings.ToLower(strings.TrimSpace(languageHint))
	if !supportedLanguages[lang] {
		lang = DetectLanguage(normalized)
	}

	return models.QueryContext{
		RawText:    raw,
		Normalized: normalized,
		Tokens:     tokenize(normalized, lang),
		Language:   lang,
	}
}

// DetectLanguage guesses the language of a text from character blocks and
// marker words. The guess is advisory and defaults to English.
func DetectLanguage(text string) string {
	for _, r := range text {
		if r >= 0x0600 && r <= 0x06FF {
			return LangArabic
		}
	}

	lower := strings.ToLower(text)
	if strings.ContainsAny(lower, spanishChars) {
		return LangSpanish
	}
	if strings.ContainsAny(lower, frenchChars) {
		return LangFrench
	}

	for _, field := range strings.Fields(lower) {
		word := trimTokenPunct(field)
		if _, ok := spanishMarkers[word]; ok {
			return LangSpanish
		}
		if _, ok := frenchMarkers[word]; ok {
			return LangFrench
		}
	}

	return LangEnglish
}

// tokenize splits normalized text on whitespace, trims punctuation from token
// edges and drops stop words. Inner apostrophes survive, so "can't" stays one
// token.
func tokenize(normalized, lang string) []string {
	if normalized == "" {
		return nil
	}

	stop := stopWords[lang]
	fields := strings.Fields(normalized)
	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		token := trimTokenPunct(field)
		if token == "" {
			continue
		}
		if _, ok := stop[token]; ok {
			continue
		}
		tokens = append(tokens, token)
	}

	return tokens
}

func trimTokenPunct(token string) string {
	return strings.TrimFunc(token, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
}
