// Package textnorm приводит произвольный текст описаний к канонической
// последовательности основ слов: нижний регистр, удаление пунктуации,
// фильтрация стоп-слов и стемминг Porter2.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Normalizer очищает текст. Не имеет изменяемого состояния после создания
// и безопасен для одновременного использования.
type Normalizer struct {
	stopWords map[string]struct{}
}

// New создает Normalizer с заданным набором стоп-слов.
// При пустом наборе используется DefaultStopWords.
func New(stopWords []string) *Normalizer {
	if len(stopWords) == 0 {
		stopWords = DefaultStopWords
	}
	set := make(map[string]struct{}, len(stopWords))
	for _, w := range stopWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			set[w] = struct{}{}
		}
	}
	return &Normalizer{stopWords: set}
}

// Normalize возвращает нормализованный текст. Пустая строка - допустимый
// результат для пустого ввода или ввода только из пунктуации и стоп-слов.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}

	// cases.Caser не потокобезопасен, поэтому создается на каждый вызов
	text = cases.Lower(language.Und).String(strings.ToValidUTF8(text, ""))
	text = strings.Map(func(r rune) rune {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			return -1
		}
		return r
	}, text)

	words := strings.Fields(text)
	out := make([]string, 0, len(words))
	for _, w := range words {
		if n.IsStopWord(w) {
			continue
		}
		out = append(out, english.Stem(w, true))
	}
	return strings.Join(out, " ")
}

// IsStopWord сообщает, входит ли слово в набор стоп-слов.
func (n *Normalizer) IsStopWord(word string) bool {
	_, ok := n.stopWords[word]
	return ok
}
