// Package i18n holds the human-readable texts of decode issue codes.
package i18n

import (
	"sort"
	"strings"
	"sync/atomic"
)

// Translator maps an issue code to a message. data carries optional details
// (for example "field" or "branch") that a Translator may embed.
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalog = map[string]map[string]string{
	"en": {
		"invalid_type":    "value has the wrong shape for its schema type",
		"required":        "field is absent and declares no default",
		"unknown_key":     "field is not declared by the record",
		"duplicate_key":   "object repeats a key",
		"union_ambiguous": "value fits several union branches",
		"parse_error":     "input is not well-formed JSON",
		"truncated":       "document exceeds the byte limit",
		"call_order":      "read does not match schema position",
	},
	"ja": {
		"invalid_type":    "値の形がスキーマの型と合いません",
		"required":        "フィールドがなく、既定値も宣言されていません",
		"unknown_key":     "レコードに宣言されていないフィールドです",
		"duplicate_key":   "オブジェクト内でキーが繰り返されています",
		"union_ambiguous": "値が複数のユニオン分岐に当てはまります",
		"parse_error":     "入力が正しい JSON ではありません",
		"truncated":       "ドキュメントがバイト上限を超えています",
		"call_order":      "読み取り順序がスキーマと一致しません",
	},
}

// catalogTranslator looks codes up in the built-in catalog. Codes it does not
// know are returned as is; data entries are appended sorted by key.
type catalogTranslator struct{ lang string }

func (t catalogTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalog[t.lang][code]
	if !ok {
		msg = code
	}
	if len(data) == 0 {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(msg)
	for i, k := range keys {
		if i == 0 {
			b.WriteString(" (")
		} else {
			b.WriteString(", ")
		}
		b.WriteString(k + "=" + data[k])
	}
	b.WriteString(")")
	return b.String()
}

var current atomic.Value // holds translatorBox

type translatorBox struct{ Translator }

func init() { current.Store(translatorBox{catalogTranslator{lang: "en"}}) }

// Languages returns the languages of the built-in catalog.
func Languages() []string {
	out := make([]string, 0, len(catalog))
	for lang := range catalog {
		out = append(out, lang)
	}
	sort.Strings(out)
	return out
}

// SetLanguage selects a built-in catalog. Unknown languages select "en".
func SetLanguage(lang string) {
	if _, ok := catalog[lang]; !ok {
		lang = "en"
	}
	current.Store(translatorBox{catalogTranslator{lang: lang}})
}

// SetTranslator installs tr; nil restores the English catalog.
func SetTranslator(tr Translator) {
	if tr == nil {
		SetLanguage("en")
		return
	}
	current.Store(translatorBox{tr})
}

// T returns the message for code from the installed Translator.
func T(code string, data map[string]string) string {
	return current.Load().(translatorBox).Message(code, data)
}
