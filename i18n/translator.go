package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_schema_input":
			return "スキーマ入力が不正です"
		case "required":
			return "必須キーが未定義に解決されました"
		case "slot_type":
			return "スロットの子要素の型が不正です"
		case "not_a_number":
			return "数値として解釈できません"
		case "duplicate_definition":
			return "要素定義が重複しています"
		case "unknown_definition":
			return "未知の要素定義です"
		case "parse_error":
			return "解析エラー"
		case "bad_pointer":
			return "JSONポインタが不正です"
		case "bad_patch":
			return "パッチが不正です"
		}
	default: // "en"
		switch code {
		case "invalid_schema_input":
			return "invalid schema input"
		case "required":
			return "required key resolved to undefined"
		case "slot_type":
			return "slotted child has the wrong element type"
		case "not_a_number":
			return "not interpretable as a number"
		case "duplicate_definition":
			return "duplicate element definition"
		case "unknown_definition":
			return "unknown element definition"
		case "parse_error":
			return "parse error"
		case "bad_pointer":
			return "malformed JSON pointer"
		case "bad_patch":
			return "malformed patch"
		}
	}
	return code
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
