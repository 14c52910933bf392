package i18n

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "index").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg := t.lookup(code)
	if d, ok := data["detail"]; ok && d != "" {
		msg += ": " + d
	}
	return msg
}

func (t dictTranslator) lookup(code string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "invalid_type":
			return "型が不正です"
		case "required":
			return "必須フィールドが不足しています"
		case "out_of_range":
			return "値が範囲外です"
		case "invalid_enum":
			return "列挙値に含まれないシンボルです"
		case "invalid_size":
			return "バイト長が不正です"
		case "invalid_key":
			return "マップのキーは文字列である必要があります"
		case "union_no_match":
			return "どのユニオン分岐にも一致しません"
		case "unknown_branch":
			return "未知のユニオン分岐です"
		case "one_shot_iterable":
			return "一度しか走査できない反復子は使用できません"
		case "logical_type":
			return "論理型の値が不正です"
		}
	default: // "en"
		switch code {
		case "invalid_type":
			return "invalid type"
		case "required":
			return "required field missing"
		case "out_of_range":
			return "value out of range"
		case "invalid_enum":
			return "symbol not in enum"
		case "invalid_size":
			return "invalid byte length"
		case "invalid_key":
			return "map keys must be strings"
		case "union_no_match":
			return "value matches no union branch"
		case "unknown_branch":
			return "unknown union branch"
		case "one_shot_iterable":
			return "one-shot iterators cannot be validated and written"
		case "logical_type":
			return "invalid logical type value"
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
