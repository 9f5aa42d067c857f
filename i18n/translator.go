package i18n

import "sync"

// Message codes used by the validator facade.
const (
	CodeInitFailed         = "init_failed"
	CodeRegistrationFailed = "registration_failed"
	CodeEmptySchemaID      = "empty_schema_id"
	CodeInvalidReference   = "invalid_reference"
	CodeDoesNotConform     = "does_not_conform"
	CodeDuplicateKey       = "duplicate_key"
)

// Translator retrieves localized messages for facade codes.
// data provides optional metadata to embed in the message (for example,
// "ref" or "key").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case CodeInitFailed:
			return "エンジンの初期化に失敗しました"
		case CodeRegistrationFailed:
			return "スキーマの登録に失敗しました"
		case CodeEmptySchemaID:
			return "スキーマIDが空です"
		case CodeInvalidReference:
			return "参照 '" + data["ref"] + "' のスキームは許可されていません"
		case CodeDoesNotConform:
			return "データがスキーマに適合しません"
		case CodeDuplicateKey:
			return "キー '" + data["key"] + "' が重複しています"
		}
	default: // "en"
		switch code {
		case CodeInitFailed:
			return "engine initialization failed"
		case CodeRegistrationFailed:
			return "schema registration failed"
		case CodeEmptySchemaID:
			return "schema id must not be empty"
		case CodeInvalidReference:
			return "reference '" + data["ref"] + "' uses a scheme that is not allowed"
		case CodeDoesNotConform:
			return "data does not conform to schema"
		case CodeDuplicateKey:
			return "key '" + data["key"] + "' duplicated"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
