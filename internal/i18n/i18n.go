// Package i18n holds the user-facing alert texts in every supported language.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Message keys.
const (
	InvalidEmailTitle        = "validation.email.title"
	InvalidEmailMessage      = "validation.email.message"
	InvalidPasswordTitle     = "validation.password.title"
	InvalidPasswordMessage   = "validation.password.message"
	EmailInUseTitle          = "auth.email_in_use.title"
	EmailInUseMessage        = "auth.email_in_use.message"
	InvalidCredentialTitle   = "auth.invalid_credential.title"
	InvalidCredentialMessage = "auth.invalid_credential.message"
	GenericErrorTitle        = "auth.error.title"
	SavedTitle               = "editor.saved.title"
	SavedMessage             = "editor.saved.message"
	VerifiedPageTitle        = "verify.page.title"
	VerifiedPageMessage      = "verify.page.message"
	VerifyFailedPageMessage  = "verify.page.failed"
	VerifyEmailSubject       = "verify.email.subject"
	VerifyEmailBody          = "verify.email.body"
)

var supported = []language.Tag{language.English, language.Russian}

var catalogs = map[language.Tag]map[string]string{
	language.English: {
		InvalidEmailTitle:        "E-Mail address failed validation",
		InvalidEmailMessage:      "Please enter an E-Mail address",
		InvalidPasswordTitle:     "Password failed validation",
		InvalidPasswordMessage:   "Password must be at least 6 characters",
		EmailInUseTitle:          "A user with this E-Mail already exists",
		EmailInUseMessage:        "Try a different E-Mail address",
		InvalidCredentialTitle:   "Error",
		InvalidCredentialMessage: "No user exists with this E-Mail and password",
		GenericErrorTitle:        "Error",
		SavedTitle:               "Saved",
		SavedMessage:             "The image was saved to your library",
		VerifiedPageTitle:        "E-Mail confirmed",
		VerifiedPageMessage:      "Your E-Mail address is confirmed. You can return to the app.",
		VerifyFailedPageMessage:  "This confirmation link is invalid or has expired.",
		VerifyEmailSubject:       "Confirm your E-Mail address",
		VerifyEmailBody:          "Follow the link below to confirm your E-Mail address:",
	},
	language.Russian: {
		InvalidEmailTitle:        "E-Mail адрес не прошел валидацию",
		InvalidEmailMessage:      "Пожалуйста, введите E-Mail адрес",
		InvalidPasswordTitle:     "Пароль не прошел валидацию",
		InvalidPasswordMessage:   "Пароль должен быть не менее 6 символов",
		EmailInUseTitle:          "Пользователь с таким E-Mail уже существует",
		EmailInUseMessage:        "Попробуйте другой E-Mail адрес",
		InvalidCredentialTitle:   "Ошибка",
		InvalidCredentialMessage: "Пользователя с такими E-Mail и паролем не существует",
		GenericErrorTitle:        "Ошибка",
		SavedTitle:               "Сохранено",
		SavedMessage:             "Изображение сохранено в библиотеку",
		VerifiedPageTitle:        "E-Mail подтвержден",
		VerifiedPageMessage:      "Ваш E-Mail адрес подтвержден. Можно вернуться в приложение.",
		VerifyFailedPageMessage:  "Ссылка для подтверждения недействительна или устарела.",
		VerifyEmailSubject:       "Подтвердите E-Mail адрес",
		VerifyEmailBody:          "Перейдите по ссылке ниже, чтобы подтвердить E-Mail адрес:",
	},
}

func init() {
	for tag, entries := range catalogs {
		for key, text := range entries {
			_ = message.SetString(tag, key, text)
		}
	}
}

// Translator resolves message keys for one language.
type Translator struct {
	tag     language.Tag
	printer *message.Printer
}

var matcher = language.NewMatcher(supported)

// New picks the closest supported language for locale (e.g. "ru-RU"),
// falling back to English.
func New(locale string) *Translator {
	tag := language.English
	if requested, err := language.Parse(locale); err == nil {
		_, idx, confidence := matcher.Match(requested)
		if confidence != language.No {
			tag = supported[idx]
		}
	}
	return &Translator{tag: tag, printer: message.NewPrinter(tag)}
}

// Language reports the language the translator settled on.
func (t *Translator) Language() language.Tag {
	return t.tag
}

// Text returns the catalog entry for key. Unknown keys come back unchanged.
func (t *Translator) Text(key string) string {
	return t.printer.Sprintf(key)
}
