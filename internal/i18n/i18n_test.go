package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestNew(t *testing.T) {
	tests := []struct {
		locale string
		want   language.Tag
	}{
		{"en", language.English},
		{"ru", language.Russian},
		{"ru-RU", language.Russian},
		{"", language.English},
		{"not a locale!", language.English},
		{"ja", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.locale, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.locale).Language())
		})
	}
}

func TestTranslator_Text(t *testing.T) {
	en := New("en")
	ru := New("ru")

	assert.Equal(t, "Password must be at least 6 characters", en.Text(InvalidPasswordMessage))
	assert.Equal(t, "Пароль должен быть не менее 6 символов", ru.Text(InvalidPasswordMessage))
	assert.Equal(t, "unknown.key", en.Text("unknown.key"))
}

func TestCatalogsAreComplete(t *testing.T) {
	english := catalogs[language.English]
	for tag, entries := range catalogs {
		for key := range english {
			_, ok := entries[key]
			assert.True(t, ok, "%s is missing %s", tag, key)
		}
	}
}
