package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogsAreComplete(t *testing.T) {
	for _, loc := range Locales() {
		catalog := catalogs[loc]
		require.NotNil(t, catalog, "catalog for %s", loc)
		for _, k := range Keys() {
			assert.NotEmpty(t, catalog[k], "locale %s is missing %s", loc, k.Name())
		}
	}
}

func TestKeyNamesAreUnique(t *testing.T) {
	seen := map[string]Key{}
	for _, k := range Keys() {
		name := k.Name()
		require.NotEmpty(t, name, "key %d has no name", k)
		prev, dup := seen[name]
		assert.False(t, dup, "name %s used by %d and %d", name, prev, k)
		seen[name] = k
	}
}

func TestParseLocale(t *testing.T) {
	tests := []struct {
		raw  string
		want Locale
		ok   bool
	}{
		{"zh", LocaleZH, true},
		{"zh-CN", LocaleZH, true},
		{"zh-TW", LocaleZHTW, true},
		{"zh_Hant_HK", LocaleZHTW, true},
		{"en-US", LocaleEN, true},
		{"fr", DefaultLocale, false},
		{"", DefaultLocale, false},
	}
	for _, tt := range tests {
		got, ok := ParseLocale(tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
		assert.Equal(t, tt.ok, ok, tt.raw)
	}
}

func TestFromAcceptLanguage(t *testing.T) {
	assert.Equal(t, LocaleEN, FromAcceptLanguage("fr-FR,en-US;q=0.8,zh;q=0.5"))
	assert.Equal(t, LocaleZHTW, FromAcceptLanguage("zh-TW,zh;q=0.9"))
	assert.Equal(t, DefaultLocale, FromAcceptLanguage("de"))
}

func TestTranslator(t *testing.T) {
	en := For(LocaleEN)
	assert.Equal(t, "Sign in", en.T(NavLogin))
	assert.Equal(t, "Resend in 42s", en.Tf(AuthResendIn, 42))

	fallback := For(Locale("xx"))
	assert.Equal(t, DefaultLocale, fallback.Locale())
	assert.Equal(t, "登录", fallback.T(NavLogin))

	dict := For(LocaleZHTW).Dict()
	assert.Equal(t, "登出", dict["nav_logout"])
	assert.Len(t, dict, len(Keys()))
}
