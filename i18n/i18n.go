package i18n

import (
	"fmt"
	"strings"
)

// Locale is a supported language preference.
type Locale string

const (
	LocaleZH   Locale = "zh"
	LocaleZHTW Locale = "zh-TW"
	LocaleEN   Locale = "en"

	DefaultLocale = LocaleZH
)

// Catalog maps every Key to its text for one locale.
type Catalog [numKeys]string

var catalogs = map[Locale]*Catalog{
	LocaleZH:   &zhCatalog,
	LocaleZHTW: &zhTWCatalog,
	LocaleEN:   &enCatalog,
}

// Locales lists the supported locales.
func Locales() []Locale {
	return []Locale{LocaleZH, LocaleZHTW, LocaleEN}
}

// ParseLocale accepts stored preferences and Accept-Language style tags.
func ParseLocale(raw string) (Locale, bool) {
	tag := strings.TrimSpace(raw)
	if tag == "" {
		return DefaultLocale, false
	}
	lower := strings.ToLower(strings.ReplaceAll(tag, "_", "-"))
	switch {
	case lower == "zh-tw", lower == "zh-hk", lower == "zh-hant", strings.HasPrefix(lower, "zh-hant-"):
		return LocaleZHTW, true
	case lower == "zh", strings.HasPrefix(lower, "zh-"):
		return LocaleZH, true
	case lower == "en", strings.HasPrefix(lower, "en-"):
		return LocaleEN, true
	}
	return DefaultLocale, false
}

// FromAcceptLanguage picks the first supported tag in an Accept-Language header.
func FromAcceptLanguage(header string) Locale {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if loc, ok := ParseLocale(tag); ok {
			return loc
		}
	}
	return DefaultLocale
}

// Label is the name of the locale in its own language.
func (l Locale) Label() string {
	switch l {
	case LocaleZHTW:
		return "繁體中文"
	case LocaleEN:
		return "English"
	default:
		return "简体中文"
	}
}

// Translator renders messages for one locale.
type Translator struct {
	locale  Locale
	catalog *Catalog
}

// For returns a translator, unknown locales get the default catalog.
func For(locale Locale) Translator {
	catalog, ok := catalogs[locale]
	if !ok {
		locale = DefaultLocale
		catalog = catalogs[DefaultLocale]
	}
	return Translator{locale: locale, catalog: catalog}
}

// Locale returns the resolved locale.
func (t Translator) Locale() Locale {
	return t.locale
}

// T returns the message for key.
func (t Translator) T(key Key) string {
	if key < 0 || key >= numKeys {
		return ""
	}
	if msg := t.catalog[key]; msg != "" {
		return msg
	}
	return catalogs[DefaultLocale][key]
}

// Tf formats the message for key.
func (t Translator) Tf(key Key, args ...any) string {
	return fmt.Sprintf(t.T(key), args...)
}

// Dict exposes the catalog to templates keyed by Key.Name.
func (t Translator) Dict() map[string]string {
	out := make(map[string]string, numKeys)
	for _, k := range Keys() {
		out[k.Name()] = t.T(k)
	}
	return out
}
