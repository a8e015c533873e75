package portal

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to read numbers typed without a country code.
const DefaultPhoneRegion = "CN"

// NormalizePhone formats raw as E.164 using region for national numbers. When
// the number cannot be parsed the trimmed input is returned.
func NormalizePhone(raw, region string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if region == "" {
		region = DefaultPhoneRegion
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil {
		return raw
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

// PhoneVariants returns the stored forms a phone might be saved under.
func PhoneVariants(raw, region string) []string {
	raw = strings.TrimSpace(raw)
	normalized := NormalizePhone(raw, region)

	out := []string{normalized}
	if raw != normalized && raw != "" {
		out = append(out, raw)
	}
	if trimmed := strings.TrimPrefix(normalized, "+"); trimmed != normalized {
		out = append(out, trimmed)
	}
	return out
}
