//go:build !ios && !android && (amd64 || arm64)

package spgo

import "fmt"

// CountryCode packs a two-letter ISO 3166-1 country code the way libspotify
// stores it: first letter in the high byte, second in the low byte.
func CountryCode(country string) (int, error) {
	if len(country) != 2 || !isUpper(country[0]) || !isUpper(country[1]) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCountry, country)
	}
	return int(country[0])<<8 | int(country[1]), nil
}

// Country unpacks a code produced by CountryCode.
func Country(code int) string {
	return string([]byte{byte(code >> 8), byte(code)})
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
