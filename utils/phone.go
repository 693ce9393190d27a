package utils

import (
	"errors"
	"os"
	"strings"

	"github.com/ttacon/libphonenumber"
)

func defaultPhoneRegion() string {
	region := strings.ToUpper(strings.TrimSpace(os.Getenv("PHONE_DEFAULT_REGION")))
	if region == "" {
		return "KR"
	}
	return region
}

// NormalizePhone parses and normalizes a phone number into E.164.
// Empty input is passed through; notification delivery just skips it.
func NormalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	num, err := libphonenumber.Parse(raw, defaultPhoneRegion())
	if err != nil {
		return "", err
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", errors.New("invalid phone number")
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}
