package utils

import (
	"regexp"
	"strings"
	"time"

	"github.com/KelluuhShit/loan-mpesa/internal/pkg/consts"
)

var (
	validMSISDN = regexp.MustCompile(consts.ValidMSISDNPattern)
	nationalID  = regexp.MustCompile(consts.NationalIDPattern)
	alphaSpace  = regexp.MustCompile(consts.AlphaSpacePattern)
)

// NormalizeMSISDN converts 0XXXXXXXXX and +254XXXXXXXXX to 254XXXXXXXXX and
// rejects anything that does not end up matching 254[17]XXXXXXXX.
func NormalizeMSISDN(raw string) (string, error) {
	msisdn := strings.TrimSpace(raw)

	switch {
	case strings.HasPrefix(msisdn, "+"):
		msisdn = msisdn[1:]
	case strings.HasPrefix(msisdn, "0") && len(msisdn) == 10:
		msisdn = consts.KenyaCountryCode + msisdn[1:]
	}

	if !validMSISDN.MatchString(msisdn) {
		return "", consts.ErrorMSISDNNotValid
	}
	return msisdn, nil
}

// IsValidMSISDN reports whether raw normalizes to a valid mobile number.
func IsValidMSISDN(raw string) bool {
	_, err := NormalizeMSISDN(raw)
	return err == nil
}

func IsValidNationalID(id string) bool {
	return nationalID.MatchString(id)
}

func IsAlphaSpace(s string) bool {
	return alphaSpace.MatchString(strings.TrimSpace(s))
}

// IsAdult reports whether dob (yyyy-MM-dd) is before today and at least
// MinimumApplicantAge years before now.
func IsAdult(dob string, now time.Time) bool {
	born, err := time.ParseInLocation(consts.DateOfBirthLayout, strings.TrimSpace(dob), now.Location())
	if err != nil {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !born.Before(today) {
		return false
	}
	return !born.After(today.AddDate(-consts.MinimumApplicantAge, 0, 0))
}
