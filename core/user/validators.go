package user

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/internhub/core"
)

var (
	statusTag  = "userstatus"
	statusText = "must be one of: " + strings.Join(AllStatuses, ", ")

	// password policy
	pwdMinLen        = 8
	pwdMinLenText    = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)
	pwdNoSpaceText   = "password must not contain whitespace"
	pwdNotAllNumText = "password cannot be entirely numeric"
	pwdMaxSim        = .7
	pwdAttrSimText   = "password cannot be similar to your name or email"

	// temporary passwords: no look-alike characters
	tmpPwdAlphabet = "abcdefghjkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789!@#$%*?"
)

// InitValidators registers the user validators & their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(validate, translator, statusTag, statusText)
}

// statusValidation checks that the field is one of AllStatuses.
func statusValidation(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	for _, s := range AllStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// CheckPasswordPolicy returns a description of the first rule pwd breaks, or "" if it passes:
// - minLen: 8
// - no whitespace
// - no all numeric
// - no similarity with the user attributes
func CheckPasswordPolicy(pwd string, attrs ...string) string {
	var digitCount int

	pwdLen := len([]rune(pwd))
	if pwdLen < pwdMinLen {
		return pwdMinLenText
	}
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return pwdNoSpaceText
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == pwdLen {
		return pwdNotAllNumText
	}

	lpwd := strings.ToLower(pwd)
	for _, attr := range attrs {
		attr = strings.ToLower(attr)
		if attr == "" {
			continue
		}
		// compare with the local part of emails too
		candidates := []string{attr}
		if i := strings.Index(attr, "@"); i > 0 {
			candidates = append(candidates, attr[:i])
		}
		for _, c := range candidates {
			ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(c, "")).QuickRatio()
			if ratio >= pwdMaxSim {
				return pwdAttrSimText
			}
		}
	}
	return ""
}

// GeneratePassword returns a random password of length n drawn from a crypto source.
func GeneratePassword(n int) (string, error) {
	if n < pwdMinLen {
		n = pwdMinLen
	}
	max := big.NewInt(int64(len(tmpPwdAlphabet)))
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(tmpPwdAlphabet[idx.Int64()])
	}
	return sb.String(), nil
}
