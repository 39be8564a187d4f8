// Package fiscal holds the NF-e / NFC-e helpers the till needs: the 44-digit
// access key (chave de acesso) and its modulo-11 check digit, plus the
// per-company document configuration defaults.
package fiscal

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	BaseLength = 43
	KeyLength  = 44
)

var ErrInvalidLength = errors.New("invalid access key length")

// ErrInvalidPart reports an access key component that does not fit its field.
var ErrInvalidPart = errors.New("invalid access key part")

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// CheckDigit computes the DV of a 43-digit base: weights 2..9 applied
// right-to-left and repeated, remainder of the sum by 11, DV 0 when the
// remainder is 0 or 1, otherwise 11 minus the remainder.
func CheckDigit(base string) (int, error) {
	if len(base) != BaseLength || !allDigits(base) {
		return 0, fmt.Errorf("%w: want %d digits, got %q", ErrInvalidLength, BaseLength, base)
	}
	sum, weight := 0, 2
	for i := len(base) - 1; i >= 0; i-- {
		sum += int(base[i]-'0') * weight
		weight++
		if weight > 9 {
			weight = 2
		}
	}
	rem := sum % 11
	if rem < 2 {
		return 0, nil
	}
	return 11 - rem, nil
}

// Validate recomputes the DV over the first 43 digits and compares it to the last.
func Validate(key string) (bool, error) {
	if len(key) != KeyLength || !allDigits(key) {
		return false, fmt.Errorf("%w: want %d digits, got %q", ErrInvalidLength, KeyLength, key)
	}
	dv, err := CheckDigit(key[:BaseLength])
	if err != nil {
		return false, err
	}
	return int(key[BaseLength]-'0') == dv, nil
}

// Emission types (tpEmis).
const (
	EmissionNormal  = 1
	EmissionOffline = 9
)

// AccessKey holds the fields concatenated into a chave de acesso.
type AccessKey struct {
	UF           int       // IBGE state code
	IssuedAt     time.Time // only year and month are used
	CNPJ         string    // 14 digits
	Model        Model
	Series       int
	Number       int
	EmissionType int
	Code         int // cNF, 8 random digits
}

// Base renders the 43-digit body of the key.
func (k AccessKey) Base() (string, error) {
	switch {
	case k.UF < 11 || k.UF > 53:
		return "", fmt.Errorf("%w: uf %d", ErrInvalidPart, k.UF)
	case len(k.CNPJ) != 14 || !allDigits(k.CNPJ):
		return "", fmt.Errorf("%w: cnpj %q", ErrInvalidPart, k.CNPJ)
	case !k.Model.Valid():
		return "", fmt.Errorf("%w: model %d", ErrInvalidPart, k.Model)
	case k.Series < 0 || k.Series > 999:
		return "", fmt.Errorf("%w: series %d", ErrInvalidPart, k.Series)
	case k.Number < 1 || k.Number > 999999999:
		return "", fmt.Errorf("%w: number %d", ErrInvalidPart, k.Number)
	case k.EmissionType < 1 || k.EmissionType > 9:
		return "", fmt.Errorf("%w: emission type %d", ErrInvalidPart, k.EmissionType)
	case k.Code < 0 || k.Code > 99999999:
		return "", fmt.Errorf("%w: code %d", ErrInvalidPart, k.Code)
	}
	return fmt.Sprintf("%02d%02d%02d%s%02d%03d%09d%d%08d",
		k.UF,
		k.IssuedAt.Year()%100, int(k.IssuedAt.Month()),
		k.CNPJ,
		int(k.Model),
		k.Series,
		k.Number,
		k.EmissionType,
		k.Code,
	), nil
}

// String renders the full 44-digit key.
func (k AccessKey) String() (string, error) {
	base, err := k.Base()
	if err != nil {
		return "", err
	}
	dv, err := CheckDigit(base)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", base, dv), nil
}

// RandomCode returns a cNF that differs from the document number, as SEFAZ
// rejects keys whose code repeats the number.
func RandomCode(number int) int {
	for {
		c := rand.Intn(100000000)
		if c != number {
			return c
		}
	}
}
