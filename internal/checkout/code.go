package checkout

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"gorm.io/gorm"

	"github.com/Keoroanthony/go-storefront/internal/models"
)

const maxCodeAttempts = 50

var (
	ErrOrderCodeExhausted = errors.New("could not allocate a unique order code")

	codeSpace = new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)
)

// CodeSource yields candidate order codes.
type CodeSource func() (string, error)

// RandomCode draws a 12 digit, zero-padded code from crypto/rand.
func RandomCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%012d", n.Int64()), nil
}

// allocateCode returns a code no existing order uses. The unique index on
// order_code still decides races between concurrent checkouts.
func allocateCode(ctx context.Context, tx *gorm.DB, next CodeSource) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code, err := next()
		if err != nil {
			return "", err
		}
		var count int64
		if err := tx.WithContext(ctx).Model(&models.Order{}).Where("order_code = ?", code).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrOrderCodeExhausted
}
