package security

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// WindowToken derives the rotating security token for one check-in window.
// Derivation is deterministic over (event, number, window start) so a
// re-scheduled identical window yields the same token.
func WindowToken(secret string, eventID int64, checkinNumber int, opensAt time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d|%d|%d", eventID, checkinNumber, opensAt.Unix())
	return hex.EncodeToString(mac.Sum(nil))[:32]
}

// TokensEqual compares tokens in constant time.
func TokensEqual(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}

// QRClaims is the signed payload rendered as the venue's rotating QR code.
// The raw fields are what the check-in endpoint accepts back.
type QRClaims struct {
	EventID       int64  `json:"event_id"`
	CheckinNumber int    `json:"checkin_number"`
	SecurityToken string `json:"security_token"`
	jwt.RegisteredClaims
}

// SignQRPayload produces the compact JWT string embedded in the QR image.
// The token expires with the window so stale displays cannot be replayed
// even before server-side validation runs.
func SignQRPayload(secret string, eventID int64, checkinNumber int, securityToken string, issuedAt, expiresAt time.Time) (string, error) {
	claims := &QRClaims{
		EventID:       eventID,
		CheckinNumber: checkinNumber,
		SecurityToken: securityToken,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseQRPayload validates and decodes a QR payload string.
func ParseQRPayload(tokenString, secret string) (*QRClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &QRClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})

	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*QRClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// CheckoutClaims is the signed payload a PDV terminal renders for a checkout.
type CheckoutClaims struct {
	Code string `json:"code"`
	jwt.RegisteredClaims
}

// SignCheckoutPayload produces the QR string for a checkout reservation,
// expiring together with the reservation itself.
func SignCheckoutPayload(secret, code string, expiresAt time.Time) (string, error) {
	claims := &CheckoutClaims{
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// GenerateSecureCode generates a short human-typeable random code.
func GenerateSecureCode(length int) string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand.Read never fails on supported platforms.
		panic(err)
	}
	for i := range b {
		b[i] = charset[int(b[i])%len(charset)]
	}
	return string(b)
}
