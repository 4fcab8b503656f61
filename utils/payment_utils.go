package utils

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strings"
	"time"
)

//
// ===========================================================
//  ENV UTILITIES
// ===========================================================
//

// EnvOrDefault returns ENV value or fallback default.
func EnvOrDefault(key, def string) string {
	v := os.Getenv(key)
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

//
// ===========================================================
//  TRANSACTION / ORDER IDENTIFIERS
// ===========================================================
//

var txnIDPattern = regexp.MustCompile(`^txn_[0-9a-f]{16}$`)

// GenerateTxnID creates a PayU transaction identifier: "txn_" followed by
// 8 random bytes hex-encoded (16 hex chars).
func GenerateTxnID() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "txn_" + hex.EncodeToString(b), nil
}

// IsValidTxnID checks the txn_<16 hex> shape.
func IsValidTxnID(id string) bool {
	return txnIDPattern.MatchString(id)
}

// GenerateOrderID creates a Cashfree order identifier:
// "ORDER_<unix-millis>_<random 0-9999>".
func GenerateOrderID() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ORDER_%d_%d", time.Now().UnixMilli(), n.Int64()), nil
}

//
// ===========================================================
//  PAYU HASH
// ===========================================================
//

// BuildPayuHashString assembles the delimited string PayU signs. The field
// sequence is critical and must be exactly:
// key|txnid|amount|productinfo|firstname|email|||||||||||salt
func BuildPayuHashString(key, txnid, amount, productinfo, firstname, email, salt string) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s|%s|||||||||||%s",
		key, txnid, amount, productinfo, firstname, email, salt)
}

// GeneratePayuHash computes the SHA-512 hex digest over the exact hash
// string sequence. Returns 128 hex characters.
func GeneratePayuHash(key, txnid, amount, productinfo, firstname, email, salt string) (string, error) {
	if key == "" || salt == "" {
		return "", errors.New("payu_credentials_missing")
	}
	sum := sha512.Sum512([]byte(BuildPayuHashString(key, txnid, amount, productinfo, firstname, email, salt)))
	return hex.EncodeToString(sum[:]), nil
}

// GenerateSecureToken creates a hex token (length = bytes).
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", errors.New("invalid token length")
	}
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
