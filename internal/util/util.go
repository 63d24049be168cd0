package util

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// exportScope is the message signed into CSV export tokens.
const exportScope = "export:orders"

// ParseYesNo reads a loose boolean. ok is false when s is neither.
func ParseYesNo(s string) (value, ok bool) {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "yes", "y", "true", "1", "on", "да":
		return true, true
	case "no", "n", "false", "0", "off", "нет":
		return false, true
	default:
		return false, false
	}
}

func HMACSHA256Hex(secret, msg string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(msg))
	return hex.EncodeToString(mac.Sum(nil))
}

func ExportToken(secret string) string {
	return HMACSHA256Hex(secret, exportScope)
}

func ValidExportToken(secret, token string) bool {
	if token == "" {
		return false
	}
	return hmac.Equal([]byte(token), []byte(ExportToken(secret)))
}
