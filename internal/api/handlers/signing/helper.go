package signing

import (
	"encoding/hex"
	"strings"
)

// decodeMessageHex 解码可带 0x 前缀的十六进制消息，空消息合法
func decodeMessageHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}
