package signer

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

const (
	// ScalarLength secp256k1 标量（r、s）的定长编码长度
	ScalarLength = 32
	// RawSignatureLength r||s 签名长度
	RawSignatureLength = 2 * ScalarLength
)

// ParseDERSignature 解析 DER 编码的 SEQUENCE { r INTEGER, s INTEGER }
// 返回 r、s 的内容字节（可能带符号位前导零），不允许尾随数据和负数
func ParseDERSignature(der []byte) (r, s []byte, err error) {
	var (
		input = cryptobyte.String(der)
		inner cryptobyte.String
		rb    cryptobyte.String
		sb    cryptobyte.String
	)

	if !input.ReadASN1(&inner, asn1.SEQUENCE) || !input.Empty() {
		return nil, nil, errors.Wrap(ErrMalformedSignature, "expected a single DER sequence")
	}
	if !inner.ReadASN1(&rb, asn1.INTEGER) || !inner.ReadASN1(&sb, asn1.INTEGER) || !inner.Empty() {
		return nil, nil, errors.Wrap(ErrMalformedSignature, "expected exactly two DER integers")
	}
	if err := checkUnsignedInteger(rb); err != nil {
		return nil, nil, errors.Wrap(err, "invalid r")
	}
	if err := checkUnsignedInteger(sb); err != nil {
		return nil, nil, errors.Wrap(err, "invalid s")
	}
	return rb, sb, nil
}

func checkUnsignedInteger(b []byte) error {
	if len(b) == 0 {
		return errors.Wrap(ErrMalformedSignature, "empty integer")
	}
	if b[0]&0x80 != 0 {
		return errors.Wrap(ErrMalformedSignature, "negative integer")
	}
	return nil
}

// FixedWidth 将无符号大端整数编码为恰好 size 字节
//   - 长度相等：原样复制
//   - 较短：左侧补零
//   - 较长：去掉前导零（DER 符号位），仍超长则返回 ErrMalformedSignature
func FixedWidth(b []byte, size int) ([]byte, error) {
	out := make([]byte, size)
	switch {
	case len(b) == size:
		copy(out, b)
	case len(b) < size:
		copy(out[size-len(b):], b)
	default:
		extra := len(b) - size
		for i := 0; i < extra; i++ {
			if b[i] != 0 {
				return nil, errors.Wrapf(ErrMalformedSignature, "integer needs %d bytes, more than %d", len(b)-i, size)
			}
		}
		copy(out, b[extra:])
	}
	return out, nil
}

// DERToRaw 将 DER 签名转换为 64 字节 r||s
func DERToRaw(der []byte) ([]byte, error) {
	r, s, err := ParseDERSignature(der)
	if err != nil {
		return nil, err
	}

	rFixed, err := FixedWidth(r, ScalarLength)
	if err != nil {
		return nil, errors.Wrap(err, "r")
	}
	sFixed, err := FixedWidth(s, ScalarLength)
	if err != nil {
		return nil, errors.Wrap(err, "s")
	}

	raw := make([]byte, 0, RawSignatureLength)
	raw = append(raw, rFixed...)
	return append(raw, sFixed...), nil
}
