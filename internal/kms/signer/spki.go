package signer

import (
	encoding_asn1 "encoding/asn1"

	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

var (
	// id-ecPublicKey, RFC 5480
	OIDPublicKeyECDSA = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	// secp256k1, SEC 2
	OIDNamedCurveSecp256k1 = encoding_asn1.ObjectIdentifier{1, 3, 132, 0, 10}
)

// SubjectPublicKeyInfo 解析后的 SPKI 结构
type SubjectPublicKeyInfo struct {
	Algorithm encoding_asn1.ObjectIdentifier
	Curve     encoding_asn1.ObjectIdentifier
	// Point is the SEC1 encoded point carried in the BIT STRING.
	Point []byte
}

// ParseSubjectPublicKeyInfo 解析 DER 编码的 SubjectPublicKeyInfo
// 算法必须为 id-ecPublicKey，曲线参数必须为 secp256k1，否则返回 ErrUnsupportedKeyFormat
func ParseSubjectPublicKeyInfo(der []byte) (*SubjectPublicKeyInfo, error) {
	var (
		input = cryptobyte.String(der)
		spki  cryptobyte.String
		algo  cryptobyte.String
		info  SubjectPublicKeyInfo
		bits  encoding_asn1.BitString
	)

	if !input.ReadASN1(&spki, asn1.SEQUENCE) || !input.Empty() {
		return nil, errors.Wrap(ErrUnsupportedKeyFormat, "expected a single DER sequence")
	}
	if !spki.ReadASN1(&algo, asn1.SEQUENCE) {
		return nil, errors.Wrap(ErrUnsupportedKeyFormat, "missing algorithm identifier")
	}
	if !algo.ReadASN1ObjectIdentifier(&info.Algorithm) {
		return nil, errors.Wrap(ErrUnsupportedKeyFormat, "missing algorithm oid")
	}
	if !info.Algorithm.Equal(OIDPublicKeyECDSA) {
		return nil, errors.Wrapf(ErrUnsupportedKeyFormat, "algorithm %s is not id-ecPublicKey", info.Algorithm)
	}
	if !algo.ReadASN1ObjectIdentifier(&info.Curve) || !algo.Empty() {
		return nil, errors.Wrap(ErrUnsupportedKeyFormat, "missing named curve parameters")
	}
	if !info.Curve.Equal(OIDNamedCurveSecp256k1) {
		return nil, errors.Wrapf(ErrUnsupportedKeyFormat, "curve %s is not secp256k1", info.Curve)
	}
	if !spki.ReadASN1BitString(&bits) || !spki.Empty() {
		return nil, errors.Wrap(ErrUnsupportedKeyFormat, "invalid subject public key bit string")
	}
	if bits.BitLength%8 != 0 {
		return nil, errors.Wrap(ErrUnsupportedKeyFormat, "subject public key is not byte aligned")
	}

	info.Point = bits.RightAlign()
	return &info, nil
}
