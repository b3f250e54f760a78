package types

// PostSignPayload POST /api/v1/sign 请求体
type PostSignPayload struct {
	// MessageHex is the hex encoded message, an optional 0x prefix is accepted.
	MessageHex string `json:"message_hex" validate:"required,hexadecimal"`
}

type PostSignResponse struct {
	KeyID     string `json:"key_id"`
	Signature string `json:"signature"`
}

// PostSignBatchPayload POST /api/v1/sign/batch 请求体
type PostSignBatchPayload struct {
	MessagesHex []string `json:"messages_hex" validate:"required,min=1,max=256,dive,hexadecimal"`
}

type PostSignBatchResponse struct {
	KeyID      string   `json:"key_id"`
	Signatures []string `json:"signatures"`
}

type GetPublicKeyResponse struct {
	KeyID        string `json:"key_id"`
	PublicKey    string `json:"public_key"`
	PublicKeyDER string `json:"public_key_der"`
	EVMAddress   string `json:"evm_address"`
	Digest       string `json:"digest"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Uptime    string `json:"uptime,omitempty"`
}
