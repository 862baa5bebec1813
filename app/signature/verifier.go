// Package signature authenticates webhook deliveries from the Yodl indexer.
//
// The indexer signs the JSON body with an EIP-191 personal message signature and
// sends it hex-encoded in the X-Yodl-Signature header. Exactly one signer address
// is trusted. The signed message is the compact JSON serialization of the body,
// so the verifier has to reproduce the signer's bytes exactly: see Canonicalize.
package signature

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

const SignatureHeader = "X-Yodl-Signature"

const signatureLength = crypto.SignatureLength

type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindMalformedBody
	KindMissingSignature
	KindSignatureMismatch
)

// VerificationError classifies every way a delivery can be refused. Status is the
// HTTP status the delivery should be answered with.
type VerificationError struct {
	Kind    Kind
	Status  int
	Message string
	Err     error
}

func (e *VerificationError) Error() string {
	return e.Message
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

var (
	ErrSignerNotConfigured = errors.New("YODL_SIGNING_ADDRESS address is not set")
	ErrInvalidSigner       = errors.New("YODL_SIGNING_ADDRESS is not a valid address")
	ErrMalformedBody       = errors.New("Invalid JSON body")
	ErrMissingSignature    = errors.New("Missing or invalid signature")
	ErrSignatureMismatch   = errors.New("Signature verification failed")
)

type Verifier struct {
	signer string
}

func NewVerifier(trustedSigner string) *Verifier {
	return &Verifier{signer: strings.TrimSpace(trustedSigner)}
}

// VerifiedJSON checks the signature over body and returns body unchanged when it
// was produced by the trusted signer.
func (v *Verifier) VerifiedJSON(body []byte, signatureHex string) (json.RawMessage, error) {
	signer, err := v.trustedSigner()
	if err != nil {
		return nil, err
	}

	message, err := Canonicalize(body)
	if err != nil {
		return nil, newError(KindMalformedBody, http.StatusBadRequest, ErrMalformedBody, err)
	}

	sig, err := decodeSignature(signatureHex)
	if err != nil {
		return nil, newError(KindMissingSignature, http.StatusBadRequest, ErrMissingSignature, err)
	}

	recovered, err := RecoverSigner(message, sig)
	if err != nil || recovered != signer {
		return nil, newError(KindSignatureMismatch, http.StatusBadRequest, ErrSignatureMismatch, err)
	}

	return json.RawMessage(body), nil
}

func (v *Verifier) trustedSigner() (common.Address, error) {
	if v.signer == "" {
		return common.Address{}, newError(KindConfiguration, http.StatusInternalServerError, ErrSignerNotConfigured, nil)
	}
	if !common.IsHexAddress(v.signer) {
		return common.Address{}, newError(KindConfiguration, http.StatusInternalServerError, ErrInvalidSigner, nil)
	}
	return common.HexToAddress(v.signer), nil
}

// Canonicalize returns the exact bytes the indexer signs: the body re-serialized
// without insignificant whitespace. Key order, number literals and string escapes
// are kept as sent, which matches JSON.stringify on the signer side for the
// compact, ASCII payloads the indexer emits. A body carrying \u escapes or
// numbers like 1.50 would not survive a parse/stringify round trip unchanged.
func Canonicalize(body []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return nil, errors.New("body is not valid JSON")
	}

	var out bytes.Buffer
	if err := json.Compact(&out, trimmed); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// RecoverSigner returns the address that produced an EIP-191 signature over message.
func RecoverSigner(message []byte, sig []byte) (common.Address, error) {
	if len(sig) != signatureLength {
		return common.Address{}, errors.New("signature must be 65 bytes")
	}

	normalized := make([]byte, signatureLength)
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(accounts.TextHash(message), normalized)
	if err != nil {
		return common.Address{}, err
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// Sign produces a signature the Verifier accepts for body, as the indexer would.
func Sign(key *ecdsa.PrivateKey, body []byte) (string, error) {
	message, err := Canonicalize(body)
	if err != nil {
		return "", err
	}

	sig, err := crypto.Sign(accounts.TextHash(message), key)
	if err != nil {
		return "", err
	}
	sig[crypto.RecoveryIDOffset] += 27

	return hexutil.Encode(sig), nil
}

func decodeSignature(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("signature header is empty")
	}

	sig, err := hexutil.Decode(raw)
	if err != nil {
		return nil, err
	}
	if len(sig) != signatureLength {
		return nil, errors.New("signature must be 65 bytes")
	}
	return sig, nil
}

func newError(kind Kind, status int, sentinel error, cause error) *VerificationError {
	err := sentinel
	if cause != nil {
		err = errors.Join(sentinel, cause)
	}
	return &VerificationError{Kind: kind, Status: status, Message: sentinel.Error(), Err: err}
}
