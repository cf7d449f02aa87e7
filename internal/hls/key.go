package hls

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
	"io"
	"net/http"

	"github.com/Lysagxra/HanimeDownloader/internal/model"
)

// EncryptionKey holds resolved AES-128 key material. Shared read-only across
// all segment decrypts of one job.
type EncryptionKey struct {
	block      cipher.Block
	explicitIV []byte
}

// ResolveKey fetches the key bytes referenced by spec. The key must be
// exactly one AES-128 block.
func ResolveKey(ctx context.Context, httpClient *http.Client, spec *EncryptionSpec) (*EncryptionKey, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, spec.URI, nil)
	if err != nil {
		return nil, &model.FetchError{URL: spec.URI, Err: err}
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, &model.FetchError{URL: spec.URI, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &model.FetchError{URL: spec.URI, Status: resp.StatusCode}
	}
	keyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &model.FetchError{URL: spec.URI, Err: err}
	}
	if len(keyBytes) != aes.BlockSize {
		return nil, &model.InvalidKeyError{URI: spec.URI, Length: len(keyBytes)}
	}

	return NewEncryptionKey(keyBytes, spec.IV)
}

func NewEncryptionKey(key, explicitIV []byte) (*EncryptionKey, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &model.InvalidKeyError{Length: len(key)}
	}
	return &EncryptionKey{block: block, explicitIV: explicitIV}, nil
}

// ivFor returns the IV for a segment: the playlist's explicit IV when
// present, otherwise the media sequence number as a 16-byte big-endian
// value (RFC 8216 section 5.2).
func (k *EncryptionKey) ivFor(sequence uint64) []byte {
	if k.explicitIV != nil {
		return k.explicitIV
	}
	iv := make([]byte, aes.BlockSize)
	binary.BigEndian.PutUint64(iv[8:], sequence)
	return iv
}

// Decrypt decrypts one segment's ciphertext in CBC mode and strips PKCS#7
// padding.
func (k *EncryptionKey) Decrypt(seg Segment, data []byte) ([]byte, error) {
	if len(data) == 0 || len(data)%aes.BlockSize != 0 {
		return nil, &model.DecryptError{
			Index: seg.Index,
			Err:   fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(data)),
		}
	}

	plaintext := make([]byte, len(data))
	cipher.NewCBCDecrypter(k.block, k.ivFor(seg.Sequence)).CryptBlocks(plaintext, data)

	unpadded, err := stripPKCS7(plaintext)
	if err != nil {
		return nil, &model.DecryptError{Index: seg.Index, Err: err}
	}
	return unpadded, nil
}

func stripPKCS7(data []byte) ([]byte, error) {
	n := int(data[len(data)-1])
	if n == 0 || n > aes.BlockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding length %d", n)
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("inconsistent padding bytes")
		}
	}
	return data[:len(data)-n], nil
}
