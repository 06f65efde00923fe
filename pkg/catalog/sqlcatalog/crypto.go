package sqlcatalog

import (
	"crypto/rand"
	"crypto/sha256"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

func deriveKey(secret string) *[keySize]byte {
	sum := sha256.Sum256([]byte(secret))
	return &sum
}

// seal encrypts plaintext as nonce || box.
func seal(key *[keySize]byte, plaintext string) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return nil, errors.Wrap(err, "generate nonce")
	}
	return secretbox.Seal(nonce[:], []byte(plaintext), &nonce, key), nil
}

func unseal(key *[keySize]byte, payload []byte) (string, error) {
	if len(payload) < nonceSize+secretbox.Overhead {
		return "", errors.New("sealed value too short")
	}
	var nonce [nonceSize]byte
	copy(nonce[:], payload[:nonceSize])
	plain, ok := secretbox.Open(nil, payload[nonceSize:], &nonce, key)
	if !ok {
		return "", errors.New("cannot decrypt sensitive value; wrong encryption key?")
	}
	return string(plain), nil
}
