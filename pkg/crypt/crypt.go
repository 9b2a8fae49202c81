// Package crypt selects the decryption implementation at runtime. Format
// readers hold a Provider instead of calling crypto/aes directly, so a build
// can run with decryption disabled and still parse everything that does not
// need plaintext.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
)

var (
	ErrNoSupport = errors.New("crypt: decryption support disabled")
)

// Provider creates block cipher modes for the formats that need them. All
// returned modes decrypt; nothing in the reading path ever encrypts.
type Provider interface {
	NewCBCDecrypter(key, iv []byte) (cipher.BlockMode, error)
	NewECBDecrypter(key []byte) (cipher.BlockMode, error)
}

// Default returns the provider used when a Config does not override it.
func Default() Provider {
	return AES{}
}

// AES implements Provider over the standard AES cipher.
type AES struct{}

func (AES) NewCBCDecrypter(key, iv []byte) (cipher.BlockMode, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: init cipher: %w", err)
	}
	if len(iv) != block.BlockSize() {
		return nil, fmt.Errorf("crypt: iv length %d, want %d", len(iv), block.BlockSize())
	}
	return cipher.NewCBCDecrypter(block, iv), nil
}

func (AES) NewECBDecrypter(key []byte) (cipher.BlockMode, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("crypt: init cipher: %w", err)
	}
	return ecbDecrypter{block}, nil
}

// ecbDecrypter runs the block cipher independently per block. Only key
// verification uses it; content data is always CBC.
type ecbDecrypter struct {
	b cipher.Block
}

func (e ecbDecrypter) BlockSize() int {
	return e.b.BlockSize()
}

func (e ecbDecrypter) CryptBlocks(dst, src []byte) {
	bs := e.b.BlockSize()
	if len(src)%bs != 0 {
		panic("crypt: input not full blocks")
	}
	if len(dst) < len(src) {
		panic("crypt: output smaller than input")
	}
	for len(src) > 0 {
		e.b.Decrypt(dst, src[:bs])
		src = src[bs:]
		dst = dst[bs:]
	}
}

// Disabled is the stub provider for builds that must not carry decryption.
// Every constructor fails with ErrNoSupport and callers degrade gracefully.
type Disabled struct{}

func (Disabled) NewCBCDecrypter(key, iv []byte) (cipher.BlockMode, error) {
	return nil, ErrNoSupport
}

func (Disabled) NewECBDecrypter(key []byte) (cipher.BlockMode, error) {
	return nil, ErrNoSupport
}
