package ddb

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akihokurino/canvas-nft-generator/domain"
)

// ErrPrefixMismatch is returned when an encoded key does not carry the
// expected type discriminator.
var ErrPrefixMismatch = errors.New("key prefix mismatch")

// KeyCodec derives the stored key string for one identifier kind and parses
// it back. The discriminator prefix prevents cross-kind key confusion when
// multiple entity kinds share one physical table.
type KeyCodec[ID ~string] struct {
	prefix string
}

// NewKeyCodec creates a codec with the given type discriminator.
func NewKeyCodec[ID ~string](prefix string) KeyCodec[ID] {
	return KeyCodec[ID]{prefix: prefix}
}

// Typename returns the discriminator, which doubles as the glk partition
// value for full-kind listings.
func (c KeyCodec[ID]) Typename() string { return c.prefix }

// Encode derives the stored key string.
func (c KeyCodec[ID]) Encode(id ID) string {
	return c.prefix + "#" + string(id)
}

// Decode strips the expected discriminator or fails.
func (c KeyCodec[ID]) Decode(encoded string) (ID, error) {
	raw, ok := strings.CutPrefix(encoded, c.prefix+"#")
	if !ok {
		return "", fmt.Errorf("%q: %w", encoded, ErrPrefixMismatch)
	}
	return ID(raw), nil
}

var (
	contractKey = NewKeyCodec[domain.ContractAddress]("contract")
	tokenKey    = NewKeyCodec[domain.TokenID]("token")
)

// walletSchemaKey joins the index key for "latest contract of wallet+schema"
// queries. Both halves are delimiter-free: addresses are hex strings and
// schema names contain no underscore.
func walletSchemaKey(walletAddress domain.WalletAddress, schema domain.Schema) string {
	return string(walletAddress) + "_" + string(schema)
}
