package ddb

import (
	"encoding/base64"
	"encoding/json"

	"github.com/akihokurino/canvas-nft-generator/apperrors"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PagingKey is an opaque, round-trippable encoding of a store-native
// "last evaluated key" record. The zero value denotes start-of-sequence.
//
// Wire format: base64 of a JSON object mapping attribute name to
// {"S": string} or {"N": numeric-string}.
type PagingKey struct {
	val map[string]types.AttributeValue
}

type pagingAttr struct {
	S *string `json:"S,omitempty"`
	N *string `json:"N,omitempty"`
}

// NewPagingKey wraps a raw key record. A nil or empty record yields the
// zero key.
func NewPagingKey(val map[string]types.AttributeValue) PagingKey {
	if len(val) == 0 {
		return PagingKey{}
	}
	return PagingKey{val: val}
}

// IsZero reports whether the key denotes start-of-sequence.
func (k PagingKey) IsZero() bool { return len(k.val) == 0 }

// Attributes returns the raw key record for use as an exclusive start key,
// or nil for the zero key.
func (k PagingKey) Attributes() map[string]types.AttributeValue {
	if k.IsZero() {
		return nil
	}
	return k.val
}

// Encode serializes the key into an opaque cursor. The zero key encodes to
// the empty string. Key records only ever hold S and N scalars.
func (k PagingKey) Encode() string {
	if k.IsZero() {
		return ""
	}
	wire := make(map[string]pagingAttr, len(k.val))
	for name, av := range k.val {
		switch v := av.(type) {
		case *types.AttributeValueMemberS:
			s := v.Value
			wire[name] = pagingAttr{S: &s}
		case *types.AttributeValueMemberN:
			n := v.Value
			wire[name] = pagingAttr{N: &n}
		}
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(raw)
}

// DecodePagingKey parses an opaque cursor. A tampered cursor fails as
// BadRequest; it never yields a wrong-but-valid key.
func DecodePagingKey(cursor string) (PagingKey, error) {
	if cursor == "" {
		return PagingKey{}, nil
	}
	raw, err := base64.StdEncoding.DecodeString(cursor)
	if err != nil {
		return PagingKey{}, apperrors.BadRequestf("invalid cursor")
	}
	var wire map[string]pagingAttr
	if err := json.Unmarshal(raw, &wire); err != nil {
		return PagingKey{}, apperrors.BadRequestf("invalid cursor")
	}
	val := make(map[string]types.AttributeValue, len(wire))
	for name, attr := range wire {
		switch {
		case attr.S != nil && attr.N == nil:
			val[name] = &types.AttributeValueMemberS{Value: *attr.S}
		case attr.N != nil && attr.S == nil:
			val[name] = &types.AttributeValueMemberN{Value: *attr.N}
		default:
			return PagingKey{}, apperrors.BadRequestf("invalid cursor")
		}
	}
	return NewPagingKey(val), nil
}

// Pager resolves relay-style pagination arguments into a storage scan.
//
// Exactly one of {after+first, before+last, neither} is accepted. The pager
// over-fetches by one row to detect that more pages exist without a count
// query; the resulting hasPrevious/hasNext flags are a heuristic, not an
// exact count.
type Pager struct {
	limit   int32
	forward bool
	key     PagingKey
}

// NewPager validates and resolves (after, before, first, last).
// The four conflicting pairs (after+before, first+last, after+last,
// before+first) fail as BadRequest.
func NewPager(after *string, before *string, first *int32, last *int32, defaultLimit int32) (*Pager, error) {
	switch {
	case after != nil && before != nil:
		return nil, apperrors.BadRequestf("cannot use after and before together")
	case first != nil && last != nil:
		return nil, apperrors.BadRequestf("cannot use first and last together")
	case after != nil && last != nil:
		return nil, apperrors.BadRequestf("cannot use after and last together")
	case before != nil && first != nil:
		return nil, apperrors.BadRequestf("cannot use before and first together")
	}

	p := &Pager{limit: defaultLimit, forward: true}

	switch {
	case after != nil:
		key, err := DecodePagingKey(*after)
		if err != nil {
			return nil, err
		}
		p.key = key
		if first != nil {
			p.limit = *first
		}
	case before != nil:
		key, err := DecodePagingKey(*before)
		if err != nil {
			return nil, err
		}
		p.key = key
		p.forward = false
		if last != nil {
			p.limit = *last
		}
	case first != nil:
		p.limit = *first
	case last != nil:
		p.forward = false
		p.limit = *last
	}

	if p.limit <= 0 {
		return nil, apperrors.BadRequestf("page size must be positive")
	}
	return p, nil
}

// Forward reports the scan direction.
func (p *Pager) Forward() bool { return p.forward }

// Limit is the requested page size.
func (p *Pager) Limit() int32 { return p.limit }

// QueryLimit is the storage fetch size including the over-fetch sentinel.
func (p *Pager) QueryLimit() int32 { return p.limit + 1 }

// ExclusiveStartKey returns the resume position, or nil for
// start-of-sequence.
func (p *Pager) ExclusiveStartKey() map[string]types.AttributeValue {
	return p.key.Attributes()
}

// EntityWithCursor pairs an entity with its store-native resume position at
// the time of the read.
type EntityWithCursor[E any] struct {
	Entity E
	Cursor PagingKey
}

// Page is one window of a paginated result set.
type Page[E any] struct {
	Items       []EntityWithCursor[E]
	HasPrevious bool
	HasNext     bool
}

// NewPage trims the over-fetch sentinel from fetched rows and derives the
// page flags. In the scan direction, "more pages" is true iff the sentinel
// row was actually returned; in the opposite direction it is true iff a
// cursor was supplied (there is necessarily a page behind the cursor).
func NewPage[E any](p *Pager, fetched []EntityWithCursor[E]) Page[E] {
	more := int32(len(fetched)) >= p.QueryLimit()
	items := fetched
	if more {
		items = fetched[:p.limit]
	}
	behind := !p.key.IsZero()
	if p.forward {
		return Page[E]{Items: items, HasPrevious: behind, HasNext: more}
	}
	return Page[E]{Items: items, HasPrevious: more, HasNext: behind}
}
