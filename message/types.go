package message

import (
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	// HashLength is the size of a message hash (BLAKE3 truncated to 160 bits).
	HashLength = 20

	// MaxCastBytes is the text limit for a regular cast.
	MaxCastBytes = 320
	// MaxLongCastBytes is the text limit for a long cast.
	MaxLongCastBytes = 1024

	MaxEmbeds   = 2
	MaxMentions = 10

	// MaxLinkTypeBytes bounds LinkBody.Type.
	MaxLinkTypeBytes = 8

	// LinkFollow is the only link type used by this module.
	LinkFollow = "follow"
)

type MessageType int32

const (
	MessageTypeNone                      MessageType = 0
	MessageTypeCastAdd                   MessageType = 1
	MessageTypeCastRemove                MessageType = 2
	MessageTypeReactionAdd               MessageType = 3
	MessageTypeReactionRemove            MessageType = 4
	MessageTypeLinkAdd                   MessageType = 5
	MessageTypeLinkRemove                MessageType = 6
	MessageTypeVerificationAddEthAddress MessageType = 7
	MessageTypeVerificationRemove        MessageType = 8
	MessageTypeUserDataAdd               MessageType = 11
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeCastAdd:
		return "CAST_ADD"
	case MessageTypeCastRemove:
		return "CAST_REMOVE"
	case MessageTypeReactionAdd:
		return "REACTION_ADD"
	case MessageTypeReactionRemove:
		return "REACTION_REMOVE"
	case MessageTypeLinkAdd:
		return "LINK_ADD"
	case MessageTypeLinkRemove:
		return "LINK_REMOVE"
	case MessageTypeVerificationAddEthAddress:
		return "VERIFICATION_ADD_ETH_ADDRESS"
	case MessageTypeVerificationRemove:
		return "VERIFICATION_REMOVE"
	case MessageTypeUserDataAdd:
		return "USER_DATA_ADD"
	case MessageTypeNone:
		return "NONE"
	default:
		return fmt.Sprintf("MessageType(%d)", int32(t))
	}
}

// Network tags which hub network a message is intended for.
// The hub rejects messages for a different network; nothing checks this locally.
type Network int32

const (
	NetworkNone    Network = 0
	NetworkMainnet Network = 1
	NetworkTestnet Network = 2
	NetworkDevnet  Network = 3
)

func (n Network) String() string {
	switch n {
	case NetworkMainnet:
		return "mainnet"
	case NetworkTestnet:
		return "testnet"
	case NetworkDevnet:
		return "devnet"
	case NetworkNone:
		return "none"
	default:
		return fmt.Sprintf("Network(%d)", int32(n))
	}
}

// Valid reports whether n is one of the named hub networks.
func (n Network) Valid() bool {
	return n == NetworkMainnet || n == NetworkTestnet || n == NetworkDevnet
}

// ParseNetwork accepts the lowercase names produced by Network.String.
func ParseNetwork(s string) (Network, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mainnet", "1":
		return NetworkMainnet, nil
	case "testnet", "2":
		return NetworkTestnet, nil
	case "devnet", "3":
		return NetworkDevnet, nil
	default:
		return NetworkNone, fmt.Errorf("unknown farcaster network %q", s)
	}
}

type HashScheme int32

const (
	HashSchemeNone   HashScheme = 0
	HashSchemeBlake3 HashScheme = 1
)

type SignatureScheme int32

const (
	SignatureSchemeNone    SignatureScheme = 0
	SignatureSchemeEd25519 SignatureScheme = 1
	SignatureSchemeEIP712  SignatureScheme = 2
)

type ReactionType int32

const (
	ReactionTypeNone   ReactionType = 0
	ReactionTypeLike   ReactionType = 1
	ReactionTypeRecast ReactionType = 2
)

func (r ReactionType) String() string {
	switch r {
	case ReactionTypeLike:
		return "LIKE"
	case ReactionTypeRecast:
		return "RECAST"
	default:
		return fmt.Sprintf("ReactionType(%d)", int32(r))
	}
}

type UserDataType int32

const (
	UserDataTypeNone       UserDataType = 0
	UserDataTypePfp        UserDataType = 1
	UserDataTypeDisplay    UserDataType = 2
	UserDataTypeBio        UserDataType = 3
	UserDataTypeURL        UserDataType = 5
	UserDataTypeUsername   UserDataType = 6
	UserDataTypeLocation   UserDataType = 7
	UserDataTypeTwitter    UserDataType = 8
	UserDataTypeGithub     UserDataType = 9
	UserDataTypeBanner     UserDataType = 10
	UserDataTypeEthAddress UserDataType = 11
	UserDataTypeSolAddress UserDataType = 12
)

type Protocol int32

const (
	ProtocolEthereum Protocol = 0
	ProtocolSolana   Protocol = 1
)

type CastType int32

const (
	CastTypeCast     CastType = 0
	CastTypeLongCast CastType = 1
)

// CastID references a cast by author fid and message hash.
type CastID struct {
	Fid  uint64
	Hash []byte
}

// Embed is either a URL or a cast reference. Exactly one should be set.
type Embed struct {
	URL    string
	CastID *CastID
}

// Body is the type-specific payload of MessageData.
// Implementations: *CastAddBody, *CastRemoveBody, *ReactionBody, *LinkBody,
// *UserDataBody, *VerificationAddAddressBody, *VerificationRemoveBody.
type Body interface {
	bodyField() uint32
}

type CastAddBody struct {
	EmbedsDeprecated  []string
	Mentions          []uint64
	ParentCastID      *CastID
	Text              string
	MentionsPositions []uint32
	Embeds            []Embed
	ParentURL         string
	Type              CastType
}

type CastRemoveBody struct {
	TargetHash []byte
}

type ReactionBody struct {
	Type         ReactionType
	TargetCastID *CastID
	TargetURL    string
}

type LinkBody struct {
	Type             string
	DisplayTimestamp *uint32
	TargetFid        uint64
}

type UserDataBody struct {
	Type  UserDataType
	Value string
}

type VerificationAddAddressBody struct {
	Address          []byte
	ClaimSignature   []byte
	BlockHash        []byte
	VerificationType uint32
	ChainID          uint32
	Protocol         Protocol
}

type VerificationRemoveBody struct {
	Address  []byte
	Protocol Protocol
}

func (*CastAddBody) bodyField() uint32                { return fieldCastAddBody }
func (*CastRemoveBody) bodyField() uint32             { return fieldCastRemoveBody }
func (*ReactionBody) bodyField() uint32               { return fieldReactionBody }
func (*VerificationAddAddressBody) bodyField() uint32 { return fieldVerificationAddAddressBody }
func (*VerificationRemoveBody) bodyField() uint32     { return fieldVerificationRemoveBody }
func (*UserDataBody) bodyField() uint32               { return fieldUserDataBody }
func (*LinkBody) bodyField() uint32                   { return fieldLinkBody }

// Data is the signed portion of a message: metadata plus one body.
type Data struct {
	Type      MessageType
	Fid       uint64
	Timestamp uint32
	Network   Network
	Body      Body
}

// Message is a finalized, signed envelope. Treat it as immutable once built.
type Message struct {
	Data            *Data
	Hash            []byte
	HashScheme      HashScheme
	Signature       []byte
	SignatureScheme SignatureScheme
	Signer          []byte

	// DataBytes holds the exact bytes that were hashed. Finalize always sets it,
	// and decoding keeps the bytes received on the wire.
	DataBytes []byte
}

func (m *Message) CastAdd() *CastAddBody {
	if m == nil || m.Data == nil {
		return nil
	}
	b, _ := m.Data.Body.(*CastAddBody)
	return b
}

func (m *Message) Reaction() *ReactionBody {
	if m == nil || m.Data == nil {
		return nil
	}
	b, _ := m.Data.Body.(*ReactionBody)
	return b
}

func (m *Message) Link() *LinkBody {
	if m == nil || m.Data == nil {
		return nil
	}
	b, _ := m.Data.Body.(*LinkBody)
	return b
}

func (m *Message) UserData() *UserDataBody {
	if m == nil || m.Data == nil {
		return nil
	}
	b, _ := m.Data.Body.(*UserDataBody)
	return b
}

func (m *Message) VerificationAddAddress() *VerificationAddAddressBody {
	if m == nil || m.Data == nil {
		return nil
	}
	b, _ := m.Data.Body.(*VerificationAddAddressBody)
	return b
}

// HexHash renders the message hash as a 0x-prefixed lowercase string.
func (m *Message) HexHash() string {
	if m == nil {
		return ""
	}
	return "0x" + hex.EncodeToString(m.Hash)
}

// ParseHash decodes a 0x-prefixed (or bare) hex cast hash into raw bytes.
func ParseHash(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, wrapError(KindValidation, "MSG-HASH-001", "invalid hex hash", err)
	}
	if len(b) != HashLength {
		return nil, newError(KindValidation, "MSG-HASH-002", fmt.Sprintf("hash must be %d bytes, got %d", HashLength, len(b)))
	}
	return b, nil
}
