package constants

// Game Protocol Constants
//
// Protocol-level values shared with the external client. They must match the
// client byte for byte and are not configurable.

// Protocol Revision Constants
const (
	// ClientRevision is the only client build the server accepts at login.
	ClientRevision = 317
)

// Server Packet Opcodes
const (
	// OpcodePlayerUpdate carries the player view synchronization (var short).
	OpcodePlayerUpdate = 81

	// OpcodeNpcUpdate carries the NPC view synchronization (var short).
	OpcodeNpcUpdate = 65

	// OpcodeMapRegion tells the client which map region to load (fixed, 4 bytes).
	OpcodeMapRegion = 73

	// OpcodePlayerInit tells the client its own player slot (fixed, 3 bytes).
	OpcodePlayerInit = 249

	// OpcodeGameMessage prints a line in the chat box (var byte).
	OpcodeGameMessage = 253

	// OpcodeLogout closes the client session (fixed, no payload).
	OpcodeLogout = 109
)

// Client Packet Opcodes
const (
	OpcodeKeepAlive     = 0
	OpcodeFocusChange   = 3
	OpcodePublicChat    = 4
	OpcodeAntiCheat     = 77
	OpcodeMapWalk       = 164
	OpcodeMinimapWalk   = 248
	OpcodeCommandWalk   = 98
	OpcodeCommand       = 103
	OpcodeRegionLoaded  = 121
	OpcodeButtonClick   = 185
	OpcodeIdle          = 202
	OpcodeRegionChanged = 210
	OpcodeCameraMove    = 86
	OpcodeMouseClick    = 241
)

// Inbound size markers for the client packet size table.
const (
	SizeVarByte  = -1
	SizeVarShort = -2
)

// ClientPacketSizes maps known client opcodes to their payload size.
// Opcodes absent from the table cannot be framed and end the session.
var ClientPacketSizes = map[int]int{
	OpcodeKeepAlive:     0,
	OpcodeFocusChange:   1,
	OpcodePublicChat:    SizeVarByte,
	OpcodeAntiCheat:     SizeVarByte,
	OpcodeMapWalk:       SizeVarByte,
	OpcodeMinimapWalk:   SizeVarByte,
	OpcodeCommandWalk:   SizeVarByte,
	OpcodeCommand:       SizeVarByte,
	OpcodeRegionLoaded:  0,
	OpcodeButtonClick:   2,
	OpcodeIdle:          0,
	OpcodeRegionChanged: 4,
	OpcodeCameraMove:    4,
	OpcodeMouseClick:    4,
}

// MinimapWalkTrailer is the anti-cheat tail appended to minimap walk packets.
const MinimapWalkTrailer = 14

// ButtonLogout is the interface button id of the logout button.
const ButtonLogout = 2458

// Login Handshake Constants
const (
	LoginRequestOpcode   = 14
	ConnectTypeNew       = 16
	ConnectTypeReconnect = 18
	LoginBlockMagic      = 255
	LoginRSAOpcode       = 10
	LoginCRCCount        = 9

	// LoginExchangeKeys is the handshake status that precedes the server key.
	LoginExchangeKeys = 0
)

// Login Return Codes
const (
	LoginSuccess       = 2
	LoginInvalid       = 3
	LoginAlreadyOnline = 5
	LoginWorldFull     = 7
	LoginBadSessionKey = 10
	LoginRejected      = 11
)

// Player Update Mask Bits
//
// The order of the attribute sub-blocks equals the order of this list and is
// load-bearing: sub-blocks carry no length or tag.
const (
	PlayerMaskGraphic    = 0x100
	PlayerMaskAnimation  = 0x8
	PlayerMaskForcedChat = 0x4
	PlayerMaskChat       = 0x80
	PlayerMaskAppearance = 0x10
	PlayerMaskFaceEntity = 0x1
	PlayerMaskFaceCoord  = 0x2
	PlayerMaskHit        = 0x20
	PlayerMaskHit2       = 0x200
)

// NPC Update Mask Bits (same concepts, different bits than players).
const (
	NpcMaskAnimation  = 0x10
	NpcMaskHit2       = 0x8
	NpcMaskGraphic    = 0x80
	NpcMaskFaceEntity = 0x20
	NpcMaskForcedChat = 0x1
	NpcMaskHit        = 0x40
	NpcMaskFaceCoord  = 0x4
)

// MaskExtended marks a two-byte little-endian mask.
const MaskExtended = 0x40

// MaskShortThreshold is the smallest mask value that needs two bytes.
const MaskShortThreshold = 0x100

// View List Constants
const (
	PlayerSlotBits = 11
	NpcSlotBits    = 14
	NpcTypeBits    = 12

	// PlayerListTerminator ends the player add list (11 bits, all ones).
	PlayerListTerminator = 2047

	// NpcListTerminator ends the NPC add list (14 bits, all ones).
	NpcListTerminator = 16383

	// TrackedCountBits is the width of the tracked-actors count field.
	TrackedCountBits = 8

	// MaxTracked is the largest count the tracked-actors field can carry.
	MaxTracked = 1<<TrackedCountBits - 1

	// DeltaBits is the width of the signed relative-position fields of add records.
	DeltaBits = 5

	// MaxViewDistance is the widest distance DeltaBits can carry.
	MaxViewDistance = 15

	// LocalCoordBits is the width of the placement local coordinates.
	LocalCoordBits = 7
)

// Movement Type Codes (2 bits, after the update-needed bit)
const (
	MovementStand     = 0
	MovementWalk      = 1
	MovementRun       = 2
	MovementPlacement = 3 // also the remove marker for tracked actors
)

// FacePlayerOffset is added to a player slot in face-entity payloads.
const FacePlayerOffset = 32768

// FaceNone resets the face-entity target.
const FaceNone = 65535
