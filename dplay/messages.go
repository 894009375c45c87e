package dplay

import (
	"github.com/google/uuid"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

// Body is the command specific part of a message.
type Body interface {
	isBody()
}

type EnumSessionsReply struct {
	Session    *SessionDesc
	NameOffset uint32
	Name       string
}

type EnumSessions struct {
	GameGUID       uuid.UUID
	PasswordOffset uint32
	Flags          uint32
	Password       string
}

// EnumPlayers has no body.
type EnumPlayers struct{}

// RequestPlayerID is the body of both request player id and request group id.
type RequestPlayerID struct {
	Flags uint32
}

type SecurityDesc struct {
	Size                uint32
	Flags               uint32
	SSPIProvider        uint32
	CAPIProvider        uint32
	CAPIProviderType    uint32
	EncryptionAlgorithm uint32
}

type RequestPlayerReply struct {
	ID         ID
	Security   *SecurityDesc
	SSPIOffset uint32
	CAPIOffset uint32
	Result     HResult
	SSPI       string
	CAPI       string
}

// PlayerGroup is shared by the create/delete player and group commands and the
// group membership commands.
type PlayerGroup struct {
	IDTo           ID
	PlayerID       ID
	GroupID        ID
	CreateOffset   uint32
	PasswordOffset uint32
	Player         *PackedPlayer
	Password       string
	HasPassword    bool
}

type PlayerDataChanged struct {
	IDTo       ID
	ID         ID
	DataSize   uint32
	DataOffset uint32
	Data       []byte
}

type PlayerNameChanged struct {
	IDTo            ID
	ID              ID
	ShortNameOffset uint32
	LongNameOffset  uint32
	ShortName       string
	LongName        string
}

type AddForwardRequest struct {
	IDTo           ID
	PlayerID       ID
	GroupID        ID
	CreateOffset   uint32
	PasswordOffset uint32
	Player         *PackedPlayer
	Password       string
	TickCount      uint32
}

// Ping is the body of both ping and pong.
type Ping struct {
	IDFrom    ID
	TickCount uint32
}

type SessionDescChanged struct {
	IDTo              ID
	SessionNameOffset uint32
	PasswordOffset    uint32
	Session           *SessionDesc
	SessionName       string
	Password          string
}

type SuperEnumPlayersReply struct {
	PlayerCount       uint32
	GroupCount        uint32
	PackedOffset      uint32
	ShortcutCount     uint32
	DescriptionOffset uint32
	NameOffset        uint32
	PasswordOffset    uint32
	Session           *SessionDesc
	GameName          string
	Password          string
	Players           []*SuperPackedPlayer
	Groups            []*SuperPackedPlayer
	Shortcuts         []*SuperPackedPlayer
}

type AddForwardAck struct {
	ID ID
}

// PlayerMessage is the payload of a short player to player message.
type PlayerMessage struct {
	Payload []byte
}

// Opaque is a body this decoder does not interpret. The bytes are reported, not consumed.
type Opaque struct {
	Data []byte
}

func (*EnumSessionsReply) isBody()     {}
func (*EnumSessions) isBody()          {}
func (*EnumPlayers) isBody()           {}
func (*RequestPlayerID) isBody()       {}
func (*RequestPlayerReply) isBody()    {}
func (*PlayerGroup) isBody()           {}
func (*PlayerDataChanged) isBody()     {}
func (*PlayerNameChanged) isBody()     {}
func (*AddForwardRequest) isBody()     {}
func (*Packet) isBody()                {}
func (*Ping) isBody()                  {}
func (*SessionDescChanged) isBody()    {}
func (*SuperEnumPlayersReply) isBody() {}
func (*AddForwardAck) isBody()         {}
func (*PlayerMessage) isBody()         {}
func (*Opaque) isBody()                {}

var requestFlagBits = []node.Bit{
	{Mask: 0x00000001, Name: "Is system player"},
	{Mask: 0x00000002, Name: "Is name server"},
	{Mask: 0x00000004, Name: "Is local"},
	{Mask: 0x00000008, Name: "Unknown"},
	{Mask: 0x00000200, Name: "Is secure"},
}

const (
	EnumJoinable        uint32 = 0x00000001
	EnumAll             uint32 = 0x00000002
	EnumRequirePassword uint32 = 0x00000040
)

var enumSessionsFlagBits = []node.Bit{
	{Mask: EnumRequirePassword, Name: "Enumerate sessions requiring a password"},
	{Mask: EnumAll, Name: "Enumerate all sessions"},
	{Mask: EnumJoinable, Name: "Enumerate joinable sessions"},
}

// opaque reports the unread bytes without consuming them.
func opaque(ctx *core.Context) (Body, error) {
	data := ctx.Rest()
	if len(data) > 0 {
		ctx.Sink.Add(&core.Field{Name: "Data", Start: ctx.BytePos, Length: len(data), Type: core.FieldBytes, Value: data, Display: "<not decoded>"})
	}
	return &Opaque{Data: data}, nil
}

func decodeEnumSessionsReply(ctx *core.Context) (Body, error) {
	m := &EnumSessionsReply{}
	var err error
	if m.Session, err = DecodeSessionDesc(ctx); err != nil {
		return m, err
	}
	if m.NameOffset, err = node.Uint32(ctx, "Name Offset"); err != nil {
		return m, err
	}
	m.Name, err = optionalString(ctx, "Session Name", m.NameOffset)
	return m, err
}

func decodeEnumSessions(ctx *core.Context) (Body, error) {
	m := &EnumSessions{}
	var err error
	if m.GameGUID, err = readGUID(ctx, "Game GUID"); err != nil {
		return m, err
	}
	if m.PasswordOffset, err = node.Uint32(ctx, "Password Offset"); err != nil {
		return m, err
	}
	if m.Flags, err = node.Bitfield(ctx, "Flags", 4, enumSessionsFlagBits); err != nil {
		return m, err
	}
	m.Password, err = optionalString(ctx, "Password", m.PasswordOffset)
	return m, err
}

func decodeEnumPlayers(*core.Context) (Body, error) {
	return &EnumPlayers{}, nil
}

func decodeRequestPlayerID(ctx *core.Context) (Body, error) {
	m := &RequestPlayerID{}
	var err error
	m.Flags, err = node.Bitfield(ctx, "Flags", 4, requestFlagBits)
	return m, err
}

func decodeSecurityDesc(ctx *core.Context) (*SecurityDesc, error) {
	sd := &SecurityDesc{}
	err := node.Struct(ctx, "Security Description", func() (err error) {
		if sd.Size, err = node.Uint32(ctx, "Size"); err != nil {
			return err
		}
		if sd.Flags, err = node.Uint32Format(ctx, "Flags", hex32); err != nil {
			return err
		}
		if sd.SSPIProvider, err = node.Uint32Format(ctx, "SSPI Provider Placeholder", hex32); err != nil {
			return err
		}
		if sd.CAPIProvider, err = node.Uint32Format(ctx, "CAPI Provider Placeholder", hex32); err != nil {
			return err
		}
		if sd.CAPIProviderType, err = node.Uint32(ctx, "CAPI Provider Type"); err != nil {
			return err
		}
		sd.EncryptionAlgorithm, err = node.Uint32Format(ctx, "Encryption Algorithm", encryptionName)
		return err
	})
	return sd, err
}

func formatHResult(v any) string {
	u, _ := v.(uint32)
	return HResult(u).String()
}

func decodeRequestPlayerReply(ctx *core.Context) (Body, error) {
	m := &RequestPlayerReply{}
	var err error
	if m.ID, err = readID(ctx, "Player ID"); err != nil {
		return m, err
	}
	if m.Security, err = decodeSecurityDesc(ctx); err != nil {
		return m, err
	}
	if m.SSPIOffset, err = node.Uint32(ctx, "SSPI Provider Offset"); err != nil {
		return m, err
	}
	if m.CAPIOffset, err = node.Uint32(ctx, "CAPI Provider Offset"); err != nil {
		return m, err
	}
	result, err := node.Uint32Format(ctx, "Result", formatHResult)
	if err != nil {
		return m, err
	}
	m.Result = HResult(result)
	if m.SSPI, err = optionalString(ctx, "SSPI Provider", m.SSPIOffset); err != nil {
		return m, err
	}
	m.CAPI, err = optionalString(ctx, "CAPI Provider", m.CAPIOffset)
	return m, err
}

func decodePlayerGroup(ctx *core.Context) (Body, error) {
	m := &PlayerGroup{}
	var err error
	if m.IDTo, err = readID(ctx, "ID To"); err != nil {
		return m, err
	}
	if m.PlayerID, err = readID(ctx, "Player ID"); err != nil {
		return m, err
	}
	if m.GroupID, err = readID(ctx, "Group ID"); err != nil {
		return m, err
	}
	if m.CreateOffset, err = node.Uint32(ctx, "Create Offset"); err != nil {
		return m, err
	}
	if m.PasswordOffset, err = node.Uint32(ctx, "Password Offset"); err != nil {
		return m, err
	}
	if m.Player, err = node.When(m.CreateOffset != 0, func() (*PackedPlayer, error) {
		return DecodePackedPlayer(ctx)
	}); err != nil {
		return m, err
	}
	// the password trails the record whenever bytes are left, its offset is not a position
	if ctx.Remaining() > 0 {
		m.HasPassword = true
		m.Password, err = readString(ctx, "Password")
	}
	return m, err
}

func decodePlayerDataChanged(ctx *core.Context) (Body, error) {
	m := &PlayerDataChanged{}
	var err error
	if m.IDTo, err = readID(ctx, "ID To"); err != nil {
		return m, err
	}
	if m.ID, err = readID(ctx, "Player ID"); err != nil {
		return m, err
	}
	if m.DataSize, err = node.Uint32(ctx, "Data Size"); err != nil {
		return m, err
	}
	if m.DataOffset, err = node.Uint32(ctx, "Data Offset"); err != nil {
		return m, err
	}
	m.Data, err = sizedBytes(ctx, "Data", m.DataSize)
	return m, err
}

func decodePlayerNameChanged(ctx *core.Context) (Body, error) {
	m := &PlayerNameChanged{}
	var err error
	if m.IDTo, err = readID(ctx, "ID To"); err != nil {
		return m, err
	}
	if m.ID, err = readID(ctx, "Player ID"); err != nil {
		return m, err
	}
	if m.ShortNameOffset, err = node.Uint32(ctx, "Short Name Offset"); err != nil {
		return m, err
	}
	if m.LongNameOffset, err = node.Uint32(ctx, "Long Name Offset"); err != nil {
		return m, err
	}
	if m.ShortName, err = optionalString(ctx, "Short Name", m.ShortNameOffset); err != nil {
		return m, err
	}
	m.LongName, err = optionalString(ctx, "Long Name", m.LongNameOffset)
	return m, err
}

func decodeAddForwardRequest(ctx *core.Context) (Body, error) {
	m := &AddForwardRequest{}
	var err error
	if m.IDTo, err = readID(ctx, "ID To"); err != nil {
		return m, err
	}
	if m.PlayerID, err = readID(ctx, "Player ID"); err != nil {
		return m, err
	}
	if m.GroupID, err = readID(ctx, "Group ID"); err != nil {
		return m, err
	}
	if m.CreateOffset, err = node.Uint32(ctx, "Create Offset"); err != nil {
		return m, err
	}
	if m.PasswordOffset, err = node.Uint32(ctx, "Password Offset"); err != nil {
		return m, err
	}
	if m.Player, err = node.When(m.CreateOffset != 0, func() (*PackedPlayer, error) {
		return DecodePackedPlayer(ctx)
	}); err != nil {
		return m, err
	}
	if m.Password, err = optionalString(ctx, "Password", m.PasswordOffset); err != nil {
		return m, err
	}
	m.TickCount, err = node.Uint32(ctx, "Tick Count")
	return m, err
}

func decodePing(ctx *core.Context) (Body, error) {
	m := &Ping{}
	var err error
	if m.IDFrom, err = readID(ctx, "ID From"); err != nil {
		return m, err
	}
	m.TickCount, err = node.Uint32(ctx, "Tick Count")
	return m, err
}

func decodeSessionDescChanged(ctx *core.Context) (Body, error) {
	m := &SessionDescChanged{}
	var err error
	if m.IDTo, err = readID(ctx, "ID To"); err != nil {
		return m, err
	}
	if m.SessionNameOffset, err = node.Uint32(ctx, "Session Name Offset"); err != nil {
		return m, err
	}
	if m.PasswordOffset, err = node.Uint32(ctx, "Password Offset"); err != nil {
		return m, err
	}
	if m.Session, err = DecodeSessionDesc(ctx); err != nil {
		return m, err
	}
	if m.SessionName, err = optionalString(ctx, "Session Name", m.SessionNameOffset); err != nil {
		return m, err
	}
	m.Password, err = optionalString(ctx, "Password", m.PasswordOffset)
	return m, err
}

// superEnumPasswordOffset is where the password offset sits relative to the body start.
const superEnumPasswordOffset = 24

func decodeSuperEnumPlayersReply(ctx *core.Context) (Body, error) {
	m := &SuperEnumPlayersReply{}
	// the password offset comes after the game name it gates, so it is peeked first
	passwordOffset, _ := ctx.PeekUint32At(ctx.BytePos+superEnumPasswordOffset, littleEndian)

	var err error
	if m.PlayerCount, err = node.Uint32(ctx, "Player Count"); err != nil {
		return m, err
	}
	if m.GroupCount, err = node.Uint32(ctx, "Group Count"); err != nil {
		return m, err
	}
	if m.PackedOffset, err = node.Uint32(ctx, "Packed Offset"); err != nil {
		return m, err
	}
	if m.ShortcutCount, err = node.Uint32(ctx, "Shortcut Count"); err != nil {
		return m, err
	}
	if m.DescriptionOffset, err = node.Uint32(ctx, "Description Offset"); err != nil {
		return m, err
	}
	if m.NameOffset, err = node.Uint32(ctx, "Name Offset"); err != nil {
		return m, err
	}
	if m.PasswordOffset, err = node.Uint32(ctx, "Password Offset"); err != nil {
		return m, err
	}
	if m.Session, err = DecodeSessionDesc(ctx); err != nil {
		return m, err
	}
	if m.GameName, err = readString(ctx, "Game Name"); err != nil {
		return m, err
	}
	if m.Password, err = optionalString(ctx, "Password", passwordOffset); err != nil {
		return m, err
	}
	if m.Players, err = superPackedPlayers(ctx, "Players", "Player", m.PlayerCount); err != nil {
		return m, err
	}
	if m.Groups, err = superPackedPlayers(ctx, "Groups", "Group", m.GroupCount); err != nil {
		return m, err
	}
	m.Shortcuts, err = superPackedPlayers(ctx, "Shortcuts", "Shortcut", m.ShortcutCount)
	return m, err
}

func superPackedPlayers(ctx *core.Context, name, label string, count uint32) ([]*SuperPackedPlayer, error) {
	return node.Array(ctx, name, count, superPackedPlayerMinLen, func(i int) (*SuperPackedPlayer, error) {
		return DecodeSuperPackedPlayer(ctx, label+" "+core.ToString(i+1))
	})
}

func decodeAddForwardAck(ctx *core.Context) (Body, error) {
	m := &AddForwardAck{}
	var err error
	m.ID, err = readID(ctx, "ID")
	return m, err
}

var playerGroupCommands = []Command{
	CmdCreatePlayer, CmdCreateGroup, CmdDeletePlayer, CmdDeleteGroup,
	CmdAddPlayerToGroup, CmdDeletePlayerFromGroup, CmdAddForward, CmdCreatePlayersVerify,
}

// dispatcher decodes every command this package understands.
var dispatcher = node.NewSwitch[Command, Body]("Message", opaque).
	Case(decodeEnumSessionsReply, CmdEnumSessionsReply).
	Case(decodeEnumSessions, CmdEnumSessions).
	Case(decodeEnumPlayers, CmdEnumPlayers).
	Case(decodeRequestPlayerID, CmdRequestPlayerID, CmdRequestGroupID).
	Case(decodeRequestPlayerReply, CmdRequestPlayerReply).
	Case(decodePlayerGroup, playerGroupCommands...).
	Case(decodePlayerDataChanged, CmdPlayerDataChanged, CmdGroupDataChanged).
	Case(decodePlayerNameChanged, CmdPlayerNameChanged, CmdGroupNameChanged).
	Case(decodeAddForwardRequest, CmdAddForwardRequest).
	Case(decodePacket, CmdPacket).
	Case(decodePing, CmdPing, CmdPong).
	Case(decodeSessionDescChanged, CmdSessionDescChanged).
	Case(decodeSuperEnumPlayersReply, CmdSuperEnumPlayersReply).
	Case(decodeAddForwardAck, CmdAddForwardAck)

// encapsulated decodes the commands a Packet envelope may carry.
var encapsulated = node.NewSwitch[Command, Body]("Encapsulated Message", opaque).
	Case(decodeRequestPlayerID, CmdRequestPlayerID).
	Case(decodeRequestPlayerReply, CmdRequestPlayerReply).
	Case(decodePlayerGroup, playerGroupCommands...).
	Case(decodeAddForwardRequest, CmdAddForwardRequest).
	Case(decodeSessionDescChanged, CmdSessionDescChanged)

// Dispatch decodes the body of command at the cursor. Unknown commands decode to Opaque.
func Dispatch(ctx *core.Context, command Command) (Body, error) {
	return dispatchWith(ctx, dispatcher, command)
}

func dispatchWith(ctx *core.Context, table *node.Switch[Command, Body], command Command) (Body, error) {
	var body Body
	err := node.Struct(ctx, command.String(), func() (err error) {
		body, err = table.Decode(ctx, command)
		return err
	})
	return body, err
}
