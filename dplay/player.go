package dplay

import (
	"fmt"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

const (
	PlayerSystem         uint32 = 0x00000001
	PlayerNameServer     uint32 = 0x00000002
	PlayerInGroup        uint32 = 0x00000004
	PlayerSendingLocally uint32 = 0x00000008
)

var playerFlagBits = []node.Bit{
	{Mask: PlayerSystem, Name: "Is system player"},
	{Mask: PlayerNameServer, Name: "Is name server"},
	{Mask: PlayerInGroup, Name: "In group"},
	{Mask: PlayerSendingLocally, Name: "Sending player on local machine"},
}

// PackedPlayer is the original player/group record carried by create and add messages.
type PackedPlayer struct {
	Size           uint32
	Flags          uint32
	ID             ID
	ShortNameLen   uint32
	LongNameLen    uint32
	SPDataSize     uint32
	PlayerDataSize uint32
	NumPlayers     uint32
	SystemPlayerID ID
	FixedSize      uint32
	Dialect        uint32
	Reserved       uint32
	ShortName      string
	LongName       string
	SPData         []byte
	PlayerData     []byte
	PlayerIDs      []ID
	HasParentID    bool
	ParentID       ID
}

func (p *PackedPlayer) IsSystemPlayer() bool {
	return p.Flags&PlayerSystem != 0
}

func idList(ctx *core.Context, name, item string, count uint32) ([]ID, error) {
	return node.Array(ctx, name, count, 4, func(i int) (ID, error) {
		return readID(ctx, fmt.Sprintf("%s %d", item, i+1))
	})
}

// DecodePackedPlayer reads a packed player record starting at the cursor.
//
// The declared size leaves out one trailing dword: the parent id is present when
// size+4 is larger than the bytes consumed so far.
func DecodePackedPlayer(ctx *core.Context) (*PackedPlayer, error) {
	p := &PackedPlayer{}
	start := ctx.BytePos
	err := node.Struct(ctx, "Packed Player", func() (err error) {
		if p.Size, err = node.Uint32(ctx, "Size"); err != nil {
			return err
		}
		if p.Flags, err = node.Bitfield(ctx, "Flags", 4, playerFlagBits); err != nil {
			return err
		}
		if p.ID, err = readID(ctx, "Player ID"); err != nil {
			return err
		}
		if p.ShortNameLen, err = node.Uint32(ctx, "Short Name Length"); err != nil {
			return err
		}
		if p.LongNameLen, err = node.Uint32(ctx, "Long Name Length"); err != nil {
			return err
		}
		if p.SPDataSize, err = node.Uint32(ctx, "Service Provider Data Size"); err != nil {
			return err
		}
		if p.PlayerDataSize, err = node.Uint32(ctx, "Player Data Size"); err != nil {
			return err
		}
		if p.NumPlayers, err = node.Uint32(ctx, "Number of Players"); err != nil {
			return err
		}
		if p.SystemPlayerID, err = readID(ctx, "System Player ID"); err != nil {
			return err
		}
		if p.FixedSize, err = node.Uint32(ctx, "Fixed Size"); err != nil {
			return err
		}
		if p.Dialect, err = node.Uint32(ctx, "Dialect"); err != nil {
			return err
		}
		if p.Reserved, err = node.Uint32Format(ctx, "Reserved", hex32); err != nil {
			return err
		}
		if p.ShortName, err = optionalString(ctx, "Short Name", p.ShortNameLen); err != nil {
			return err
		}
		if p.LongName, err = optionalString(ctx, "Long Name", p.LongNameLen); err != nil {
			return err
		}
		if p.SPData, err = sizedBytes(ctx, "Service Provider Data", p.SPDataSize); err != nil {
			return err
		}
		if p.PlayerDataSize != 0 {
			if p.PlayerData, err = sizedBytes(ctx, "Player Data", p.PlayerDataSize); err != nil {
				return err
			}
		}
		if p.PlayerIDs, err = idList(ctx, "Player IDs", "Player ID", p.NumPlayers); err != nil {
			return err
		}

		consumed := uint64(ctx.BytePos - start)
		if uint64(p.Size)+4 > consumed {
			p.HasParentID = true
			if p.ParentID, err = readID(ctx, "Parent ID"); err != nil {
				return err
			}
		}
		return nil
	})
	return p, err
}

// sizedBytes reads a blob whose length comes from the wire, checking it fits first.
func sizedBytes(ctx *core.Context, name string, size uint32) ([]byte, error) {
	if uint64(size) > uint64(ctx.Remaining()) {
		return nil, ctx.Fail(core.Truncated, name, int(min(uint64(size), 1<<31-1)))
	}
	return node.Bytes(ctx, name, int(size))
}

// Player info mask layout of a super packed player.
const (
	maskShortName           = 0x001
	maskLongName            = 0x002
	maskPlayerDataShift     = 2
	maskSPDataShift         = 4
	maskPlayerCountShift    = 6
	maskParentID            = 0x100
	maskShortcutCountShift  = 9
	superPackedPlayerMinLen = 20
)

var playerInfoMaskBits = []node.Bit{
	{Mask: maskShortName, Name: "Have short name"},
	{Mask: maskLongName, Name: "Have long name"},
	{Mask: 0x3 << maskPlayerDataShift, Name: "Player data length type"},
	{Mask: 0x3 << maskSPDataShift, Name: "Service provider data length type"},
	{Mask: 0x3 << maskPlayerCountShift, Name: "Player count length type"},
	{Mask: maskParentID, Name: "Have parent ID"},
	{Mask: 0x3 << maskShortcutCountShift, Name: "Shortcut count length type"},
}

// SuperPackedPlayer is the denser player/group record of the super enum players reply.
type SuperPackedPlayer struct {
	Size           uint32
	Flags          uint32
	ID             ID
	InfoMask       uint32
	Dialect        uint32 // only for system players
	SystemPlayerID ID     // only for non-system players
	ShortName      string
	LongName       string
	PlayerData     []byte
	SPData         []byte
	PlayerIDs      []ID
	HasParentID    bool
	ParentID       ID
	ShortcutIDs    []ID
}

func (p *SuperPackedPlayer) IsSystemPlayer() bool {
	return p.Flags&PlayerSystem != 0
}

// LengthType extracts a 2-bit length type from the info mask.
func (p *SuperPackedPlayer) LengthType(shift uint) uint32 {
	return (p.InfoMask >> shift) & 0x3
}

func DecodeSuperPackedPlayer(ctx *core.Context, label string) (*SuperPackedPlayer, error) {
	p := &SuperPackedPlayer{}
	err := node.Struct(ctx, label, func() (err error) {
		if p.Size, err = node.Uint32(ctx, "Size"); err != nil {
			return err
		}
		if p.Flags, err = node.Bitfield(ctx, "Flags", 4, playerFlagBits); err != nil {
			return err
		}
		if p.ID, err = readID(ctx, "Player ID"); err != nil {
			return err
		}
		if p.InfoMask, err = node.Bitfield(ctx, "Player Info Mask", 4, playerInfoMaskBits); err != nil {
			return err
		}
		if p.IsSystemPlayer() {
			p.Dialect, err = node.Uint32(ctx, "Dialect")
		} else {
			p.SystemPlayerID, err = readID(ctx, "System Player ID")
		}
		if err != nil {
			return err
		}
		if p.ShortName, err = optionalString(ctx, "Short Name", p.InfoMask&maskShortName); err != nil {
			return err
		}
		if p.LongName, err = optionalString(ctx, "Long Name", p.InfoMask&maskLongName); err != nil {
			return err
		}

		if lt := p.LengthType(maskPlayerDataShift); lt != 0 {
			n, err := readVariableField(ctx, "Player Data Length", lt)
			if err != nil {
				return err
			}
			if p.PlayerData, err = sizedBytes(ctx, "Player Data", n); err != nil {
				return err
			}
		}
		if lt := p.LengthType(maskSPDataShift); lt != 0 {
			n, err := readVariableField(ctx, "Service Provider Data Length", lt)
			if err != nil {
				return err
			}
			if p.SPData, err = sizedBytes(ctx, "Service Provider Data", n); err != nil {
				return err
			}
		}
		if lt := p.LengthType(maskPlayerCountShift); lt != 0 {
			n, err := readVariableField(ctx, "Player Count", lt)
			if err != nil {
				return err
			}
			if p.PlayerIDs, err = idList(ctx, "Player IDs", "Player ID", n); err != nil {
				return err
			}
		}
		if p.InfoMask&maskParentID != 0 {
			p.HasParentID = true
			if p.ParentID, err = readID(ctx, "Parent ID"); err != nil {
				return err
			}
		}
		if lt := p.LengthType(maskShortcutCountShift); lt != 0 {
			n, err := readVariableField(ctx, "Shortcut Count", lt)
			if err != nil {
				return err
			}
			if p.ShortcutIDs, err = idList(ctx, "Shortcut IDs", "Shortcut ID", n); err != nil {
				return err
			}
		}
		return nil
	})
	return p, err
}
