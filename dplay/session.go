package dplay

import (
	"github.com/google/uuid"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/node"
)

const SessionDescSize = 80

var sessionFlagBits = []node.Bit{
	{Mask: 0x00000001, Name: "No new players"},
	{Mask: 0x00000002, Name: "Unknown"},
	{Mask: 0x00000004, Name: "Migrate host"},
	{Mask: 0x00000008, Name: "Short player message"},
	{Mask: 0x00000010, Name: "Ignored"},
	{Mask: 0x00000020, Name: "Can join"},
	{Mask: 0x00000040, Name: "Use ping"},
	{Mask: 0x00000080, Name: "No player updates"},
	{Mask: 0x00000100, Name: "Use authentication"},
	{Mask: 0x00000200, Name: "Private session"},
	{Mask: 0x00000400, Name: "Password required"},
	{Mask: 0x00000800, Name: "Route via game host"},
	{Mask: 0x00001000, Name: "Server player only"},
	{Mask: 0x00002000, Name: "Use reliable protocol"},
	{Mask: 0x00004000, Name: "Preserve order"},
	{Mask: 0x00008000, Name: "Optimize latency"},
	{Mask: 0x00010000, Name: "Acquire voice"},
	{Mask: 0x00020000, Name: "No session desc changes"},
}

const (
	SessionCanJoin             uint32 = 0x00000020
	SessionPasswordRequired    uint32 = 0x00000400
	SessionUseReliableProtocol uint32 = 0x00002000
	SessionPreserveOrder       uint32 = 0x00004000
)

type SessionDesc struct {
	Length       uint32
	Flags        uint32
	InstanceGUID uuid.UUID
	GameGUID     uuid.UUID
	MaxPlayers   uint32
	CurrPlayers  uint32
	NamePtr      uint32
	PasswordPtr  uint32
	Reserved     [2]uint32
	User         [4]uint32
}

func DecodeSessionDesc(ctx *core.Context) (*SessionDesc, error) {
	sd := &SessionDesc{}
	err := node.Struct(ctx, "Session Description", func() (err error) {
		if sd.Length, err = node.Uint32(ctx, "Length"); err != nil {
			return err
		}
		if sd.Flags, err = node.Bitfield(ctx, "Flags", 4, sessionFlagBits); err != nil {
			return err
		}
		if sd.InstanceGUID, err = readGUID(ctx, "Instance GUID"); err != nil {
			return err
		}
		if sd.GameGUID, err = readGUID(ctx, "Game GUID"); err != nil {
			return err
		}
		if sd.MaxPlayers, err = node.Uint32(ctx, "Max Players"); err != nil {
			return err
		}
		if sd.CurrPlayers, err = node.Uint32(ctx, "Current Players"); err != nil {
			return err
		}
		if sd.NamePtr, err = node.Uint32Format(ctx, "Session Name Placeholder", hex32); err != nil {
			return err
		}
		if sd.PasswordPtr, err = node.Uint32Format(ctx, "Password Placeholder", hex32); err != nil {
			return err
		}
		for i := range sd.Reserved {
			if sd.Reserved[i], err = node.Uint32Format(ctx, "Reserved "+core.ToString(i+1), hex32); err != nil {
				return err
			}
		}
		for i := range sd.User {
			if sd.User[i], err = node.Uint32Format(ctx, "User "+core.ToString(i+1), hex32); err != nil {
				return err
			}
		}
		return nil
	})
	return sd, err
}

func hex32(v any) string {
	u, _ := v.(uint32)
	return core.Hex(u, 8)
}
