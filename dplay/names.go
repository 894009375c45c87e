package dplay

import (
	"fmt"
)

// Token is the 12-bit framing tag in the top of the first header word.
type Token uint16

const (
	TokenRemote    Token = 0xFAB
	TokenForwarded Token = 0xCAB
	TokenServer    Token = 0xBAB
)

var tokenNames = map[Token]string{
	TokenRemote:    "Remote Message",
	TokenForwarded: "Forwarded Message",
	TokenServer:    "Server Message",
}

func (t Token) String() string {
	return lookup(tokenNames, t, uint64(t))
}

func (t Token) Valid() bool {
	_, ok := tokenNames[t]
	return ok
}

type Command uint16

const (
	CmdEnumSessionsReply     Command = 0x0001
	CmdEnumSessions          Command = 0x0002
	CmdEnumPlayersReply      Command = 0x0003
	CmdEnumPlayers           Command = 0x0004
	CmdRequestPlayerID       Command = 0x0005
	CmdRequestGroupID        Command = 0x0006
	CmdRequestPlayerReply    Command = 0x0007
	CmdCreatePlayer          Command = 0x0008
	CmdCreateGroup           Command = 0x0009
	CmdPlayerMessage         Command = 0x000A
	CmdDeletePlayer          Command = 0x000B
	CmdDeleteGroup           Command = 0x000C
	CmdAddPlayerToGroup      Command = 0x000D
	CmdDeletePlayerFromGroup Command = 0x000E
	CmdPlayerDataChanged     Command = 0x000F
	CmdPlayerNameChanged     Command = 0x0010
	CmdGroupDataChanged      Command = 0x0011
	CmdGroupNameChanged      Command = 0x0012
	CmdAddForwardRequest     Command = 0x0013
	CmdPacket                Command = 0x0015
	CmdPing                  Command = 0x0016
	CmdPong                  Command = 0x0017
	CmdYouAreDead            Command = 0x0018
	CmdPlayerWrapper         Command = 0x0019
	CmdSessionDescChanged    Command = 0x001A
	CmdChallenge             Command = 0x001C
	CmdAccessGranted         Command = 0x001D
	CmdLogonDenied           Command = 0x001E
	CmdAuthError             Command = 0x001F
	CmdNegotiate             Command = 0x0020
	CmdChallengeResponse     Command = 0x0021
	CmdSigned                Command = 0x0022
	CmdAddForwardReply       Command = 0x0024
	CmdAskForMulticast       Command = 0x0025
	CmdAskForMulticastGuar   Command = 0x0026
	CmdAddShortcutToGroup    Command = 0x0027
	CmdDeleteGroupFromGroup  Command = 0x0028
	CmdSuperEnumPlayersReply Command = 0x0029
	CmdKeyExchange           Command = 0x002B
	CmdKeyExchangeReply      Command = 0x002C
	CmdChat                  Command = 0x002D
	CmdAddForward            Command = 0x002E
	CmdAddForwardAck         Command = 0x002F
	CmdPacket2Data           Command = 0x0030
	CmdPacket2Ack            Command = 0x0031
	CmdIAmNameServer         Command = 0x0035
	CmdVoice                 Command = 0x0036
	CmdMulticastDelivery     Command = 0x0037
	CmdCreatePlayersVerify   Command = 0x0038
)

var commandNames = map[Command]string{
	CmdEnumSessionsReply:     "Enum Sessions Reply",
	CmdEnumSessions:          "Enum Sessions",
	CmdEnumPlayersReply:      "Enum Players Reply",
	CmdEnumPlayers:           "Enum Players",
	CmdRequestPlayerID:       "Request Player ID",
	CmdRequestGroupID:        "Request Group ID",
	CmdRequestPlayerReply:    "Request Player Reply",
	CmdCreatePlayer:          "Create Player",
	CmdCreateGroup:           "Create Group",
	CmdPlayerMessage:         "Player Message",
	CmdDeletePlayer:          "Delete Player",
	CmdDeleteGroup:           "Delete Group",
	CmdAddPlayerToGroup:      "Add Player To Group",
	CmdDeletePlayerFromGroup: "Delete Player From Group",
	CmdPlayerDataChanged:     "Player Data Changed",
	CmdPlayerNameChanged:     "Player Name Changed",
	CmdGroupDataChanged:      "Group Data Changed",
	CmdGroupNameChanged:      "Group Name Changed",
	CmdAddForwardRequest:     "Add Forward Request",
	CmdPacket:                "Packet",
	CmdPing:                  "Ping",
	CmdPong:                  "Pong",
	CmdYouAreDead:            "You Are Dead",
	CmdPlayerWrapper:         "Player Wrapper",
	CmdSessionDescChanged:    "Session Desc Changed",
	CmdChallenge:             "Challenge",
	CmdAccessGranted:         "Access Granted",
	CmdLogonDenied:           "Logon Denied",
	CmdAuthError:             "Auth Error",
	CmdNegotiate:             "Negotiate",
	CmdChallengeResponse:     "Challenge Response",
	CmdSigned:                "Signed",
	CmdAddForwardReply:       "Add Forward Reply",
	CmdAskForMulticast:       "Ask For Multicast",
	CmdAskForMulticastGuar:   "Ask For Multicast Guaranteed",
	CmdAddShortcutToGroup:    "Add Shortcut To Group",
	CmdDeleteGroupFromGroup:  "Delete Group From Group",
	CmdSuperEnumPlayersReply: "Super Enum Players Reply",
	CmdKeyExchange:           "Key Exchange",
	CmdKeyExchangeReply:      "Key Exchange Reply",
	CmdChat:                  "Chat",
	CmdAddForward:            "Add Forward",
	CmdAddForwardAck:         "Add Forward ACK",
	CmdPacket2Data:           "Packet2 Data",
	CmdPacket2Ack:            "Packet2 ACK",
	CmdIAmNameServer:         "I Am Name Server",
	CmdVoice:                 "Voice",
	CmdMulticastDelivery:     "Multicast Delivery",
	CmdCreatePlayersVerify:   "Create Players Verify",
}

func (c Command) String() string {
	return lookup(commandNames, c, uint64(c))
}

type Dialect uint16

const (
	DialectDX6  Dialect = 0x0009
	DialectDX61 Dialect = 0x000A
	DialectDX6a Dialect = 0x000B
	DialectDX7  Dialect = 0x000D
	DialectDX71 Dialect = 0x000E
)

var dialectNames = map[Dialect]string{
	DialectDX6:  "DirectPlay 6",
	DialectDX61: "DirectPlay 6.1",
	DialectDX6a: "DirectPlay 6.1a",
	DialectDX7:  "DirectPlay 7",
	DialectDX71: "DirectPlay 7.1",
}

func (d Dialect) String() string {
	return lookup(dialectNames, d, uint64(d))
}

func lookup[K comparable](names map[K]string, k K, raw uint64) string {
	if name, ok := names[k]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%04x)", raw)
}

// HResult is a COM status code.
type HResult uint32

var hresultNames = map[HResult]string{
	0x00000000: "DP_OK",
	0x80004001: "DPERR_UNSUPPORTED",
	0x80004002: "DPERR_NOINTERFACE",
	0x80004005: "DPERR_GENERIC",
	0x8000000A: "DPERR_PENDING",
	0x8007000E: "DPERR_OUTOFMEMORY",
	0x80070057: "DPERR_INVALIDPARAMS",
	0x88770005: "DPERR_ALREADYINITIALIZED",
	0x8877000A: "DPERR_ACCESSDENIED",
	0x88770014: "DPERR_ACTIVEPLAYERS",
	0x8877001E: "DPERR_BUFFERTOOSMALL",
	0x88770028: "DPERR_CANTADDPLAYER",
	0x88770032: "DPERR_CANTCREATEGROUP",
	0x8877003C: "DPERR_CANTCREATEPLAYER",
	0x88770046: "DPERR_CANTCREATESESSION",
	0x88770050: "DPERR_CAPSNOTAVAILABLEYET",
	0x8877005A: "DPERR_EXCEPTION",
	0x88770078: "DPERR_INVALIDFLAGS",
	0x88770082: "DPERR_INVALIDOBJECT",
	0x88770096: "DPERR_INVALIDPLAYER",
	0x8877009B: "DPERR_INVALIDGROUP",
	0x887700A0: "DPERR_NOCAPS",
	0x887700AA: "DPERR_NOCONNECTION",
	0x887700BE: "DPERR_NOMESSAGES",
	0x887700C8: "DPERR_NONAMESERVERFOUND",
	0x887700D2: "DPERR_NOPLAYERS",
	0x887700DC: "DPERR_NOSESSIONS",
	0x887700E6: "DPERR_SENDTOOBIG",
	0x887700F0: "DPERR_TIMEOUT",
	0x887700FA: "DPERR_UNAVAILABLE",
	0x8877010E: "DPERR_BUSY",
	0x88770118: "DPERR_USERCANCEL",
	0x88770122: "DPERR_CANNOTCREATESERVER",
	0x8877012C: "DPERR_PLAYERLOST",
	0x88770136: "DPERR_SESSIONLOST",
	0x88770140: "DPERR_UNINITIALIZED",
	0x8877014A: "DPERR_NONEWPLAYERS",
	0x88770154: "DPERR_INVALIDPASSWORD",
	0x8877015E: "DPERR_CONNECTING",
	0x88770168: "DPERR_CONNECTIONLOST",
	0x88770172: "DPERR_UNKNOWNMESSAGE",
	0x887707D0: "DPERR_AUTHENTICATIONFAILED",
	0x887707DA: "DPERR_CANTLOADSSPI",
	0x887707E4: "DPERR_ENCRYPTIONFAILED",
	0x887707EE: "DPERR_SIGNFAILED",
	0x887707F8: "DPERR_CANTLOADSECURITYPACKAGE",
	0x88770802: "DPERR_ENCRYPTIONNOTSUPPORTED",
	0x8877080C: "DPERR_CANTLOADCAPI",
	0x88770816: "DPERR_NOTLOGGEDIN",
	0x88770820: "DPERR_LOGONDENIED",
}

func (h HResult) String() string {
	if name, ok := hresultNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%08x)", uint32(h))
}

var encryptionNames = map[uint32]string{
	0x0000: "Default (RC4)",
	0x6601: "DES",
	0x6602: "RC2",
	0x6603: "Triple DES",
	0x6801: "RC4",
}

func encryptionName(v any) string {
	alg, _ := v.(uint32)
	if name, ok := encryptionNames[alg]; ok {
		return name
	}
	return fmt.Sprintf("Unknown (0x%08x)", alg)
}
