package dplay

import (
	"encoding/binary"
)

type Verdict int

const (
	NoMatch Verdict = iota
	FullMessage
	PlayerToPlayerMessage
)

func (v Verdict) String() string {
	switch v {
	case FullMessage:
		return "full message"
	case PlayerToPlayerMessage:
		return "player to player message"
	}
	return "no match"
}

const (
	minClassifyLen  = 25
	actionTagOffset = 20
	familyOffset    = 4
	paddingStart    = 12
	paddingEnd      = 20
)

var actionTagValue = binary.BigEndian.Uint32(ActionTag[:])

// Classify decides whether buf holds a DirectPlay message. It reads only fixed offsets
// and is safe on any input.
func Classify(buf []byte) Verdict {
	return classify(buf, true)
}

func classify(buf []byte, heuristics bool) Verdict {
	if len(buf) < minClassifyLen {
		return NoMatch
	}
	if binary.BigEndian.Uint32(buf[actionTagOffset:]) == actionTagValue {
		return FullMessage
	}
	if !heuristics {
		return NoMatch
	}

	// player to player messages carry no action tag, fall back on the header shape
	token := Token(binary.LittleEndian.Uint32(buf[0:]) >> tokenShift)
	if !token.Valid() {
		return NoMatch
	}
	if binary.LittleEndian.Uint16(buf[familyOffset:]) != AFInet {
		return NoMatch
	}
	for _, b := range buf[paddingStart:paddingEnd] {
		if b != 0 {
			return NoMatch
		}
	}
	return PlayerToPlayerMessage
}
