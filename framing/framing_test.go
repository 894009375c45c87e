package framing

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/dplay"
)

func sizeWord(token dplay.Token, size int) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(token)<<20|uint32(size))
}

func binaryRule(t *testing.T) *BinaryRule {
	rule := &BinaryRule{}
	require.NoError(t, rule.Setup())
	return rule
}

func TestBinaryRuleSetup(t *testing.T) {
	rule := binaryRule(t)
	assert.Equal(t, dplay.PlayerHeaderSize, rule.MinSize)
	assert.Equal(t, maxMessageSize, rule.MaxSize)

	assert.Error(t, (&BinaryRule{MinSize: 3}).Setup())
	assert.Error(t, (&BinaryRule{MaxSize: maxMessageSize + 1}).Setup())
	assert.Error(t, (&BinaryRule{MinSize: 100, MaxSize: 50}).Setup())
}

func TestBinaryRuleSplit(t *testing.T) {
	rule := binaryRule(t)
	msg := append(sizeWord(dplay.TokenServer, 24), make([]byte, 20)...)

	assert.Nil(t, rule.Split(msg[:3], false))
	assert.Nil(t, rule.Split(msg[:23], false))

	res := rule.Split(append(msg, 0xff), false)
	require.NotNil(t, res)
	assert.False(t, res.Abandoned)
	assert.Equal(t, 24, res.Advance)
	assert.Equal(t, msg, res.Token)
}

func TestBinaryRuleResync(t *testing.T) {
	rule := binaryRule(t)
	for name, data := range map[string][]byte{
		"bad token":  append(sizeWord(0x123, 24), make([]byte, 20)...),
		"too small":  append(sizeWord(dplay.TokenRemote, 8), make([]byte, 20)...),
		"too large":  sizeWord(dplay.TokenRemote, maxMessageSize),
		"zero bytes": make([]byte, 8),
	} {
		if name == "too large" {
			rule = &BinaryRule{MaxSize: 1024}
			require.NoError(t, rule.Setup())
		}
		res := rule.Split(data, false)
		require.NotNil(t, res, name)
		assert.True(t, res.Abandoned, name)
		assert.Equal(t, 1, res.Advance, name)
		assert.Equal(t, data[:1], res.Token, name)
	}
}

func TestTextRuleSplit(t *testing.T) {
	rule := &TextRule{}
	require.NoError(t, rule.Setup())

	res := rule.Split([]byte("# capture\nab"), false)
	require.NotNil(t, res)
	assert.Equal(t, 10, res.Advance)
	assert.Nil(t, res.Token)
	assert.False(t, res.Abandoned)

	assert.Nil(t, rule.Split([]byte("ab cd"), false))

	res = rule.Split([]byte("ab:cd-ef 01\n"), false)
	require.NotNil(t, res)
	assert.Equal(t, []byte{0xab, 0xcd, 0xef, 0x01}, res.Token)

	res = rule.Split([]byte("0xabc"), true)
	require.NotNil(t, res)
	assert.Equal(t, 5, res.Advance)
	assert.Equal(t, []byte{0x0a, 0xbc}, res.Token)

	res = rule.Split([]byte("zz top\n"), false)
	require.NotNil(t, res)
	assert.True(t, res.Abandoned)
	assert.Equal(t, []byte("zz top\n"), res.Token)
}

func TestTextRuleMaxLen(t *testing.T) {
	rule := &TextRule{MaxLen: 4}
	require.NoError(t, rule.Setup())
	res := rule.Split([]byte("abcdef"), false)
	require.NotNil(t, res)
	assert.Error(t, res.Error)
}

func TestRegister(t *testing.T) {
	Register()
	Register()

	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("comment: \"//\"\n"), &node))
	rule, err := core.FramingRuleDecode(Text, node.Content[0])
	require.NoError(t, err)
	assert.Equal(t, "//", rule.(*TextRule).Comment)

	rule, err = core.FramingRuleDecode(Binary, nil)
	require.NoError(t, err)
	assert.Equal(t, dplay.PlayerHeaderSize, rule.(*BinaryRule).MinSize)
}

func TestHexlineThroughCodec(t *testing.T) {
	Register()
	config, err := core.ParseConfig([]byte("framing:\n  type: hexline\n"))
	require.NoError(t, err)

	player := append(sizeWord(dplay.TokenRemote, 28), 0x02, 0x00, 0xba, 0x08, 10, 0, 0, 1)
	player = append(player, make([]byte, 8)...)
	player = append(player, 1, 2, 3, 4, 5, 6, 7, 8)

	capture := strings.Join([]string{
		"# two datagrams",
		"",
		hex.EncodeToString(player),
		"not hex at all",
		hex.EncodeToString([]byte("hello")),
	}, "\n")

	var results []*core.ScanResult
	codec := core.NewCodec(dplay.NewProtocol(config)).Config(config).Stream(strings.NewReader(capture))
	require.NoError(t, codec.Scan(func(result *core.ScanResult) error {
		results = append(results, result)
		return nil
	}))

	require.Len(t, results, 3)
	m, ok := results[0].Data.(*dplay.Message)
	require.True(t, ok)
	assert.Equal(t, dplay.PlayerToPlayerMessage, m.Verdict)

	assert.True(t, results[1].Abandoned)
	assert.ErrorIs(t, results[2].ScanError, core.ErrNotRecognized)
}

func TestFramingRuleNames(t *testing.T) {
	Register()
	assert.Subset(t, core.FramingRuleNames(), []string{Binary, Text})

	_, err := core.FramingRuleDecode("nope", nil)
	assert.ErrorContains(t, err, "hexline")
}
