package vdplay

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/dplay"
	"github.com/vuuvv/vdplay/framing"
	"github.com/vuuvv/vdplay/log"
	"github.com/vuuvv/vdplay/tcp"
)

type Config = core.Config

var LoadConfig = core.LoadConfig
var ParseConfig = core.ParseConfig

type Context = core.Context
type Field = core.Field
type Sink = core.Sink
type Diagnostic = core.Diagnostic

var NewContext = core.NewContext
var NewTree = core.NewTree

type Protocol = core.Protocol
type FramingRule = core.FramingRule

type Codec = core.Codec
type ScanResult = core.ScanResult

var NewCodec = core.NewCodec

type Message = dplay.Message
type Verdict = dplay.Verdict

var Decode = dplay.Decode
var Classify = dplay.Classify
var NewProtocol = dplay.NewProtocol

type TcpServer = tcp.Server
type UdpServer = tcp.UDPServer

var NewTcpServer = tcp.NewTCPServer
var NewUdpServer = tcp.NewUDPServer

// Setup installs a development logger when none is configured and registers the framing rules.
func Setup() {
	logger := zap.L()
	if !logger.Core().Enabled(zapcore.PanicLevel) {
		var err error
		logger, err = zap.NewDevelopment()
		if err != nil {
			panic(err)
		}
	}
	log.SetLogger(logger)

	framing.Register()
}
