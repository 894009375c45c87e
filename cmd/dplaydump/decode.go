package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/vuuvv/errors"

	"github.com/vuuvv/vdplay/core"
	"github.com/vuuvv/vdplay/dplay"
	"github.com/vuuvv/vdplay/framing"
)

// NewDecodeCommand returns the command decoding a capture file, "-" reads stdin.
func NewDecodeCommand() *cobra.Command {
	flags := &configFlags{}
	var tree bool

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a capture file",
		Example: `dplaydump decode capture.hex --tree
dplaydump decode stream.bin --framing dplay --filter 'msg.command == 0x16'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := flags.load(cmd)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return errors.WithStack(err)
				}
				defer func() {
					_ = f.Close()
				}()
				in = f
			}

			p := &printer{out: cmd.OutOrStdout(), tree: tree}
			codec := core.NewCodec(dplay.NewProtocol(config)).Config(config).Stream(in)
			return codec.Scan(p.print)
		},
	}
	flags.bind(cmd, framing.Text)
	cmd.Flags().BoolVar(&tree, "tree", false, "print the decoded field tree")
	return cmd
}

type printer struct {
	out   io.Writer
	tree  bool
	count int
}

func (this *printer) print(result *core.ScanResult) (err error) {
	this.count++
	switch {
	case result.Abandoned:
		_, err = fmt.Fprintf(this.out, "#%d abandoned %d bytes\n", this.count, len(result.Packet))
		return errors.WithStack(err)
	case result.Filtered:
		return nil
	}

	m, ok := result.Data.(*dplay.Message)
	if !ok {
		_, err = fmt.Fprintf(this.out, "#%d not DirectPlay, %d bytes\n", this.count, len(result.Packet))
		return errors.WithStack(err)
	}
	if _, err = fmt.Fprintf(this.out, "#%d %s\n", this.count, m.Summary()); err != nil {
		return errors.WithStack(err)
	}
	if result.ScanError != nil {
		if _, err = fmt.Fprintf(this.out, "  ! filter: %v\n", result.ScanError); err != nil {
			return errors.WithStack(err)
		}
	}
	for _, d := range m.Diagnostics {
		if _, err = fmt.Fprintf(this.out, "  ! %s\n", d.Error()); err != nil {
			return errors.WithStack(err)
		}
	}
	if this.tree {
		return errors.WithStack(core.Render(this.out, m.Fields))
	}
	return nil
}
