package main

import (
	"fmt"
	"io"

	units "github.com/docker/go-units"
	"github.com/moffa90/go-uartcl/nor"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// infoReport is the JSON form of nor info.
type infoReport struct {
	Edition       string `json:"edition"`
	ConsoleSerial string `json:"console_serial"`
	MoboSerial    string `json:"mobo_serial"`
	ModelNumber   string `json:"model_number"`
	WiFiMAC       string `json:"wifi_mac"`
	LANMAC        string `json:"lan_mac"`
	Size          int64  `json:"size"`
}

func newNorCmd(a *app) *cobra.Command {
	norCmd := &cobra.Command{
		Use:   "nor",
		Short: "PS5 NOR helpers",
		Long:  "Inspect and patch PS5 NOR flash dumps",
		RunE:  subCommandExists,
	}

	norCmd.AddCommand(
		newNorInfoCmd(a),
		newNorConvertCmd(a),
		newNorPatchCmd(a),
		newNorSetSerialCmd(a, "set-serial", "console", (*nor.Patcher).SetConsoleSerial),
		newNorSetSerialCmd(a, "set-mobo-serial", "motherboard", (*nor.Patcher).SetMoboSerial),
	)
	return norCmd
}

func newNorInfoCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "info [options] DUMP",
		Short: "Show edition and basic metadata of a NOR dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return errors.Errorf("unsupported format %q: must be text or json", format)
			}

			info, err := a.patcher().Scan(args[0])
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(cmd.OutOrStdout(), newInfoReport(info))
			}
			printInfo(cmd.OutOrStdout(), info)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "Output format (text or json)")
	return cmd
}

func newInfoReport(info *nor.Info) infoReport {
	return infoReport{
		Edition:       info.Edition.String(),
		ConsoleSerial: info.ConsoleSerial,
		MoboSerial:    info.MoboSerial,
		ModelNumber:   info.ModelNumber,
		WiFiMAC:       info.WiFiMAC,
		LANMAC:        info.LANMAC,
		Size:          info.Size,
	}
}

func printInfo(w io.Writer, info *nor.Info) {
	m := info.Map()
	for _, key := range nor.Keys() {
		fmt.Fprintf(w, "%-14s: %s\n", key, m[key])
	}
	fmt.Fprintf(w, "%-14s: %s (%d bytes)\n", "size", units.BytesSize(float64(info.Size)), info.Size)
}

// editionValue is a pflag.Value accepting edition names.
type editionValue struct {
	edition nor.Edition
}

var _ pflag.Value = (*editionValue)(nil)

func (v *editionValue) String() string {
	if v.edition == nor.EditionUnknown {
		return ""
	}
	return v.edition.String()
}

func (v *editionValue) Set(name string) error {
	e, err := nor.ParseEdition(name)
	if err != nil {
		return err
	}
	v.edition = e
	return nil
}

func (v *editionValue) Type() string {
	return "edition"
}

func newNorConvertCmd(a *app) *cobra.Command {
	var (
		edition editionValue
		output  string
	)

	cmd := &cobra.Command{
		Use:   "convert [options] SRC",
		Short: "Convert a NOR dump to another console edition",
		Long: `Rewrite both edition flags of SRC and replace every redundant copy of
the other editions' flags. The dump is patched in place unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := edition.edition
			if err := a.patcher().ConvertEdition(args[0], target, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Converted dump to %s edition: %s\n", target, destination(args[0], output))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.VarP(&edition, "edition", "e", "Target edition (digital, disc or slim)")
	flags.StringVarP(&output, "output", "o", "", "Write the converted dump to this path instead of patching SRC")
	_ = cmd.MarkFlagRequired("edition")
	return cmd
}

func newNorPatchCmd(a *app) *cobra.Command {
	var digital, disc bool

	cmd := &cobra.Command{
		Use:   "patch [options] SRC DST",
		Short: "Patch SRC dump and write it to DST",
		Long:  "Patch SRC dump to the digital (default) or disc edition and write it to DST.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := nor.EditionDigital
			if disc {
				target = nor.EditionDisc
			}
			if err := a.patcher().ConvertEdition(args[0], target, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Patched dump written to %s\n", args[1])
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&digital, "digital", false, "Target the digital edition (default)")
	flags.BoolVar(&disc, "disc", false, "Target the disc edition")
	cmd.MarkFlagsMutuallyExclusive("digital", "disc")
	return cmd
}

type serialSetter func(p *nor.Patcher, src, serial, dst string) error

func newNorSetSerialCmd(a *app, name, kind string, set serialSetter) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   name + " [options] SRC VALUE",
		Short: fmt.Sprintf("Write the %s serial number of a NOR dump", kind),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := set(a.patcher(), args[0], args[1], output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s serial %q to %s\n", kind, args[1], destination(args[0], output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the patched dump to this path instead of patching SRC")
	return cmd
}

func destination(src, output string) string {
	if output == "" {
		return src
	}
	return output
}
