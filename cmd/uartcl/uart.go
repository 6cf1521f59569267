package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/moffa90/go-uartcl/internal/logging"
	"github.com/moffa90/go-uartcl/uart"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var errNoPorts = errors.New("no serial ports detected")

func newUARTCmd(a *app) *cobra.Command {
	var (
		port string
		baud int
	)

	cmd := &cobra.Command{
		Use:   "uart [options]",
		Short: "Open an interactive UART session (Ctrl-C to quit)",
		Long: `Open an interactive UART session. Lines typed on stdin are sent to the
console with a CR LF terminator and every line received is printed.
Without --port the available ports are listed for selection.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("baud") {
				baud = a.cfg.Serial.Baud
			}
			if err := uart.ValidateBaud(baud); err != nil {
				return err
			}

			if port == "" {
				port = a.cfg.Serial.Port
			}
			if port == "" {
				var err error
				port, err = selectPort(cmd.InOrStdin(), cmd.ErrOrStderr(), uart.AvailablePorts(), isTerminal(cmd.InOrStdin()))
				if err != nil {
					return err
				}
			}

			return a.runTerminal(cmd, port, baud)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&port, "port", "", "Serial port path")
	flags.IntVar(&baud, "baud", uart.DefaultBaud, "Baud rate")
	return cmd
}

func (a *app) runTerminal(cmd *cobra.Command, name string, baud int) error {
	fmt.Fprintf(cmd.ErrOrStderr(), "Opening %s @ %d...\n", name, baud)

	port, err := uart.OpenPort(name, baud, uart.WithReadTimeout(a.cfg.Serial.ReadTimeout.Duration))
	if err != nil {
		return err
	}

	sess := uart.New(port, uart.WithLogger(logging.New(a.logger, "uart")))
	defer sess.Close()

	err = uart.RunTerminal(cmd.Context(), sess, cmd.InOrStdin(), cmd.OutOrStdout())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// selectPort lists ports on out and reads a 1-based choice from in,
// prompting again on invalid input.
func selectPort(in io.Reader, out io.Writer, ports []uart.PortInfo, interactive bool) (string, error) {
	if len(ports) == 0 {
		return "", errNoPorts
	}

	if !interactive {
		devices := make([]string, len(ports))
		for i, p := range ports {
			devices[i] = p.Device
		}
		return "", errors.Errorf("no --port given and stdin is not a terminal; available ports: %s", strings.Join(devices, ", "))
	}

	fmt.Fprintln(out, "Available ports:")
	for i, p := range ports {
		fmt.Fprintf(out, "  [%d] %s - %s\n", i+1, p.Device, p.Description)
	}

	reader := bufio.NewReader(in)
	for {
		fmt.Fprintf(out, "Select [1-%d]: ", len(ports))

		line, err := reader.ReadString('\n')
		if choice, convErr := strconv.Atoi(strings.TrimSpace(line)); convErr == nil && choice >= 1 && choice <= len(ports) {
			return ports[choice-1].Device, nil
		}
		if err != nil {
			if err == io.EOF {
				return "", errors.New("no port selected")
			}
			return "", errors.Wrap(err, "failed to read selection")
		}
		fmt.Fprintf(out, "Error: %q is not a valid choice\n", strings.TrimSpace(line))
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
