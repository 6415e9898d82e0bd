// Command slave-host runs the display-slave firmware's core state
// machine against a simulated panel and link instead of real
// hardware, grounded on the teacher's main_host.go entrypoint but
// upgraded from flag to cobra per spec.md's host-tooling section.
package main

import (
	"fmt"
	"os"
	"time"

	"dslave/hal"
	"dslave/internal/buildinfo"
	"dslave/slave/proto"
	"dslave/slave/state"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	panelHeight int
	serialPath  string
	headless    bool
	ticks       int
)

func main() {
	root := &cobra.Command{
		Use:     "slave-host",
		Short:   "Run the display-slave firmware against a simulated panel.",
		Version: buildinfo.Short(),
	}
	root.PersistentFlags().IntVar(&panelHeight, "panel-height", 64, "Panel height in pixels (32 or 64).")
	root.PersistentFlags().StringVar(&serialPath, "serial", "", "Path to a serial device or PTY that receives the firmware's responses (in-memory transport with nothing attached if unset).")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the firmware loop, windowed unless --headless.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHost()
		},
	}
	runCmd.Flags().BoolVar(&headless, "headless", false, "Run without a window.")
	runCmd.Flags().IntVar(&ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")

	selftestCmd := &cobra.Command{
		Use:   "selftest",
		Short: "Exercise a ping round-trip against an in-memory transport and exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelftest()
		},
	}

	root.AddCommand(runCmd, selftestCmd)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
}

func validatePanelHeight() error {
	if panelHeight != 32 && panelHeight != 64 {
		return fmt.Errorf("--panel-height must be 32 or 64, got %d", panelHeight)
	}
	return nil
}

func runHost() error {
	if err := validatePanelHeight(); err != nil {
		return err
	}
	logger := newLogger()
	logger.Info().Str("build", buildinfo.Short()).Int("panel_height", panelHeight).Msg("starting slave-host")
	host := hal.NewHost(panelHeight)

	transport, closeTransport, err := openTransport(logger)
	if err != nil {
		return err
	}
	if closeTransport != nil {
		defer closeTransport()
	}

	machine := state.New(host.Display, transport, host.Buttons(), host.Clock, host, panelHeight, logger)

	if headless {
		return runHeadless(machine)
	}
	return runWindowed(machine, host)
}

// openTransport picks a real serial link when --serial is given, or
// an in-memory transport for quick dev runs with nothing on the other
// end. The serial link's reader (SerialTransport.Run) is not started,
// so only responses flow over it; bytes read from the device are not
// fed to the Framer.
func openTransport(logger zerolog.Logger) (hal.Transport, func(), error) {
	if serialPath == "" {
		return &hal.MemTransport{}, nil, nil
	}
	f, err := os.OpenFile(serialPath, os.O_RDWR, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("open serial %s: %w", serialPath, err)
	}
	st := hal.NewSerialTransport(f, f)
	return st, func() { _ = st.Close() }, nil
}

func runHeadless(machine *state.Machine) error {
	n := 0
	for ticks == 0 || n < ticks {
		machine.Tick()
		time.Sleep(time.Millisecond)
		n++
	}
	return nil
}

func runWindowed(machine *state.Machine, host *hal.Host) error {
	stop := make(chan struct{})
	go func() {
		t := time.NewTicker(time.Millisecond)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				machine.Tick()
			}
		}
	}()
	defer close(stop)

	ebiten.SetWindowTitle("slave-host")
	return ebiten.RunGame(host.Window)
}

// runSelftest feeds a ping frame through an in-memory transport pair
// and checks that a well-formed response comes back, a basic smoke
// exercise of spec.md §8 scenario S1.
func runSelftest() error {
	if err := validatePanelHeight(); err != nil {
		return err
	}
	logger := newLogger()
	host := hal.NewHost(panelHeight)

	var reply []byte
	transport := &hal.MemTransport{}
	transport.OnTx = func(b []byte) { reply = append([]byte{}, b...) }

	machine := state.New(host.Display, transport, host.Buttons(), host.Clock, host, panelHeight, logger)

	frame := proto.Encode([]byte{proto.CmdPing})
	pkt := append([]byte{proto.Sync0, proto.Sync1, byte(len(frame))}, frame...)
	for _, b := range pkt {
		machine.Framer().PushByte(b)
	}
	machine.Tick()
	transport.Complete()
	machine.Tick()

	if len(reply) < 4 || reply[0] != proto.Sync0 || reply[1] != proto.Sync1 {
		return fmt.Errorf("selftest: no well-formed ping response, got %x", reply)
	}
	fmt.Printf("selftest ok: response %x\n", reply)
	return nil
}
