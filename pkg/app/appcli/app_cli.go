// Package appcli implements the zinputd command line interface.
package appcli

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	"github.com/spf13/cobra"

	"github.com/zinput/zinput-go/device"
	"github.com/zinput/zinput-go/pkg/app"
	"github.com/zinput/zinput-go/swipacket"
	"github.com/zinput/zinput-go/znet"
)

func Main(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	dir, err := os.UserConfigDir()
	if err != nil {
		return err
	}
	cmd := NewRootCmd(filepath.Join(dir, "zinput"))
	cmd.SetArgs(args)
	cmd.SetIn(in)
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	return cmd.ExecuteContext(ctx)
}

type appProvider func() *app.App

func NewRootCmd(configDir string) *cobra.Command {
	cfg := app.Config{
		DataDir:       filepath.Join(configDir, "data"),
		DevicesConfig: filepath.Join(configDir, "devices.yml"),
		PluginsConfig: filepath.Join(configDir, "plugins.yml"),
	}
	rootCmd := &cobra.Command{
		Use:   "zinputd",
		Short: "zinput daemon",
		Long:  `zinputd aggregates input devices into virtual controllers and keeps their merged state available for distribution.`,
	}
	var a *app.App
	provider := func() *app.App {
		return a
	}
	rootCmd.PersistentFlags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&cfg.DevicesConfig, "devices-config", cfg.DevicesConfig, "device config file")
	rootCmd.PersistentFlags().StringVar(&cfg.PluginsConfig, "plugins-config", cfg.PluginsConfig, "plugin config file")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		var err error
		a, err = app.NewApp(cfg)
		return err
	}
	rootCmd.AddCommand(NewRun(provider))
	rootCmd.AddCommand(NewListDevices(provider))
	rootCmd.AddCommand(NewShowDevice(provider))
	rootCmd.AddCommand(NewWireDump(provider))
	return rootCmd
}

func NewRun(a appProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the zinput daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a().Close()
			return a().Run(cmd.Context())
		},
	}
}

func NewListDevices(a appProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "list-devices",
		Short: "List registered devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a().Close()
			for _, view := range a().Engine().Devices() {
				info := view.Info()
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s", view.ID(), info.Name)
				if info.ID != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "  (%s)", info.ID)
				}
				for _, k := range device.Kinds {
					if n := info.Len(k); n > 0 {
						fmt.Fprintf(cmd.OutOrStdout(), "  %s:%d", k, n)
					}
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

func NewShowDevice(a appProvider) *cobra.Command {
	var kindName string
	cmd := &cobra.Command{
		Use:   "show-device <id>",
		Short: "Show a device's info and current state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a().Close()
			mask := device.MaskAll
			if kindName != "" {
				k, err := device.ParseKind(kindName)
				if err != nil {
					return err
				}
				mask = k.Mask()
			}
			for _, view := range a().Engine().Devices() {
				if view.ID().String() != args[0] && view.Info().ID != args[0] {
					continue
				}
				data, err := yaml.Marshal(view.Info())
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				view.State(func(d *device.Device) {
					data, err = yaml.Marshal(d.Filter(mask))
				})
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			}
			return fmt.Errorf("device %q not found", args[0])
		},
	}
	cmd.Flags().StringVar(&kindName, "kind", "", "show only this component kind (e.g. controller, touch_pad)")
	return cmd
}

func NewWireDump(a appProvider) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "wire-dump",
		Short: "Hex-dump the wire packet built from the current devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer a().Close()
			var states []*device.Device
			for _, view := range a().Engine().Devices() {
				view.State(func(d *device.Device) {
					states = append(states, d.Clone())
				})
			}
			switch format {
			case "znet":
				p := znet.FromDevices("zinputd", states)
				data, err := p.MarshalBinary()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), hex.Dump(data))
			case "swi":
				var buf swipacket.Buffer
				n := 0
				for _, d := range states {
					if n == swipacket.MaxControllers {
						break
					}
					if len(d.Controllers) == 0 {
						continue
					}
					c := d.Controllers[0]
					sc := swipacket.Controller{
						Number:     uint8(n),
						Buttons:    swiButtons(c),
						LeftStick:  [2]uint8{c.LeftStickX, c.LeftStickY},
						RightStick: [2]uint8{c.RightStickX, c.RightStickY},
					}
					if len(d.Motions) > 0 {
						m := d.Motions[0]
						sc.Accelerometer = [3]float32{m.AccelX, m.AccelY, m.AccelZ}
						sc.Gyroscope = [3]float32{m.GyroPitch, m.GyroRoll, m.GyroYaw}
					}
					buf.SetController(n, sc)
					n++
				}
				buf.SetNumControllers(n)
				fmt.Fprint(cmd.OutOrStdout(), hex.Dump(buf.Sendable()))
			default:
				return fmt.Errorf("unknown format %q", format)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "znet", "packet format (znet or swi)")
	return cmd
}

// swiButtonMap translates controller button bits into the 16-bit swi mask.
// Buttons without a swi equivalent are dropped.
var swiButtonMap = map[device.Button]swipacket.Button{
	device.ButtonSelect: swipacket.ButtonMinus,
	device.ButtonLStick: swipacket.ButtonLStick,
	device.ButtonRStick: swipacket.ButtonRStick,
	device.ButtonStart:  swipacket.ButtonPlus,
	device.ButtonUp:     swipacket.ButtonUp,
	device.ButtonRight:  swipacket.ButtonRight,
	device.ButtonDown:   swipacket.ButtonDown,
	device.ButtonLeft:   swipacket.ButtonLeft,
	device.ButtonL2:     swipacket.ButtonZL,
	device.ButtonR2:     swipacket.ButtonZR,
	device.ButtonL1:     swipacket.ButtonL,
	device.ButtonR1:     swipacket.ButtonR,
	device.ButtonY:      swipacket.ButtonY,
	device.ButtonB:      swipacket.ButtonB,
	device.ButtonA:      swipacket.ButtonA,
	device.ButtonX:      swipacket.ButtonX,
}

func swiButtons(c device.Controller) uint16 {
	var out uint16
	for db, sb := range swiButtonMap {
		if c.Pressed(db) {
			out |= 1 << sb
		}
	}
	return out
}
