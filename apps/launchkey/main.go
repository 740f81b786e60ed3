// Command launchkey bridges a Launchkey Mini MK4 to a Zynthian over OSC.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hypebeast/go-osc/osc"
	midi "gitlab.com/gomidi/midi/v2"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver

	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/config"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices/launchkey"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/devices/zynthian"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/logging"
	"github.com/PatttF/Zynthian-Launchkey-Mini-MK4/surface"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML configuration")
	listPorts := flag.Bool("list", false, "print the available MIDI ports and exit")
	flag.Parse()

	if err := run(*configPath, *listPorts); err != nil {
		logging.Get(logging.APP).Error("Exiting", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, listPorts bool) error {
	defer midi.CloseDriver()
	log := logging.Get(logging.APP)

	if listPorts {
		fmt.Printf("inports:\n%s\noutports:\n%s\n", midi.GetInPorts(), midi.GetOutPorts())
		return nil
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := logging.SetLevels(cfg.Logging.Levels); err != nil {
		return err
	}

	in, err := midi.FindInPort(cfg.Midi.In)
	if err != nil {
		return fmt.Errorf("finding MIDI in port %q: %w", cfg.Midi.In, err)
	}
	out, err := midi.FindOutPort(cfg.Midi.Out)
	if err != nil {
		return fmt.Errorf("finding MIDI out port %q: %w", cfg.Midi.Out, err)
	}
	var opts []launchkey.Option
	if cfg.Midi.Synth != "" {
		synth, err := midi.FindOutPort(cfg.Midi.Synth)
		if err != nil {
			return fmt.Errorf("finding synth port %q: %w", cfg.Midi.Synth, err)
		}
		opts = append(opts, launchkey.WithSynth(devices.NewMidiDevice(nil, synth)))
	}

	host := devices.NewOscDevice(osc.NewClient(cfg.Osc.Host, cfg.Osc.Port), cfg.Osc.Listen)
	s := surface.New(cfg.SurfaceConfig())
	lk := launchkey.New(devices.NewMidiDevice(in, out), s, zynthian.NewHost(host), opts...)
	zynthian.BindFeedback(host, lk)

	if err := lk.Open(); err != nil {
		return err
	}
	defer func() {
		if err := lk.Close(); err != nil {
			log.Warn("Failed to release controller", "error", err)
		}
	}()
	log.Info("Controller ready", "in", cfg.Midi.In, "host", fmt.Sprintf("%s:%d", cfg.Osc.Host, cfg.Osc.Port), "bank", s.Bank())

	if cfg.Osc.Logging != "" {
		go func() {
			if err := logging.Serve(cfg.Osc.Logging); err != nil {
				log.Warn("Logging server stopped", "error", err)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runners := []func(context.Context) error{lk.Run, host.Run}
	errc := make(chan error, len(runners))
	for _, r := range runners {
		r := r
		go func() {
			errc <- r(ctx)
		}()
	}

	var errs []error
	for range runners {
		if err := <-errc; err != nil {
			errs = append(errs, err)
			stop()
		}
	}
	log.Info("Shutting down")
	return errors.Join(errs...)
}
