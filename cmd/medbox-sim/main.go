//go:build !rp2040 && !rp2350

// Command medbox-sim is the host simulation harness: it wires the same
// Supervisor against in-memory fakes (bus/busmem, the hal/*/Fake
// collaborators) so the full IDLE->...->REPORTING cycle and the bus
// protocol can be driven and observed from a desktop, without hardware.
package main

import (
	"bufio"
	"flag"
	"os"
	"strings"
	"time"

	"medbox-fw/bus"
	"medbox-fw/bus/busmem"
	"medbox-fw/hal/clock"
	"medbox-fw/hal/photo"
	"medbox-fw/hal/stepper"
	"medbox-fw/hal/tof"
	"medbox-fw/internal/config"
	"medbox-fw/internal/diag"
	"medbox-fw/internal/dispense"
	"medbox-fw/internal/levels"
	"medbox-fw/internal/presence"
	"medbox-fw/internal/protocol"
	"medbox-fw/internal/supervisor"
	"medbox-fw/x/fmtx"
)

func main() {
	tickMs := flag.Duration("tick", 2*time.Millisecond, "Supervisor tick period")
	mag1Level := flag.Int("mag1-sensor", 1000, "magazine 1 photo-interrupter baseline level")
	mag2Level := flag.Int("mag2-sensor", 1000, "magazine 2 photo-interrupter baseline level")
	flag.Parse()

	log := diag.New()
	cfg := config.Default()
	topics := protocol.New(cfg.DevicePrefix)

	busClient := busmem.New()

	photo1 := photo.NewFake(*mag1Level)
	photo2 := photo.NewFake(*mag2Level)
	magazines := map[dispense.MagazineID]*dispense.Magazine{
		dispense.Magazine1: {ID: dispense.Magazine1, Stepper: stepper.NewFake(), Photo: photo1, NextDirection: dispense.DirClockwise},
		dispense.Magazine2: {ID: dispense.Magazine2, Stepper: stepper.NewFake(), Photo: photo2, NextDirection: dispense.DirClockwise},
	}

	sysClock := clock.System{}
	q := dispense.NewQueue()
	mailbox := dispense.NewMailbox(cfg.MailboxLen)

	machineCfg := dispense.Config{
		MaxStepsSafety:  cfg.MaxStepsSafety,
		SensorThreshold: cfg.SensorThreshold,
		JamTimeoutMs:    cfg.JamTimeoutMs,
		CooldownMs:      cfg.CooldownMs,
	}
	dm := dispense.NewMachine(magazines, q, sysClock, busClient, topics.Dispensed(), log, machineCfg)

	levelPub := levels.New(tof.NewFake(100), tof.NewFake(100), sysClock, busClient, topics.Levels(), log, cfg.LevelIntervalMs)
	pm := presence.New(busClient, sysClock, log, topics, cfg.ClientID()+"-sim", mailbox)
	sup := supervisor.New(pm, mailbox, q, dm, levelPub, log, cfg.AmountClamp)

	_ = busClient.Subscribe(topics.Dispensed(), 0, func(_ string, payload []byte) {
		fmtx.Printf("[%s] %s\n", topics.Dispensed(), payload)
	})
	_ = busClient.Subscribe(topics.Levels(), 0, func(_ string, payload []byte) {
		fmtx.Printf("[%s] %s\n", topics.Levels(), payload)
	})
	_ = busClient.Subscribe(topics.Status(), 1, func(_ string, payload []byte) {
		fmtx.Printf("[%s] %s\n", topics.Status(), payload)
	})

	fmtx.Printf("medbox-sim: type e.g. `dispense 1 3` to queue 3 pills from magazine 1, `quit` to exit\n")
	go runConsole(busClient, topics)

	for {
		sup.Tick()
		time.Sleep(*tickMs)
	}
}

// runConsole reads operator commands from stdin and publishes them as a
// real operator's MQTT client would, exercising the same bus.Client
// path as a production broker rather than calling internal APIs directly.
func runConsole(busClient bus.Client, topics protocol.Topics) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "quit", "exit":
			os.Exit(0)
		case "dispense":
			if len(fields) != 3 {
				fmtx.Printf("usage: dispense <magazineId> <amount>\n")
				continue
			}
			payload := fmtx.Sprintf(`{"amounts":[{"magazineId":%s,"amount":%s}]}`, fields[1], fields[2])
			busClient.Publish(topics.Dispense(), 0, false, []byte(payload))
		default:
			fmtx.Printf("unknown command: %s\n", fields[0])
		}
	}
}
