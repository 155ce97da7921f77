//go:build rp2040 || rp2350

// Command medbox is the firmware entrypoint for the RP2040/RP2350 board:
// it wires the real hardware collaborators (steppers, photo-interrupters,
// time-of-flight sensors, the MQTT client) behind the same contracts the
// host simulation harness uses, then runs the cooperative Supervisor loop
// forever.
package main

import (
	"machine"
	"time"

	"medbox-fw/bus/mqttclient"
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
	"medbox-fw/x/conv"
	"medbox-fw/x/shmring"
)

// broker is the MQTT endpoint this board dials. It is a compile-time
// constant; internal/config has no broker key and does not override it.
const broker = "tcp://10.212.77.1:1883"

// deviceSerial identifies this board and is rendered as hex for the bus
// client ID, since the RP2040/RP2350 has no MAC address of its own to key
// off. It is a plain uint32 set in this file (0 by default); a linker -X
// flag sets only string variables, so it cannot change this value.
var deviceSerial uint32 = 0

func deviceMAC() string {
	var buf [8]byte
	return string(conv.U32Hex(buf[:], deviceSerial))
}

// Motor driver pins (step, dir, enable), active-low enable.
const (
	mag1Step, mag1Dir, mag1Enable = 2, 3, 4
	mag2Step, mag2Dir, mag2Enable = 5, 6, 7
)

// Photo-interrupter analog pins.
const (
	mag1PhotoPin = machine.ADC0
	mag2PhotoPin = machine.ADC1
)

func main() {
	// Let USB, clocks and the I2C buses settle before doing anything.
	time.Sleep(3 * time.Second)

	uartRing := shmring.New(1024)
	log := diag.New()
	log.SetSink(diag.NewRingSink(uartRing))
	log.Println("[main] bootstrapping medbox firmware ...")

	uart1 := machine.UART1
	uart1.Configure(machine.UARTConfig{BaudRate: 115200})

	cfg, err := config.Load(config.DefaultDevicePrefix, deviceMAC())
	if err != nil {
		log.Event("config_load_failed")
	}
	topics := protocol.New(cfg.DevicePrefix)

	busClient := mqttclient.New(broker)

	mag1I2C := machine.I2C0
	_ = mag1I2C.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})
	mag2I2C := machine.I2C1
	_ = mag2I2C.Configure(machine.I2CConfig{Frequency: 400 * machine.KHz})

	mag1ToF, err := tof.NewVL53L1X(mag1I2C)
	if err != nil {
		log.Event("tof_init_failed", "magazine", "1")
	}
	mag2ToF, err := tof.NewVL53L1X(mag2I2C)
	if err != nil {
		log.Event("tof_init_failed", "magazine", "2")
	}

	magazines := map[dispense.MagazineID]*dispense.Magazine{
		dispense.Magazine1: {
			ID:            dispense.Magazine1,
			Stepper:       stepper.NewGPIO(machine.Pin(mag1Step), machine.Pin(mag1Dir), machine.Pin(mag1Enable), true),
			Photo:         photo.NewADC(mag1PhotoPin),
			NextDirection: dispense.DirClockwise,
		},
		dispense.Magazine2: {
			ID:            dispense.Magazine2,
			Stepper:       stepper.NewGPIO(machine.Pin(mag2Step), machine.Pin(mag2Dir), machine.Pin(mag2Enable), true),
			Photo:         photo.NewADC(mag2PhotoPin),
			NextDirection: dispense.DirClockwise,
		},
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

	levelPub := levels.New(mag1ToF, mag2ToF, sysClock, busClient, topics.Levels(), log, cfg.LevelIntervalMs)
	pm := presence.New(busClient, sysClock, log, topics, cfg.ClientID(), mailbox)
	sup := supervisor.New(pm, mailbox, q, dm, levelPub, log, cfg.AmountClamp)

	log.Println("[main] entering tick loop ...")
	configPublished := false
	for {
		sup.Tick()
		if !configPublished && busClient.Connected() {
			config.PublishRetained(busClient, "medbox/"+cfg.DevicePrefix, cfg)
			configPublished = true
		}
		drainUART(uartRing, uart1)
		time.Sleep(2 * time.Millisecond)
	}
}

// drainUART flushes everything the diagnostic log has mirrored into
// uartRing out over uart1 since the last tick, so the ring never holds
// more than one tick's worth of log output.
func drainUART(ring *shmring.Ring, uart1 *machine.UART) {
	var buf [128]byte
	for {
		n := ring.TryReadInto(buf[:])
		if n == 0 {
			return
		}
		uart1.Write(buf[:n])
	}
}
