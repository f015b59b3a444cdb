// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/asurkis/risc-emulator/emulator"
)

func main() {
	var compile string
	var boot string
	var save string
	var listing bool
	var input string
	var output string
	var verbose bool
	var steps int
	var memory int
	var config string

	flag.StringVar(&compile, "c", "", "assembly source file to compile")
	flag.StringVar(&boot, "b", "", "boot image to run instead of a source file")
	flag.StringVar(&save, "s", "", "save the boot image to a file, do not execute")
	flag.BoolVar(&listing, "l", false, "print a disassembly listing, do not execute")
	flag.StringVar(&input, "i", "-", "tape input")
	flag.StringVar(&output, "o", "-", "tape output")
	flag.BoolVar(&verbose, "v", false, "verbose mode")
	flag.IntVar(&steps, "n", emulator.STEP_LIMIT, "step limit, 0 for no limit")
	flag.IntVar(&memory, "m", 0, "memory size in slots")
	flag.StringVar(&config, "config", "", "TOML configuration file")

	flag.Parse()

	if flag.NArg() != 0 {
		logrus.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if (len(compile) == 0) == (len(boot) == 0) {
		logrus.Fatalf("%v: exactly one of -c or -b is required", os.Args[0])
	}

	conf := Config{StepLimit: steps}
	if len(config) != 0 {
		err := conf.Load(config)
		if err != nil {
			logrus.Fatalf("%v: %v", config, err)
		}
	}

	// Flags given on the command line win over the configuration.
	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "n":
			conf.StepLimit = steps
		case "m":
			conf.MemorySize = memory
		case "v":
			conf.Verbose = verbose
		}
	})

	if conf.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	emu := emulator.NewEmulator(conf.MemorySize)
	emu.Verbose = conf.Verbose
	emu.StepLimit = conf.StepLimit

	if len(compile) != 0 {
		inf, err := os.Open(compile)
		if err != nil {
			logrus.Fatalf("%v: %v", compile, err)
		}
		err = emu.Assemble(inf, conf.AllDefines())
		inf.Close()
		if err != nil {
			logrus.Fatalf("%v:\n%v", compile, err)
		}
	} else {
		inf, err := os.Open(boot)
		if err != nil {
			logrus.Fatalf("%v: %v", boot, err)
		}
		err = emu.Rom.Unmarshal(inf)
		inf.Close()
		if err == nil {
			err = emu.Boot()
		}
		if err != nil {
			logrus.Fatalf("%v: %v", boot, err)
		}
	}

	if len(save) != 0 {
		ouf, err := os.Create(save)
		if err != nil {
			logrus.Fatalf("%v: %v", save, err)
		}
		err = errors.Join(emu.Rom.Marshal(ouf), ouf.Close())
		if err != nil {
			logrus.Fatalf("%v: %v", save, err)
		}
	}

	if listing {
		err := emu.Listing(os.Stdout)
		if err != nil {
			logrus.Fatal(err)
		}
	}

	if len(save) != 0 || listing {
		return
	}

	if input == "-" {
		if term.IsTerminal(int(os.Stdin.Fd())) {
			logrus.Warn("reading tape input from the terminal")
		}
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			logrus.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	interactive := false
	if output == "-" {
		interactive = term.IsTerminal(int(os.Stdout.Fd()))
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			logrus.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ticks, err := emu.Run(ctx)
	if interactive {
		fmt.Println()
	}
	if conf.Verbose {
		logrus.WithFields(logrus.Fields{"steps": ticks, "pc": emu.Ip()}).Info("done")
	}
	if err != nil {
		logrus.Fatal(err)
	}
}
