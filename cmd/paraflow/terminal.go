package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

type switchMode string

const (
	modeAuto switchMode = "auto"
	modeOn   switchMode = "on"
	modeOff  switchMode = "off"
)

func readSwitch(flag, value string) (switchMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return modeAuto, nil
	case "on":
		return modeOn, nil
	case "off":
		return modeOff, nil
	default:
		return "", fmt.Errorf("invalid --%s value %q (expected auto|on|off)", flag, value)
	}
}

func readColorMode(value string) (switchMode, error) { return readSwitch("color", value) }

func readUIMode(value string) (switchMode, error) { return readSwitch("ui", value) }

// isTerminal проверяет, является ли файл терминалом (в том числе mintty/Cygwin)
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return term.IsTerminal(int(fd)) || isatty.IsCygwinTerminal(fd) // #nosec G115 -- fd fits in int
}

func useColor(mode switchMode, f *os.File) bool {
	switch mode {
	case modeOn:
		return true
	case modeOff:
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isTerminal(f)
}

func shouldUseTUI(mode switchMode) bool {
	switch mode {
	case modeOn:
		return true
	case modeOff:
		return false
	default:
		return isTerminal(os.Stdout) && isTerminal(os.Stderr)
	}
}
