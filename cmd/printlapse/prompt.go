package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
)

// prompter reads interactive answers with defaults: a blank line keeps the
// default, anything else must parse.
type prompter struct {
	in *bufio.Reader
}

func (p *prompter) read(label, def string) string {
	fmt.Printf("%s [%s]: ", label, color.CyanString(def))
	line, err := p.in.ReadString('\n')
	if err != nil {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

func (p *prompter) askString(label, def string) string {
	return p.read(label, def)
}

func (p *prompter) askInt(label string, def int) int {
	for {
		s := p.read(label, strconv.Itoa(def))
		v, err := strconv.Atoi(s)
		if err != nil {
			fmt.Printf("[!] Not a number: %q\n", s)
			continue
		}
		return v
	}
}

func (p *prompter) askFloat(label string, def float64) float64 {
	for {
		s := p.read(label, strconv.FormatFloat(def, 'g', -1, 64))
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			fmt.Printf("[!] Not a number: %q\n", s)
			continue
		}
		return v
	}
}

func (p *prompter) confirm(label string) bool {
	s := strings.ToLower(p.read(label, "Y"))
	return s == "y" || s == "yes"
}
