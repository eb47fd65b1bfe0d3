// libnitrokey: a host-side driver and TUI for Nitrokey Pro/Storage devices
// Copyright (C) 2026  The libnitrokey authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vinaebizs/libnitrokey/internal/cli/ui"
)

func main() {
	logger := ui.GetLogger()
	defer logger.Close()

	p := tea.NewProgram(ui.NewModel(), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "nitrokey-tui: %v\n", err)
		os.Exit(1)
	}
}
