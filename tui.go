package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/nsf/termbox-go"

	"musview/pkg/midiseq"
	"musview/pkg/musfile"
)

const (
	colDef     = termbox.ColorDefault
	colWhite   = termbox.ColorWhite
	colRed     = termbox.ColorRed
	colGreen   = termbox.ColorGreen
	colYellow  = termbox.ColorYellow
	colCyan    = termbox.ColorCyan
	colMagenta = termbox.ColorMagenta
)

type TUIState struct {
	dir     string
	files   []string
	variant musfile.Variant

	selected int
	exit     bool

	// Decoded selection, nil until Enter succeeds.
	song     *musfile.Song
	songFile string
	detail   bool

	status    string
	statusErr bool
}

func runTUI(dir string, files []string, variant musfile.Variant) {
	if err := termbox.Init(); err != nil {
		fmt.Printf("Failed to initialize TUI: %v\n", err)
		return
	}
	defer termbox.Close()

	termbox.SetInputMode(termbox.InputEsc)

	state := &TUIState{
		dir:     dir,
		files:   files,
		variant: variant,
	}

	eventQueue := make(chan termbox.Event)

	go func() {
		for {
			eventQueue <- termbox.PollEvent()
		}
	}()

	draw(state)

	for !state.exit {
		ev := <-eventQueue
		switch ev.Type {
		case termbox.EventKey:
			handleKey(ev, state)
		case termbox.EventResize:
		}
		draw(state)
	}
}

func handleKey(ev termbox.Event, s *TUIState) {
	if s.detail {
		handleDetailKey(ev, s)
		return
	}

	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		s.exit = true
		return
	}

	switch ev.Key {
	case termbox.KeyArrowUp:
		s.selected--
		if s.selected < 0 {
			s.selected = len(s.files) - 1
		}
	case termbox.KeyArrowDown:
		s.selected++
		if s.selected >= len(s.files) {
			s.selected = 0
		}
	case termbox.KeyPgup:
		s.selected -= 10
		if s.selected < 0 {
			s.selected = 0
		}
	case termbox.KeyPgdn:
		s.selected += 10
		if s.selected >= len(s.files) {
			s.selected = len(s.files) - 1
		}
	case termbox.KeyEnter:
		if decodeSelection(s) {
			s.detail = true
		}
	}

	if ev.Ch == 'm' {
		convertSelection(s)
	}
}

func handleDetailKey(ev termbox.Event, s *TUIState) {
	if ev.Key == termbox.KeyEsc || ev.Ch == 'q' {
		s.detail = false
		return
	}
	if ev.Ch == 'm' {
		convertSelection(s)
	}
}

// decodeSelection decodes the selected file into s.song. Errors land in the
// status line instead of ending the UI.
func decodeSelection(s *TUIState) bool {
	name := s.files[s.selected]
	if s.song != nil && s.songFile == name {
		return true
	}

	path := filepath.Join(s.dir, name)
	song, err := musfile.DecodeFile(path, musfile.Options{Variant: s.variant})
	if err != nil {
		slog.Warn("decode failed", "file", path, "error", err)
		s.song = nil
		s.songFile = ""
		s.status = err.Error()
		s.statusErr = true
		return false
	}

	slog.Info("decoded", "file", path,
		"channels", song.Order.ChannelCount, "sequences", len(song.Sequences))
	s.song = song
	s.songFile = name
	s.status = ""
	s.statusErr = false
	return true
}

// convertSelection decodes the selection if needed and writes <name>.mid
// next to the source file.
func convertSelection(s *TUIState) {
	if !decodeSelection(s) {
		return
	}

	name := s.songFile
	base := strings.TrimSuffix(name, filepath.Ext(name))
	midPath := filepath.Join(s.dir, base+".mid")

	mid, err := midiseq.Build(s.song, base)
	if err != nil {
		slog.Warn("midi build failed", "file", name, "error", err)
		s.status = err.Error()
		s.statusErr = true
		return
	}
	if err := mid.WriteFile(midPath); err != nil {
		slog.Warn("midi write failed", "file", midPath, "error", err)
		s.status = err.Error()
		s.statusErr = true
		return
	}

	slog.Info("converted", "file", name, "output", midPath)
	s.status = "wrote " + midPath
	s.statusErr = false
}

func draw(state *TUIState) {
	_ = termbox.Clear(colDef, colDef)

	if state.detail && state.song != nil {
		drawDetail(state)
	} else {
		drawBrowser(state)
	}

	termbox.Flush()
}

func drawBrowser(state *TUIState) {
	w, h := termbox.Size()

	printTB(0, 0, colCyan, colDef, "musview - MUS file browser")
	printTB(0, 1, colWhite, colDef, fmt.Sprintf("Directory: %s  (variant: %s)", state.dir, state.variant))
	printTB(0, 2, colDef, colDef, "Up/Down/PgUp/PgDn to browse, Enter to inspect, 'm' to convert, 'q' or Esc to quit.")
	printTB(0, 3, colDef, colDef, strings.Repeat("-", min(w, 80)))

	listStartY := 5
	listHeight := h - listStartY - 2
	if listHeight < 5 {
		listHeight = 5
	}

	scrollOffset := 0
	if state.selected >= listHeight {
		scrollOffset = state.selected - listHeight + 1
	}

	for i := 0; i < listHeight && scrollOffset+i < len(state.files); i++ {
		idx := scrollOffset + i
		name := state.files[idx]

		col := colWhite
		bgColor := colDef
		prefix := "  "

		if idx == state.selected {
			col = colDef
			bgColor = colWhite
			prefix = "> "
		}

		suffix := ""
		if state.song != nil && name == state.songFile {
			suffix = " [decoded]"
		}

		line := truncate(fmt.Sprintf("%s%3d: %s%s", prefix, idx, name, suffix), w-1)
		printTB(0, listStartY+i, col, bgColor, line)
	}

	if len(state.files) > listHeight {
		scrollInfo := fmt.Sprintf("Showing %d-%d of %d",
			scrollOffset+1, min(scrollOffset+listHeight, len(state.files)), len(state.files))
		printTB(0, h-2, colYellow, colDef, scrollInfo)
	}

	drawStatus(state, h-1, w)
}

func drawDetail(state *TUIState) {
	w, h := termbox.Size()
	song := state.song
	sum := song.Summary()

	printTB(0, 0, colMagenta, colDef, "File: "+state.songFile)
	printTB(0, 1, colDef, colDef, "'m' to convert, Esc or 'q' to go back.")
	printTB(0, 2, colDef, colDef, strings.Repeat("-", min(w, 80)))

	printTB(0, 4, colWhite, colDef, fmt.Sprintf("Channels: %d   Sequences: %d (declared %d)   Track bytes: %d",
		sum.ChannelCount, sum.NumSequences, sum.DeclaredSequences, sum.TrackBytes))

	order := make([]string, len(sum.PlayOrder))
	for i, v := range sum.PlayOrder {
		order[i] = fmt.Sprintf("%d", v)
	}
	orderLine := truncate("Play order: "+strings.Join(order, " "), w-1)
	printTB(0, 5, colWhite, colDef, orderLine)

	sampleY := 7
	printTB(0, sampleY, colCyan, colDef, fmt.Sprintf("Samples (%d):", sum.SampleCount))
	y := sampleY + 1
	for _, sd := range song.SampleList() {
		if y >= h-len(sum.Warnings)-3 {
			printTB(2, y, colYellow, colDef, "...")
			y++
			break
		}
		line := fmt.Sprintf("  %2d: %-24s %8d bytes  vol %3d  %s",
			sd.Slot, sd.Name, sd.Size, sd.Volume, sd.Mode())
		if sd.Mode() == musfile.PlayModeLoop {
			line += fmt.Sprintf(" [%d..%d]", sd.LoopStart, sd.LoopEnd)
		}
		printTB(0, y, colGreen, colDef, truncate(line, w-1))
		y++
	}

	if len(sum.Warnings) > 0 {
		y++
		printTB(0, y, colYellow, colDef, fmt.Sprintf("Warnings (%d):", len(sum.Warnings)))
		y++
		for _, warn := range sum.Warnings {
			if y >= h-2 {
				printTB(2, y, colYellow, colDef, "...")
				break
			}
			printTB(0, y, colYellow, colDef, fmt.Sprintf("  sequence %d channel %d uses samples %v",
				warn.Sequence, warn.Channel, warn.Samples))
			y++
		}
	}

	drawStatus(state, h-1, w)
}

func drawStatus(state *TUIState, y, w int) {
	if state.status == "" {
		return
	}
	col := colGreen
	if state.statusErr {
		col = colRed
	}
	printTB(0, y, col, colDef, truncate(state.status, w-1))
}

// truncate caps a line at n screen cells, cutting on rune boundaries so a
// multibyte name never renders a half glyph.
func truncate(s string, n int) string {
	if n < 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func printTB(x, y int, fg, bg termbox.Attribute, msg string) {
	for _, c := range msg {
		termbox.SetCell(x, y, c, fg, bg)
		x++
	}
}
