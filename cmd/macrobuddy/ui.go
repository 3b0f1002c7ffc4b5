package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/loonghao/poe2-macro-buddy/internal/config"
	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

const (
	uiRefreshInterval = 150 * time.Millisecond
	maxUILogLines     = 50
)

type macroTheme struct {
	base fyne.Theme
}

func newMacroTheme() fyne.Theme {
	return &macroTheme{base: theme.DarkTheme()}
}

func (t *macroTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNameBackground:
		return color.NRGBA{R: 0x10, G: 0x0e, B: 0x0c, A: 0xff}
	case theme.ColorNameHeaderBackground:
		return color.NRGBA{R: 0x17, G: 0x14, B: 0x11, A: 0xff}
	case theme.ColorNameButton:
		return color.NRGBA{R: 0x26, G: 0x20, B: 0x1a, A: 0xff}
	case theme.ColorNameDisabledButton:
		return color.NRGBA{R: 0x1b, G: 0x18, B: 0x14, A: 0xff}
	case theme.ColorNameInputBorder, theme.ColorNameSeparator:
		return color.NRGBA{R: 0x3a, G: 0x31, B: 0x27, A: 0xff}
	case theme.ColorNamePrimary, theme.ColorNameHyperlink:
		return color.NRGBA{R: 0xd8, G: 0xa4, B: 0x4a, A: 0xff}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0xd8, G: 0xa4, B: 0x4a, A: 0x66}
	case theme.ColorNameHover:
		return color.NRGBA{R: 0xd8, G: 0xa4, B: 0x4a, A: 0x22}
	case theme.ColorNamePressed:
		return color.NRGBA{R: 0xd8, G: 0xa4, B: 0x4a, A: 0x40}
	case theme.ColorNameForeground:
		return color.NRGBA{R: 0xf1, G: 0xea, B: 0xdf, A: 0xff}
	case theme.ColorNameError:
		return color.NRGBA{R: 0xff, G: 0x82, B: 0x70, A: 0xff}
	case theme.ColorNameSuccess:
		return color.NRGBA{R: 0x8f, G: 0xd4, B: 0x8a, A: 0xff}
	}
	return t.base.Color(name, variant)
}

func (t *macroTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.base.Font(style)
}

func (t *macroTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.base.Icon(name)
}

func (t *macroTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding, theme.SizeNameInnerPadding, theme.SizeNameInputRadius:
		return 8
	}
	return t.base.Size(name)
}

// macroRow is one line of the macro table.
type macroRow struct {
	index   int
	summary *widget.Label
	hotkey  *widget.Label
	counts  *widget.Label
	toggle  *widget.Button
}

func newMacroRow(st macro.Status, onToggle func(index int)) *macroRow {
	row := &macroRow{
		index:   st.Index,
		summary: widget.NewLabel(fmt.Sprintf("#%d  %s", st.Index, st.Action.Describe())),
		hotkey:  widget.NewLabel(st.ToggleHotkey),
		counts:  widget.NewLabel(""),
	}
	row.summary.TextStyle = fyne.TextStyle{Bold: true}
	row.toggle = widget.NewButton("", func() { onToggle(row.index) })
	row.update(st)
	return row
}

func (r *macroRow) update(st macro.Status) {
	if st.Fault != "" {
		r.toggle.SetText("FAULT")
		r.toggle.Importance = widget.DangerImportance
		r.toggle.Disable()
		r.counts.SetText(st.Fault)
		return
	}
	if st.Enabled {
		r.toggle.SetText("Enabled")
		r.toggle.Importance = widget.HighImportance
	} else {
		r.toggle.SetText("Disabled")
		r.toggle.Importance = widget.MediumImportance
	}
	r.toggle.Enable()
	r.toggle.Refresh()

	counts := fmt.Sprintf("fired %d", st.Fired)
	if st.Failures > 0 {
		counts += fmt.Sprintf(", failed %d", st.Failures)
	}
	r.counts.SetText(counts)
}

func (r *macroRow) object() fyne.CanvasObject {
	return container.NewGridWithColumns(4, r.summary, r.hotkey, r.counts, r.toggle)
}

func runUI(opts options, stderr io.Writer) error {
	fApp := fyneapp.New()
	fApp.Settings().SetTheme(newMacroTheme())

	window := fApp.NewWindow("Macro Buddy")
	window.Resize(fyne.NewSize(920, 560))
	window.CenterOnScreen()

	errorText := canvas.NewText("", nil)
	errorText.Color = theme.Color(theme.ColorNameError)
	phaseText := widget.NewLabel("Engine: idle")
	phaseText.TextStyle = fyne.TextStyle{Bold: true}
	configText := widget.NewLabel("Config: " + opts.configPath)
	configText.Truncation = fyne.TextTruncateEllipsis

	logGrid := widget.NewTextGrid()
	logScroll := container.NewVScroll(logGrid)
	logScroll.SetMinSize(fyne.NewSize(0, 150))

	var logMu sync.Mutex
	logLines := make([]string, 0, maxUILogLines)
	debugLogs := debugLogsEnabled()
	appendLogLine := func(line string) {
		if !debugLogs {
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			return
		}

		logMu.Lock()
		logLines = append(logLines, line)
		if len(logLines) > maxUILogLines {
			logLines = logLines[len(logLines)-maxUILogLines:]
		}
		logText := strings.Join(logLines, "\n")
		logMu.Unlock()

		fyne.Do(func() {
			logGrid.SetText(logText)
			logScroll.ScrollToBottom()
		})
	}
	logger := newSlogLogger(opts.logLevel, stderr, appendLogLine, true)

	showError := func(err error) {
		text := ""
		switch {
		case err == nil:
		case isPermissionError(err):
			text = permissionDeniedHint()
		case errors.Is(err, syscall.EBUSY):
			text = "Input device is in use by another app. Close the other app and try again."
		default:
			text = err.Error()
		}
		errorText.Text = text
		errorText.Refresh()
		if text != "" {
			appendLogLine("ERROR " + text)
		}
	}

	var stateMu sync.Mutex
	var current *app
	getApp := func() *app {
		stateMu.Lock()
		defer stateMu.Unlock()
		return current
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rowsBox := container.NewVBox()
	var rows []*macroRow
	shownRun := ""

	startStopBtn := widget.NewButton("Start", nil)
	startStopBtn.Importance = widget.HighImportance
	startStopBtn.Disable()
	reloadBtn := widget.NewButton("Reload config", nil)
	reloadBtn.Disable()
	initProgress := widget.NewProgressBarInfinite()

	var refresh func()
	onToggle := func(index int) {
		a := getApp()
		if a == nil {
			return
		}
		if _, err := a.engine.ToggleMacro(index); err != nil {
			showError(err)
		}
		refresh()
	}

	refresh = func() {
		a := getApp()
		if a == nil {
			return
		}
		phase := a.engine.Phase()
		runID := a.engine.RunID()
		statuses := a.engine.Status()

		if runID != shownRun || len(statuses) != len(rows) {
			shownRun = runID
			rows = rows[:0]
			objects := make([]fyne.CanvasObject, 0, len(statuses)+1)
			if len(statuses) > 0 {
				header := container.NewGridWithColumns(4,
					widget.NewLabel("Action"),
					widget.NewLabel("Toggle hotkey"),
					widget.NewLabel("Activity"),
					widget.NewLabel("State"),
				)
				objects = append(objects, header)
			}
			for _, st := range statuses {
				row := newMacroRow(st, onToggle)
				rows = append(rows, row)
				objects = append(objects, row.object())
			}
			rowsBox.Objects = objects
			rowsBox.Refresh()
		} else {
			for i, st := range statuses {
				rows[i].update(st)
			}
		}

		text := "Engine: " + phase.String()
		if runID != "" {
			text += "  (run " + runID[:8] + ")"
		}
		phaseText.SetText(text)
		if phase == macro.PhaseRunning {
			startStopBtn.SetText("Stop")
		} else {
			startStopBtn.SetText("Start")
		}
	}

	// runTaskAsync keeps engine work off the UI goroutine.
	var busy sync.Mutex
	runTaskAsync := func(task func(a *app) error) {
		a := getApp()
		if a == nil || !busy.TryLock() {
			return
		}
		initProgress.Show()
		go func() {
			defer busy.Unlock()
			err := task(a)
			fyne.Do(func() {
				initProgress.Hide()
				showError(err)
				refresh()
			})
		}()
	}

	startStopBtn.OnTapped = func() {
		runTaskAsync(func(a *app) error {
			if a.engine.Phase() == macro.PhaseRunning {
				a.stop()
				a.engine.Wait()
				return nil
			}
			return a.start()
		})
	}
	reloadBtn.OnTapped = func() {
		runTaskAsync(func(a *app) error {
			return a.reload("reload button")
		})
	}

	var editor *configEditor
	editor = newConfigEditor(
		func() (*config.Config, error) { return config.Load(opts.configPath) },
		func(drafts []macroDraft) {
			if getApp() == nil {
				if _, err := saveDrafts(opts.configPath, drafts); err != nil {
					editor.status.SetText(err.Error())
					return
				}
				editor.status.SetText("Saved " + time.Now().Format("15:04:05"))
				return
			}
			runTaskAsync(func(a *app) error {
				err := a.saveConfig(drafts)
				fyne.Do(func() {
					if err != nil {
						editor.status.SetText("Not saved: " + err.Error())
						return
					}
					editor.status.SetText("Saved " + time.Now().Format("15:04:05"))
				})
				return err
			})
		},
	)

	go func() {
		ticker := time.NewTicker(uiRefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fyne.Do(refresh)
			}
		}
	}()

	var closeOnce sync.Once
	cleanup := func() {
		closeOnce.Do(func() {
			cancel()
			if a := getApp(); a != nil {
				a.close()
			}
		})
	}

	requestQuit := func() {
		fyne.Do(func() {
			cleanup()
			if currentApp := fyne.CurrentApp(); currentApp != nil {
				currentApp.Quit()
				return
			}
			window.SetCloseIntercept(nil)
			window.Close()
		})
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			requestQuit()
		case <-ctx.Done():
		}
	}()

	// Some GUI backends can leave Ctrl+C as raw ETX byte instead of SIGINT.
	go func() {
		buf := make([]byte, 1)
		for {
			n, err := os.Stdin.Read(buf)
			if err != nil {
				return
			}
			if n == 1 && buf[0] == 3 {
				requestQuit()
				return
			}
		}
	}()

	window.SetCloseIntercept(func() {
		cleanup()
		if currentApp := fyne.CurrentApp(); currentApp != nil {
			currentApp.Quit()
			return
		}
		window.SetCloseIntercept(nil)
		window.Close()
	})

	titleText := canvas.NewText("MACRO BUDDY", color.NRGBA{R: 0xd8, G: 0xa4, B: 0x4a, A: 0xff})
	titleText.TextStyle = fyne.TextStyle{Bold: true}
	titleText.TextSize = 28

	accentLine := canvas.NewRectangle(color.NRGBA{R: 0xd8, G: 0xa4, B: 0x4a, A: 0xff})
	accentLine.SetMinSize(fyne.NewSize(220, 3))

	macrosCard := widget.NewCard("Macros", "Press a macro's hotkey in game or use the buttons below", container.NewVScroll(rowsBox))
	buttons := container.NewGridWithColumns(2, startStopBtn, reloadBtn)

	tabs := container.NewAppTabs(
		container.NewTabItem("Macros", macrosCard),
		container.NewTabItem("Configure", editor.object()),
	)

	mainContent := container.NewBorder(
		container.NewVBox(titleText, accentLine, phaseText, configText),
		container.NewVBox(errorText, initProgress, buttons),
		nil, nil,
		tabs,
	)
	mainPanel := container.NewPadded(mainContent)

	var rootContent fyne.CanvasObject = mainPanel
	if debugLogs {
		logsCard := widget.NewCard("Logs", "", logScroll)
		split := container.NewVSplit(mainPanel, logsCard)
		split.SetOffset(0.7)
		rootContent = split
	}

	appendLogLine("INFO Initializing input backend...")
	go func() {
		a, err := newApp(opts, logger)
		if err == nil {
			err = a.start()
			stateMu.Lock()
			current = a
			stateMu.Unlock()
			if ctx.Err() != nil {
				// Window closed while the backend was opening.
				a.close()
				return
			}
			a.serveBackground(ctx)
		}
		fyne.Do(func() {
			initProgress.Hide()
			showError(err)
			if getApp() != nil {
				startStopBtn.Enable()
				reloadBtn.Enable()
				appendLogLine("INFO Initialization complete")
			}
			if loadErr := editor.revert(); loadErr != nil {
				editor.status.SetText(loadErr.Error())
			}
			refresh()
		})
	}()

	window.SetContent(rootContent)
	window.ShowAndRun()
	cleanup()
	return nil
}
