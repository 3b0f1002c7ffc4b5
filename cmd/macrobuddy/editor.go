package main

import (
	"fmt"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/loonghao/poe2-macro-buddy/internal/config"
	"github.com/loonghao/poe2-macro-buddy/internal/core/macro"
)

var (
	actionTypes  = []string{"keyboard", "mouse"}
	mouseButtons = []string{"left", "right", "middle"}

	// Offered first to new macros, in this order.
	preferredActionKeys = []string{"1", "2", "3", "4", "5", "q", "w", "e", "r", "t"}
	preferredHotkeys    = []string{"F1", "F2", "F3", "F4", "F5", "F6", "F7", "F8", "F9", "F10", "F11", "F12"}
)

// macroDraft is one editable macro. Numbers stay as typed until saved.
type macroDraft struct {
	ActionType  string
	Key         string
	MouseButton string
	IntervalMs  string
	VarianceMs  string
	Hotkey      string
	Enabled     bool
}

func draftsFromConfig(cfg *config.Config) []macroDraft {
	drafts := make([]macroDraft, 0, len(cfg.Macros))
	for _, m := range cfg.Macros {
		actionType := strings.ToLower(strings.TrimSpace(m.ActionType))
		if actionType == "" {
			actionType = "keyboard"
		}
		drafts = append(drafts, macroDraft{
			ActionType:  actionType,
			Key:         friendlyKeyName(m.Key),
			MouseButton: strings.ToLower(strings.TrimSpace(m.MouseButton)),
			IntervalMs:  strconv.FormatUint(m.IntervalMs, 10),
			VarianceMs:  strconv.FormatUint(m.RandomVarianceMs, 10),
			Hotkey:      friendlyKeyName(m.ToggleHotkey),
			Enabled:     m.EnabledByDefault,
		})
	}
	return drafts
}

// friendlyKeyName maps "KEY_F9" and "f9" to the table spelling "F9" and
// leaves unknown symbols as written.
func friendlyKeyName(symbol string) string {
	if key, err := macro.ParseKey(symbol); err == nil {
		return key.String()
	}
	return symbol
}

// newDraft returns a keyboard macro whose key and hotkey are not used by any
// of existing.
func newDraft(existing []macroDraft) macroDraft {
	usedKeys := make(map[string]bool, len(existing))
	usedHotkeys := make(map[string]bool, len(existing))
	for _, d := range existing {
		if d.ActionType != "mouse" {
			usedKeys[strings.ToLower(friendlyKeyName(d.Key))] = true
		}
		usedHotkeys[strings.ToLower(friendlyKeyName(d.Hotkey))] = true
	}

	draft := macroDraft{
		ActionType:  "keyboard",
		MouseButton: "left",
		IntervalMs:  "1000",
		VarianceMs:  "200",
	}
	for _, key := range preferredActionKeys {
		if !usedKeys[key] {
			draft.Key = key
			break
		}
	}
	for _, hotkey := range preferredHotkeys {
		if !usedHotkeys[strings.ToLower(hotkey)] {
			draft.Hotkey = hotkey
			break
		}
	}
	return draft
}

func configFromDrafts(drafts []macroDraft) (*config.Config, error) {
	cfg := &config.Config{Macros: make([]config.MacroConfig, 0, len(drafts))}
	for idx, d := range drafts {
		interval, err := parseMillis(d.IntervalMs)
		if err != nil {
			return nil, fmt.Errorf("macro #%d: interval: %w", idx, err)
		}
		variance, err := parseMillis(d.VarianceMs)
		if err != nil {
			return nil, fmt.Errorf("macro #%d: random variance: %w", idx, err)
		}

		m := config.MacroConfig{
			ActionType:       d.ActionType,
			IntervalMs:       interval,
			RandomVarianceMs: variance,
			ToggleHotkey:     strings.TrimSpace(d.Hotkey),
			EnabledByDefault: d.Enabled,
		}
		if d.ActionType == "mouse" {
			m.MouseButton = d.MouseButton
		} else {
			m.Key = d.Key
		}
		cfg.Macros = append(cfg.Macros, m)
	}
	return cfg, nil
}

func parseMillis(value string) (uint64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a whole number of milliseconds", value)
	}
	return n, nil
}

// saveDrafts validates the drafts and writes them to path. Nothing is
// written when validation or lint fails.
func saveDrafts(path string, drafts []macroDraft) (*config.Config, error) {
	cfg, err := configFromDrafts(drafts)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Lint(); err != nil {
		return nil, fmt.Errorf("%w: %w", macro.ErrInvalidConfiguration, err)
	}
	if err := config.Save(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func keyChoices() []string {
	keys := macro.SupportedKeys()
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		out = append(out, key.String())
	}
	return out
}

// configEditor is the Configure tab: one row per macro plus add, revert and
// save.
type configEditor struct {
	drafts []macroDraft
	rows   *fyne.Container
	status *widget.Label
	keys   []string

	load func() (*config.Config, error)
	save func(drafts []macroDraft)
}

func newConfigEditor(load func() (*config.Config, error), save func(drafts []macroDraft)) *configEditor {
	return &configEditor{
		rows:   container.NewVBox(),
		status: widget.NewLabel(""),
		keys:   keyChoices(),
		load:   load,
		save:   save,
	}
}

// revert replaces the drafts with the file on disk.
func (e *configEditor) revert() error {
	cfg, err := e.load()
	if err != nil {
		return err
	}
	e.drafts = draftsFromConfig(cfg)
	e.render()
	e.status.SetText("")
	return nil
}

func (e *configEditor) render() {
	objects := make([]fyne.CanvasObject, 0, len(e.drafts)+1)
	objects = append(objects, container.NewGridWithColumns(7,
		widget.NewLabel("Type"),
		widget.NewLabel("Key / button"),
		widget.NewLabel("Interval ms"),
		widget.NewLabel("Variance ms"),
		widget.NewLabel("Toggle hotkey"),
		widget.NewLabel("At start"),
		widget.NewLabel(""),
	))
	for idx := range e.drafts {
		objects = append(objects, e.row(idx))
	}
	e.rows.Objects = objects
	e.rows.Refresh()
}

func (e *configEditor) row(idx int) fyne.CanvasObject {
	d := e.drafts[idx]

	keyEntry := widget.NewSelectEntry(e.keys)
	keyEntry.SetText(d.Key)
	keyEntry.OnChanged = func(v string) { e.drafts[idx].Key = v }

	buttonSelect := widget.NewSelect(mouseButtons, nil)
	buttonSelect.SetSelected(d.MouseButton)
	buttonSelect.OnChanged = func(v string) { e.drafts[idx].MouseButton = v }

	showAction := func(actionType string) {
		if actionType == "mouse" {
			keyEntry.Hide()
			buttonSelect.Show()
			return
		}
		buttonSelect.Hide()
		keyEntry.Show()
	}
	showAction(d.ActionType)

	typeSelect := widget.NewSelect(actionTypes, nil)
	typeSelect.SetSelected(d.ActionType)
	typeSelect.OnChanged = func(v string) {
		e.drafts[idx].ActionType = v
		if v == "mouse" && e.drafts[idx].MouseButton == "" {
			buttonSelect.SetSelected("left")
		}
		showAction(v)
	}

	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(d.IntervalMs)
	intervalEntry.OnChanged = func(v string) { e.drafts[idx].IntervalMs = v }

	varianceEntry := widget.NewEntry()
	varianceEntry.SetText(d.VarianceMs)
	varianceEntry.OnChanged = func(v string) { e.drafts[idx].VarianceMs = v }

	hotkeyEntry := widget.NewSelectEntry(e.keys)
	hotkeyEntry.SetText(d.Hotkey)
	hotkeyEntry.OnChanged = func(v string) { e.drafts[idx].Hotkey = v }

	enabledCheck := widget.NewCheck("Enabled", nil)
	enabledCheck.SetChecked(d.Enabled)
	enabledCheck.OnChanged = func(v bool) { e.drafts[idx].Enabled = v }

	removeBtn := widget.NewButtonWithIcon("", theme.DeleteIcon(), func() {
		e.drafts = append(e.drafts[:idx], e.drafts[idx+1:]...)
		e.render()
	})

	return container.NewGridWithColumns(7,
		typeSelect,
		container.NewStack(keyEntry, buttonSelect),
		intervalEntry,
		varianceEntry,
		hotkeyEntry,
		enabledCheck,
		removeBtn,
	)
}

func (e *configEditor) object() fyne.CanvasObject {
	addBtn := widget.NewButtonWithIcon("Add macro", theme.ContentAddIcon(), func() {
		e.drafts = append(e.drafts, newDraft(e.drafts))
		e.render()
	})
	revertBtn := widget.NewButtonWithIcon("Revert", theme.ViewRefreshIcon(), func() {
		if err := e.revert(); err != nil {
			e.status.SetText(err.Error())
		}
	})
	saveBtn := widget.NewButtonWithIcon("Save", theme.DocumentSaveIcon(), func() {
		if len(e.drafts) == 0 {
			e.status.SetText("Add at least one macro before saving.")
			return
		}
		e.save(append([]macroDraft(nil), e.drafts...))
	})
	saveBtn.Importance = widget.HighImportance

	footer := container.NewBorder(nil, nil, nil, container.NewHBox(addBtn, revertBtn, saveBtn), e.status)
	return container.NewBorder(nil, footer, nil, nil, container.NewVScroll(e.rows))
}
