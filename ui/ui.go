package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/calvinmclean/rackbot"
	"github.com/calvinmclean/rackbot/controller"
	"github.com/calvinmclean/rackbot/sequencer"
)

const maxLogLines = 200

// gainSliders are the loops that can be tuned from the dashboard
var gainSliders = []struct {
	label string
	loop  byte
	kp    int32
}{
	{"Distance", 'd', sequencer.DefaultDistanceConfig.Kp},
	{"Angle", 'a', sequencer.DefaultAngleConfig.Kp},
	{"Heading", 'h', sequencer.DefaultHeadingConfig.Kp},
	{"Arm", 'r', sequencer.DefaultArmConfig.Kp},
	{"Wrist", 'w', sequencer.DefaultWristConfig.Kp},
}

func createSlider(labelText string, defaultValue int32, onSet func(int)) *fyne.Container {
	valueLabel := widget.NewLabel(fmt.Sprintf("%d", defaultValue))

	slider := widget.NewSlider(0, 200)
	slider.Step = 1
	slider.SetValue(float64(defaultValue))
	slider.OnChanged = func(value float64) {
		valueLabel.SetText(fmt.Sprintf("%.0f", value))
	}
	slider.OnChangeEnded = func(value float64) {
		onSet(int(value))
	}

	return container.NewVBox(
		container.NewGridWithColumns(2,
			widget.NewLabel(labelText),
			valueLabel,
		),
		slider,
	)
}

// RackbotUI is a bench dashboard. It is an io.Writer for the controller's output: telemetry lines
// update the phase display and everything is appended to the log
type RackbotUI struct {
	app fyne.App

	mtx     sync.Mutex
	ready   bool
	phase   rackbot.Phase
	logs    []string
	pending string

	phaseText   *canvas.Text
	runTimer    *timer
	phaseTimer  *timer
	logContent  *widget.Label
	startButton *widget.Button
}

func NewRackbotUI() *RackbotUI {
	return &RackbotUI{
		phaseText:  canvas.NewText(rackbot.PhaseIdle.String(), phaseColor(rackbot.PhaseIdle)),
		runTimer:   newTimer(false),
		phaseTimer: newTimer(true),
		logContent: widget.NewLabel(""),
	}
}

// Write implements io.Writer
func (ui *RackbotUI) Write(p []byte) (int, error) {
	ui.mtx.Lock()
	defer ui.mtx.Unlock()

	data := ui.pending + string(p)
	lines := strings.Split(data, "\n")
	ui.pending = lines[len(lines)-1]

	for _, line := range lines[:len(lines)-1] {
		ui.handleLine(line)
	}

	if ui.ready {
		text := strings.Join(ui.logs, "\n")
		fyne.Do(func() {
			ui.logContent.SetText(text)
		})
	}

	return len(p), nil
}

func (ui *RackbotUI) handleLine(line string) {
	ui.logs = append(ui.logs, line)
	if len(ui.logs) > maxLogLines {
		ui.logs = ui.logs[len(ui.logs)-maxLogLines:]
	}

	t, err := rackbot.ParseTelemetry(line)
	if err != nil || t.Phase == ui.phase {
		return
	}

	prev := ui.phase
	ui.phase = t.Phase
	now := time.Now()

	switch {
	case prev == rackbot.PhaseIdle:
		ui.runTimer.Start(now)
		ui.phaseTimer.Start(now)
	case t.Phase == rackbot.PhaseIdle:
		ui.runTimer.Stop()
		ui.phaseTimer.Stop()
	default:
		ui.phaseTimer.Start(now)
	}

	if !ui.ready {
		return
	}
	phase := t.Phase
	fyne.Do(func() {
		ui.phaseText.Text = phase.String()
		ui.phaseText.Color = phaseColor(phase)
		ui.phaseText.Refresh()
		if phase == rackbot.PhaseIdle {
			ui.startButton.SetText("Start")
		} else {
			ui.startButton.SetText("Stop")
		}
	})
}

// Run shows the config window and then the dashboard. start is called with the submitted config
// and should start the controller. Commands are written to w
func (ui *RackbotUI) Run(ctx context.Context, cfg *controller.Config, w io.Writer, start func() error) {
	ui.app = app.NewWithID("com.calvinmclean.rackbot")

	configWindow := NewConfigWindow(ui.app)
	configWindow.OnSubmit = func() {
		window := ui.showDashboard(ctx, w)

		err := start()
		if err != nil {
			showError(ui.app, window, fmt.Errorf("error starting controller: %w", err))
		}
	}
	configWindow.Show(cfg)

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			ui.app.Quit()
		})
	}()

	ui.app.Run()
}

func (ui *RackbotUI) showDashboard(ctx context.Context, w io.Writer) fyne.Window {
	window := ui.app.NewWindow("Rackbot")
	c := &controllerWrapper{writer: w}

	ui.runTimer.Go(ctx.Done())
	ui.phaseTimer.Go(ctx.Done())
	ui.phaseText.TextSize = 24

	ui.startButton = widget.NewButton("Start", func() {
		ui.mtx.Lock()
		phase := ui.phase
		ui.mtx.Unlock()

		if phase == rackbot.PhaseIdle {
			c.StartAutonomous()
		} else {
			c.StopAutonomous()
		}
	})

	var switches switchState
	otherSide := widget.NewCheck("Other Side", func(b bool) {
		switches.otherSide = b
		c.SetSwitches(switches)
	})
	sweepEnable := widget.NewCheck("Sweep", func(b bool) {
		switches.sweepEnable = b
		c.SetSwitches(switches)
	})
	sweepDirection := widget.NewCheck("Sweep Positive", func(b bool) {
		switches.sweepDirection = b
		c.SetSwitches(switches)
	})
	// initial selections are set before OnChanged so nothing is written before the controller runs
	height := widget.NewSelect(heightOptions, nil)
	height.SetSelected(rackbot.ScoreLow.String())
	height.OnChanged = func(s string) {
		switches.height = s
		c.SetSwitches(switches)
	}

	profile := widget.NewSelect(profileOptions, nil)
	profile.SetSelected(rackbot.ProfileTuned.String())
	profile.OnChanged = c.SetProfile

	extension := widget.NewCheck("Extension", c.SetExtension)

	gains := container.NewVBox()
	for _, g := range gainSliders {
		loop := g.loop
		gains.Add(createSlider(g.label, g.kp, func(kp int) {
			c.SetGain(loop, kp)
		}))
	}

	logScroll := container.NewVScroll(ui.logContent)
	logScroll.SetMinSize(fyne.NewSize(300, 150))

	contentContainer := container.NewVBox(
		container.NewHBox(
			container.NewPadded(ui.runTimer.text),
			container.NewPadded(ui.phaseTimer.text),
			layout.NewSpacer(),
			container.NewPadded(ui.phaseText),
		),
		container.NewGridWithColumns(3,
			ui.startButton,
			widget.NewButton("Reset Encoders", c.ResetEncoders),
			widget.NewButton("Debug", c.Debug),
		),
		widget.NewCard("Switches", "", container.NewVBox(
			container.NewHBox(otherSide, sweepEnable, sweepDirection),
			container.NewGridWithColumns(2, widget.NewLabel("Height:"), height),
		)),
		container.NewGridWithColumns(2, widget.NewLabel("Profile:"), profile),
		extension,
		widget.NewAccordion(
			widget.NewAccordionItem("Gains", gains),
			widget.NewAccordionItem("Logs", logScroll),
		),
	)

	ui.mtx.Lock()
	ui.ready = true
	ui.mtx.Unlock()

	window.SetContent(contentContainer)
	window.Resize(fyne.NewSize(400, 300))
	window.SetOnClosed(ui.app.Quit)
	window.Show()

	return window
}
