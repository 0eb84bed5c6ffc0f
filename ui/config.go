package ui

import (
	"errors"
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/data/binding"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/calvinmclean/rackbot/controller"
)

type ConfigWindow struct {
	app      fyne.App
	OnSubmit func()
}

func NewConfigWindow(app fyne.App) *ConfigWindow {
	return &ConfigWindow{
		app: app,
	}
}

func (cw *ConfigWindow) loadConfigFromPreferences(cfg *controller.Config) {
	prefs := cw.app.Preferences()
	cfg.SerialPort = prefs.StringWithFallback("serialPort", cfg.SerialPort)
	cfg.BaudRate = prefs.StringWithFallback("baudRate", cfg.BaudRate)
	cfg.TWChartAddr = prefs.StringWithFallback("twchartAddr", cfg.TWChartAddr)
	cfg.SessionName = prefs.StringWithFallback("sessionName", cfg.SessionName)
	cfg.ProbesInput = prefs.StringWithFallback("probesInput", cfg.ProbesInput)
	cfg.CyclePeriod = prefs.StringWithFallback("cyclePeriod", cfg.CyclePeriod)
	cfg.Profile = prefs.StringWithFallback("profile", cfg.Profile)
}

func (cw *ConfigWindow) saveConfigToPreferences(cfg *controller.Config) {
	prefs := cw.app.Preferences()
	prefs.SetString("serialPort", cfg.SerialPort)
	prefs.SetString("baudRate", cfg.BaudRate)
	prefs.SetString("twchartAddr", cfg.TWChartAddr)
	prefs.SetString("sessionName", cfg.SessionName)
	prefs.SetString("probesInput", cfg.ProbesInput)
	prefs.SetString("cyclePeriod", cfg.CyclePeriod)
	prefs.SetString("profile", cfg.Profile)
}

func (cw *ConfigWindow) Show(cfg *controller.Config) {
	window := cw.app.NewWindow("Rackbot - Configuration")
	window.Resize(fyne.NewSize(400, 250))
	window.SetCloseIntercept(func() {
		// Treat window close as cancel
		window.Close()
		cw.app.Quit()
	})
	window.Show()

	// Preferences override the environment so the last submitted values are kept
	cw.loadConfigFromPreferences(cfg)

	serialPorts, err := controller.GetSerialPorts()
	if err != nil && !errors.Is(err, controller.ErrNoUSBSerial) {
		showError(cw.app, window, fmt.Errorf("error getting serial ports: %w", err))
		return
	}

	serialPorts = append(serialPorts, controller.SerialPortNone)

	serialEntry := widget.NewSelect(serialPorts, nil)
	if cfg.SerialPort == "" {
		cfg.SerialPort = serialPorts[0]
	}
	serialEntry.Bind(binding.BindString(&cfg.SerialPort))

	sessionEntry := widget.NewEntry()
	sessionEntry.Bind(binding.BindString(&cfg.SessionName))

	probesEntry := widget.NewEntry()
	probesEntry.Bind(binding.BindString(&cfg.ProbesInput))

	baudRateEntry := widget.NewEntry()
	baudRateEntry.Bind(binding.BindString(&cfg.BaudRate))

	twchartAddrEntry := widget.NewEntry()
	twchartAddrEntry.SetPlaceHolder("optional")
	twchartAddrEntry.Bind(binding.BindString(&cfg.TWChartAddr))

	cyclePeriodEntry := widget.NewEntry()
	cyclePeriodEntry.SetPlaceHolder("20ms")
	cyclePeriodEntry.Bind(binding.BindString(&cfg.CyclePeriod))

	profileEntry := widget.NewSelect(profileOptions, nil)
	profileEntry.Bind(binding.BindString(&cfg.Profile))

	submitButton := widget.NewButton("Submit", func() {
		cw.saveConfigToPreferences(cfg)
		cw.OnSubmit()
		window.Close()
	})
	submitButton.Disable()

	validateForm := func() {
		allFieldsValid := cfg.SerialPort != "" &&
			cfg.SessionName != "" &&
			cfg.ProbesInput != "" &&
			cfg.BaudRate != ""

		if allFieldsValid {
			submitButton.Enable()
		} else {
			submitButton.Disable()
		}
	}

	// Add listeners to field changes
	serialEntry.OnChanged = func(_ string) { validateForm() }
	sessionEntry.OnChanged = func(_ string) { validateForm() }
	probesEntry.OnChanged = func(_ string) { validateForm() }
	baudRateEntry.OnChanged = func(_ string) { validateForm() }
	twchartAddrEntry.OnChanged = func(_ string) { validateForm() }
	cyclePeriodEntry.OnChanged = func(_ string) { validateForm() }

	// Initial validation
	validateForm()

	form := container.NewVBox(
		widget.NewCard("Configuration", "", container.NewVBox(
			container.NewGridWithColumns(2,
				widget.NewLabel("Serial Port:"),
				serialEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Baud Rate:"),
				baudRateEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("TWChart Address:"),
				twchartAddrEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Session Name:"),
				sessionEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Probes Input:"),
				probesEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Cycle Period:"),
				cyclePeriodEntry,
			),
			container.NewGridWithColumns(2,
				widget.NewLabel("Profile:"),
				profileEntry,
			),
		)),
		container.NewHBox(
			widget.NewButton("Cancel", func() {
				window.Close()
				cw.app.Quit()
			}),
			submitButton,
		),
	)

	window.SetContent(form)
}

func showError(app fyne.App, window fyne.Window, err error) {
	d := dialog.NewError(err, window)
	d.SetOnClosed(func() {
		app.Quit()
	})
	d.Show()
}
