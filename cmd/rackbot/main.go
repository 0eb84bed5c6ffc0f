package main

import (
	"context"
	"flag"
	"io"
	"os"

	"github.com/calvinmclean/rackbot/controller"
	"github.com/calvinmclean/rackbot/ui"
)

func main() {
	var sessionName, probesInput, profile string
	flag.StringVar(&sessionName, "session", "", "Session name for TWChart")
	flag.StringVar(&probesInput, "probes", "", "Set encoder channel names in format \"1=Name,2=Name,...\". Default is 1=Arm,2=Wrist")
	flag.StringVar(&profile, "profile", "", "Profile sent to the device on connect: Baseline, Tuned, or Alternate")
	flag.Parse()

	cfg, err := controller.ConfigFromEnv()
	if err != nil {
		panic(err)
	}
	if sessionName != "" {
		cfg.SessionName = sessionName
	}
	if probesInput != "" {
		cfg.ProbesInput = probesInput
	}
	if profile != "" {
		cfg.Profile = profile
	}

	if os.Getenv("ENABLE_UI") == "true" {
		runUI(cfg)
		return
	}

	runCLI(cfg)
}

func runUI(cfg controller.Config) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r, w := io.Pipe()

	// read from Stdin also
	go func() {
		defer w.Close()
		io.Copy(w, os.Stdin)
	}()

	rackbotUI := ui.NewRackbotUI()

	start := func() error {
		c, err := controller.New(cfg)
		if err != nil {
			return err
		}

		go func() {
			defer c.Close()
			err := c.Run(ctx, r, io.MultiWriter(os.Stdout, rackbotUI))
			if err != nil {
				panic(err)
			}
		}()
		return nil
	}

	rackbotUI.Run(ctx, &cfg, w, start)
	cancel()
}

func runCLI(cfg controller.Config) {
	c, err := controller.New(cfg)
	if err != nil {
		panic(err)
	}
	defer c.Close()

	err = c.Run(context.Background(), os.Stdin, os.Stdout)
	if err != nil {
		panic(err)
	}
}
