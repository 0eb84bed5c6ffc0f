package controller

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver"

	"github.com/calvinmclean/rackbot"
)

var ErrIncompatibleFirmware = errors.New("incompatible firmware")

// firmwareConstraint accepts patch releases of the firmware this host was built with
const firmwareConstraint = "~" + rackbot.Version

func checkFirmwareVersion(version string) error {
	c, err := semver.NewConstraint(firmwareConstraint)
	if err != nil {
		return fmt.Errorf("error parsing constraint: %w", err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("%w: invalid version %q: %w", ErrIncompatibleFirmware, version, err)
	}

	if !c.Check(v) {
		return fmt.Errorf("%w: recieved version %s - require %s", ErrIncompatibleFirmware, v, firmwareConstraint)
	}
	return nil
}
