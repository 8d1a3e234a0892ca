package state

import (
	"fmt"
	"net"
	"regexp"
)

var namePattern, _ = regexp.Compile("^[0-9A-Za-z._-]+$")

func NameValidator(s string) error {
	if !namePattern.MatchString(s) {
		return fmt.Errorf("%s is not a valid name, must match pattern %s", s, namePattern.String())
	}
	if len(s) > 100 {
		return fmt.Errorf("len(\"%s\") = %d > 100 is too long", s, len(s))
	}
	return nil
}

func BindValidator(s string) error {
	_, _, err := net.SplitHostPort(s)
	return err
}

func HubConfigValidator(cfg *HubCfg) error {
	if err := NameValidator(cfg.Id); err != nil {
		return err
	}
	if err := BindValidator(cfg.Listen); err != nil {
		return fmt.Errorf("hub.Listen is invalid: %w", err)
	}
	if cfg.QueueReapTTL != nil && *cfg.QueueReapTTL < 0 {
		return fmt.Errorf("hub.QueueReapTTL must not be negative")
	}
	for _, w := range cfg.Watch {
		if len(w.Command) == 0 {
			return fmt.Errorf("watch entry %q has no command", w.Name)
		}
		if w.Name == "" {
			return fmt.Errorf("watch entry running %q has no name", w.Command[0])
		}
	}
	return nil
}
