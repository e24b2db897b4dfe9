package configuration

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/labstack/gommon/bytes"
	"github.com/markusressel/epfa/internal/ui"
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	err := validateAdjustment(config)
	if err != nil {
		return err
	}
	err = validateBackup(config)
	if err != nil {
		return err
	}
	err = validateHistory(config)
	if err != nil {
		return err
	}
	err = validateApi(config)
	return err
}

func validateAdjustment(config *Configuration) error {
	if math.IsNaN(config.Speed.Float()) || math.IsInf(config.Speed.Float(), 0) {
		return errors.New("speed: must be a finite number")
	}
	if config.Speed < 0 || config.Speed > 100 {
		// out of range values are clamped, see util.PercentToPwm
		ui.Warning("speed %v%% is outside of [0..100] and will be clamped", config.Speed.Float())
	}

	if config.StartLayer < 1 {
		return fmt.Errorf("startLayer: invalid value %d, must be >= 1", config.StartLayer)
	}

	return validateTag(config.Tag)
}

func validateTag(tag string) error {
	if len(tag) <= 0 {
		return errors.New("tag: must not be empty")
	}
	for _, r := range tag {
		if unicode.IsSpace(r) || r == ':' || r == ';' {
			return fmt.Errorf("tag: '%s' must not contain whitespace, ':' or ';'", tag)
		}
	}
	return nil
}

func validateBackup(config *Configuration) error {
	if !config.Backup.Enabled {
		return nil
	}
	suffix := config.Backup.Suffix
	if len(suffix) <= 0 {
		return errors.New("backup: suffix must not be empty")
	}
	if strings.ContainsRune(suffix, '/') {
		return fmt.Errorf("backup: suffix '%s' must not contain a path separator", suffix)
	}
	return nil
}

func validateHistory(config *Configuration) error {
	if config.History.Enabled && len(config.History.DbPath) <= 0 {
		return errors.New("history: dbPath must not be empty")
	}
	return nil
}

func validateApi(config *Configuration) error {
	if config.Api.Port <= 0 || config.Api.Port > 65535 {
		return fmt.Errorf("api: invalid port %d", config.Api.Port)
	}
	if len(config.Api.MaxBodySize) > 0 {
		if _, err := bytes.Parse(config.Api.MaxBodySize); err != nil {
			return fmt.Errorf("api: invalid maxBodySize '%s': %v", config.Api.MaxBodySize, err)
		}
	}
	return nil
}
