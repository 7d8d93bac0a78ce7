package providers

import (
	"errors"
	"fmt"
	"time"
	"tokend/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (c *CnfValidator) Validate() error {
	v := validate.Struct(c.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.Error())
	}

	if _, err := time.LoadLocation(c.conf.Engine.Timezone); err != nil {
		return fmt.Errorf("invalid config: engine.timezone: %w", err)
	}
	if c.conf.Remote.Enabled && c.conf.Remote.Path == "" {
		return errors.New("invalid config: remote.path is required when remote is enabled")
	}
	if c.conf.Notifications.Sink == "webhook" && c.conf.Notifications.WebhookUrl == "" {
		return errors.New("invalid config: notifications.webhookUrl is required for webhook sink")
	}
	return nil
}
