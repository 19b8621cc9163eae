package providers

import (
	"errors"
	"fmt"
	"storybank/internal/structures"

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
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if c.conf.Storage.Driver == "sqlite" && c.conf.Storage.DSN == "" {
		return errors.New("invalid config: storage.dsn is required for the sqlite driver")
	}
	if c.conf.Persistence.FilePath != "" && c.conf.Persistence.SaveInterval <= 0 {
		return errors.New("invalid config: persistence.saveInterval must be positive")
	}
	return nil
}
