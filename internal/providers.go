package internal

import (
	"fmt"

	"github.com/dushixiang/tally/pkg/nostd"
	"github.com/go-playground/validator/v10"
)

// provideValidator provides the shared parameter validator
func provideValidator() (*nostd.CustomValidator, error) {
	customValidator := &nostd.CustomValidator{Validator: validator.New()}
	if err := customValidator.TransInit(); err != nil {
		return nil, fmt.Errorf("failed to init custom validator: %w", err)
	}
	return customValidator, nil
}
