package jobconfig

import (
	"errors"
	"fmt"

	"github.com/2sn/starfit-server/internal/common"

	"github.com/hashicorp/go-multierror"
)

// User-facing messages. They are shown verbatim on the configerror page.
const (
	msgNoDatabase    = "Require at least one database selection."
	msgBadAlgorithm  = "Bad choice of algorithm='%s'"
	msgGroupParse    = "Group: Error translating string to nested list of integers: %s."
	msgGroupSize     = "Group sizes must be less than 10."
	msgGroupUnique   = "Require unique group entries."
	msgGroupPositive = "Require positive group entries."
	msgGroupRange    = "Require group entries in range."
	msgSizesParse    = "Sizes: Error translating string to list of integers: %s"
	msgSizesPositive = "Require positive solution sizes."
	msgPinParse      = "Pin: Error translating string to list of integers: %s"
	msgStarData      = "There is something wrong with this stellar data."
	msgGeneSize      = "Gene sizes greater than 10 are not supported."
	msgPopSize       = "Population sizes over 1000 are not supported."
	msgMailTimeLimit = "Results must be emailed for time limit > 60s."
	msgInvalidEmail  = "%s is not a valid email."
	msgUnknownDB     = "Unknown database: %s."
	msgUnsubscribed  = "%s has unsubscribed from StarFit emails."
)

// ConfigurationError carries every rule violation found for one submission.
// errors.Is matches common.ErrConfiguration, and common.ErrData when a data
// collaborator rejected the input.
type ConfigurationError struct {
	Messages []string
	causes   []error
}

func (e *ConfigurationError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0]
	}
	return fmt.Sprintf("%d configuration errors: %v", len(e.Messages), e.Messages)
}

func (e *ConfigurationError) Unwrap() []error {
	return append([]error{common.ErrConfiguration}, e.causes...)
}

// RuleError is one failed rule, with the collaborator error behind it if any.
type RuleError struct {
	Message string
	Cause   error
}

func (e *RuleError) Error() string { return e.Message }

func (e *RuleError) Unwrap() error { return e.Cause }

// EmailError is returned by an EmailChecker for an unusable address.
type EmailError struct {
	Address string
	Reason  string
}

func (e *EmailError) Error() string {
	return fmt.Sprintf("email %q rejected: %s", e.Address, e.Reason)
}

func configurationError(format string, args ...interface{}) error {
	return &ConfigurationError{Messages: []string{fmt.Sprintf(format, args...)}}
}

// Unsubscribed is the configuration error for an address on the suppression list.
func Unsubscribed(address string) error {
	return configurationError(msgUnsubscribed, address)
}

func fromMultierror(merr *multierror.Error) error {
	if merr.ErrorOrNil() == nil {
		return nil
	}
	cfgErr := &ConfigurationError{}
	for _, err := range merr.Errors {
		cfgErr.Messages = append(cfgErr.Messages, err.Error())
		var rule *RuleError
		if errors.As(err, &rule) && rule.Cause != nil {
			cfgErr.causes = append(cfgErr.causes, rule.Cause)
		}
	}
	return cfgErr
}

// Messages returns the user-facing messages of a configuration error, or nil if
// err is not one.
func Messages(err error) []string {
	var cfgErr *ConfigurationError
	if errors.As(err, &cfgErr) {
		return cfgErr.Messages
	}
	return nil
}
