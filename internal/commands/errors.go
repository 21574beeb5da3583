package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors raised by the handler itself. Errors already categorised by
// the engine pass through unchanged.
const (
	TextCodeInvalidCommand = "ONBOARDING_COMMAND_INVALID"
	TextCodeCanceled       = "ONBOARDING_COMMAND_CANCELED"
	TextCodeTimedOut       = "ONBOARDING_COMMAND_TIMED_OUT"
	TextCodeFailed         = "ONBOARDING_COMMAND_FAILED"
)

func tag(err error, category goerrors.Category, message, code string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, category, message).WithTextCode(code)
}

func invalidCommand(err error) error {
	return tag(err, goerrors.CategoryValidation, "onboarding command rejected", TextCodeInvalidCommand)
}

func interrupted(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return tag(err, goerrors.CategoryCommand, "onboarding command timed out", TextCodeTimedOut)
	}
	return tag(err, goerrors.CategoryCommand, "onboarding command canceled", TextCodeCanceled)
}

func failed(err error) error {
	return tag(err, goerrors.CategoryCommand, "onboarding command failed", TextCodeFailed)
}
