package jersey

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"jersey-bot/internal/models"
)

var (
	ErrDeadlinePassed     = errors.New("deadline passed")
	ErrAlreadyVoted       = errors.New("already voted")
	ErrAlreadyOrdered     = errors.New("already ordered")
	ErrSessionExpired     = errors.New("session expired")
	ErrDesignNotFound     = errors.New("design not found")
	ErrNotFound           = errors.New("not found")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidFormat      = errors.New("invalid format")
	ErrForbidden          = errors.New("admins only")
	ErrWorkflowInProgress = errors.New("workflow in progress")
)

// Gate is the kind of participation an admission check guards.
type Gate string

const (
	GateVote  Gate = "vote"
	GateOrder Gate = "order"
)

type DeadlineError struct {
	Gate     Gate
	Deadline time.Time
}

func (e *DeadlineError) Error() string {
	return fmt.Sprintf("%s deadline passed at %s", e.Gate, e.Deadline.Format(models.DateLayout))
}

func (e *DeadlineError) Is(target error) bool { return target == ErrDeadlinePassed }

// SessionExpiredError names the command that restarts the lost workflow.
type SessionExpiredError struct {
	Restart string
}

func (e *SessionExpiredError) Error() string {
	return "session expired, restart with " + e.Restart
}

func (e *SessionExpiredError) Is(target error) bool { return target == ErrSessionExpired }

// InputError re-prompts in place; the workflow does not advance.
type InputError struct {
	Prompt  string
	Choices []Choice
}

func (e *InputError) Error() string { return "invalid input: " + e.Prompt }

func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

func reprompt(prompt string, choices ...Choice) error {
	return &InputError{Prompt: prompt, Choices: choices}
}

// WorkflowBusyError reports the workflow that blocks a new one.
type WorkflowBusyError struct {
	Active string
}

func (e *WorkflowBusyError) Error() string { return "workflow in progress: " + e.Active }

func (e *WorkflowBusyError) Is(target error) bool { return target == ErrWorkflowInProgress }

// NotFoundError names the design ID an admin command could not resolve.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("design %d not found", e.ID) }

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
