package cycle

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/anstrom/nmapcycle/internal/errors"
)

// State is the scheduler's run state.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopRequested
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopRequested:
		return "stopping"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Request describes one scan cycle. Modes run in the given order.
type Request struct {
	Target   string        `validate:"required"`
	Modes    []string      `validate:"required,min=1,unique,dive,required"`
	Interval time.Duration `validate:"gte=0"`
}

// clone returns a copy that shares no memory with r, with the target trimmed.
func (r Request) clone() Request {
	return Request{
		Target:   strings.TrimSpace(r.Target),
		Modes:    append([]string(nil), r.Modes...),
		Interval: r.Interval,
	}
}

var validate = validator.New()

// Validate checks the request and returns a VALIDATION error describing the
// first problem found.
func (r Request) Validate() error {
	err := validate.Struct(r.clone())
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !stderrors.As(err, &verrs) || len(verrs) == 0 {
		return errors.ErrInvalidRequest(err.Error())
	}
	return errors.ErrInvalidRequest(describeFieldError(verrs[0]))
}

func describeFieldError(fe validator.FieldError) string {
	switch {
	case fe.StructField() == "Target":
		return "target is required"
	case fe.StructField() == "Modes" && fe.Tag() == "unique":
		return "modes must be distinct"
	case fe.StructField() == "Modes":
		return "select at least one mode"
	case strings.HasPrefix(fe.StructField(), "Modes["):
		return "mode must not be empty"
	case fe.StructField() == "Interval":
		return "interval must not be negative"
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}
