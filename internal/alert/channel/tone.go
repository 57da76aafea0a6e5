package channel

import (
	"context"
	"os/exec"
	"strconv"

	"github.com/manvi18ux/assistive-har-system/internal/alert"
	"github.com/manvi18ux/assistive-har-system/internal/errors"
)

// CommandBeeper plays tone patterns through the Linux beep utility,
// chaining pulses with its -n flag.
type CommandBeeper struct {
	command string
}

func NewCommandBeeper(command string) (*CommandBeeper, error) {
	if command == "" {
		return nil, errors.New().New(ErrEmptyCommand)
	}
	return &CommandBeeper{command: command}, nil
}

func (b *CommandBeeper) Play(ctx context.Context, pattern alert.TonePattern) error {
	if len(pattern.Pulses) == 0 {
		return nil
	}

	var argv []string
	for i, pulse := range pattern.Pulses {
		if i > 0 {
			argv = append(argv, "-n")
		}
		argv = append(argv,
			"-f", strconv.Itoa(pulse.FrequencyHz),
			"-l", strconv.FormatInt(pulse.Duration.Milliseconds(), 10),
		)
		if pulse.Pause > 0 {
			argv = append(argv, "-D", strconv.FormatInt(pulse.Pause.Milliseconds(), 10))
		}
	}

	cmd := exec.CommandContext(ctx, b.command, argv...)
	if err := cmd.Run(); err != nil {
		return errors.New().Wrap(ErrCommandFailed, err)
	}

	return nil
}
