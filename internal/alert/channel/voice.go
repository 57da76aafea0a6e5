package channel

import (
	"context"
	"os/exec"

	"github.com/manvi18ux/assistive-har-system/internal/errors"
)

// CommandSpeaker announces messages by running an external speech
// synthesis command (espeak, say, spd-say) with the message as the
// final argument.
type CommandSpeaker struct {
	command string
	args    []string
}

func NewCommandSpeaker(command string, args ...string) (*CommandSpeaker, error) {
	if command == "" {
		return nil, errors.New().New(ErrEmptyCommand)
	}
	return &CommandSpeaker{command: command, args: args}, nil
}

func (s *CommandSpeaker) Speak(ctx context.Context, message string) error {
	argv := append(append([]string(nil), s.args...), message)
	cmd := exec.CommandContext(ctx, s.command, argv...)
	if err := cmd.Run(); err != nil {
		return errors.New().Wrap(ErrCommandFailed, err)
	}
	return nil
}
