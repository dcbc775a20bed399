package convert

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	vidgen "github.com/Crazy-Fox-2/TI-Calc-Video-Generator"
)

// Signer turns a raw application image into one the calculator will accept.
type Signer interface {
	Sign(ctx context.Context, path string) error
}

// DefaultSignArgs makes rabbitsign guess the output type from the input, fix
// the page count and header, and write an 8xk application.
var DefaultSignArgs = []string{"-g", "-v", "-P", "-p"}

// ExternalSigner runs a signing program, such as rabbitsign, with the path of the
// image as its last argument.
type ExternalSigner struct {
	Command string
	Args    []string
}

func (s ExternalSigner) Sign(ctx context.Context, path string) error {
	args := append(append([]string{}, s.Args...), path)
	cmd := exec.CommandContext(ctx, s.Command, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		message := fmt.Sprintf("%s failed", s.Command)
		if trimmed := strings.TrimSpace(string(output)); trimmed != "" {
			message = fmt.Sprintf("%s failed: %s", s.Command, trimmed)
		}
		return vidgen.ErrIOFailed.WithMessage(message).Wrap(err)
	}
	return nil
}
