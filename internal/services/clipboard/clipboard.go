// Package clipboard copies rendered trees to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const copyErrorFormat = "write %d bytes to clipboard: %w"

// ErrUnsupported reports a platform without a usable clipboard utility.
var ErrUnsupported = errors.New("no clipboard utility available")

// Copier copies text to a clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier with github.com/atotto/clipboard.
type Service struct {
	writeAll    func(text string) error
	unsupported bool
}

// NewService returns a Service bound to the system clipboard.
func NewService() *Service {
	return &Service{writeAll: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Copy writes text to the clipboard.
func (service *Service) Copy(text string) error {
	if service.unsupported {
		return ErrUnsupported
	}
	if writeError := service.writeAll(text); writeError != nil {
		return fmt.Errorf(copyErrorFormat, len(text), writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
