// Package clipboard copies rendered documents to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

// ErrClipboardUnavailable reports that no clipboard utility is installed.
var ErrClipboardUnavailable = errors.New("system clipboard unavailable")

const errorCopyFormat = "copy %d bytes to clipboard: %w"

// Copier copies textual data to the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service implements Copier using github.com/atotto/clipboard.
type Service struct {
	unsupported bool
	writeAll    func(text string) error
}

// NewService constructs a Service bound to the system clipboard.
func NewService() *Service {
	return &Service{unsupported: clipboard.Unsupported, writeAll: clipboard.WriteAll}
}

// Copy writes text to the system clipboard.
func (service *Service) Copy(text string) error {
	if service.unsupported {
		return ErrClipboardUnavailable
	}
	if writeError := service.writeAll(text); writeError != nil {
		return fmt.Errorf(errorCopyFormat, len(text), writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
