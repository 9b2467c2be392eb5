package download

import (
	"errors"
	"fmt"
)

var (
	// ErrTransport covers request failures and non-success responses.
	ErrTransport = errors.New("icon transport failed")
	// ErrDecode is returned when the response body is not a decodable image.
	ErrDecode = errors.New("icon decode failed")
	// ErrCancelled marks a fetch aborted by Task.Cancel.
	ErrCancelled = errors.New("icon fetch cancelled")
	// ErrInsecureTransport is a transport error raised when the image URL
	// violates the transport policy.
	ErrInsecureTransport = fmt.Errorf("%w: insecure transport", ErrTransport)
)
