// Package assets converts user-selected image attachments into the
// transport form the generation API accepts, and manages the paired
// attachment/preview sequences a composer holds between submissions.
package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrConversion is wrapped by every attachment conversion failure.
var ErrConversion = errors.New("asset conversion failed")

// Attachment is a locally-selected image resource. Name is used for
// display; MediaType is the declared type and may be empty, in which
// case it is sniffed from the payload during conversion.
type Attachment struct {
	Name      string
	MediaType string
	Data      []byte
}

// TransportAsset is base64-encoded bytes plus a media type, ready for
// API transmission. It is re-derived on every outbound request and
// never cached across sends.
type TransportAsset struct {
	Data      string
	MediaType string
}

// Convert produces the transport form of a single attachment.
// It fails when the attachment carries no payload, or when no image
// media type can be determined from the declaration or the bytes.
func Convert(_ context.Context, att Attachment) (TransportAsset, error) {
	if len(att.Data) == 0 {
		return TransportAsset{}, fmt.Errorf("%w: attachment %q is empty", ErrConversion, att.Name)
	}

	mediaType := strings.TrimSpace(att.MediaType)
	if mediaType == "" {
		mediaType = http.DetectContentType(att.Data)
	}
	if idx := strings.IndexByte(mediaType, ';'); idx >= 0 {
		mediaType = strings.TrimSpace(mediaType[:idx])
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return TransportAsset{}, fmt.Errorf("%w: attachment %q has media type %q, want an image", ErrConversion, att.Name, mediaType)
	}

	return TransportAsset{
		Data:      base64.StdEncoding.EncodeToString(att.Data),
		MediaType: mediaType,
	}, nil
}

// FromBytes wraps already-decoded bytes as a transport asset.
func FromBytes(raw []byte, mediaType string) TransportAsset {
	return TransportAsset{
		Data:      base64.StdEncoding.EncodeToString(raw),
		MediaType: mediaType,
	}
}

// Decode returns the raw bytes of a transport asset.
func (a TransportAsset) Decode() ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(a.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload: %v", ErrConversion, err)
	}
	return raw, nil
}

// Subtype returns the part of the media type after the slash, or "png"
// when the media type is malformed. Used for synthesized filenames.
func (a TransportAsset) Subtype() string {
	if _, sub, ok := strings.Cut(a.MediaType, "/"); ok && sub != "" {
		return sub
	}
	return "png"
}

// DataURL renders the asset as a data: URL for inline display.
func (a TransportAsset) DataURL() string {
	return fmt.Sprintf("data:%s;base64,%s", a.MediaType, a.Data)
}
