package utils

import (
	"net/http"
)

// UnknownMimeType is returned when no content is available to sniff.
const UnknownMimeType = "application/octet-stream"

// sniffLength is the number of leading bytes http.DetectContentType considers.
const sniffLength = 512

// DetectMimeType returns the MIME type suggested by the leading bytes of data.
func DetectMimeType(data []byte) string {
	if len(data) == 0 {
		return UnknownMimeType
	}
	if len(data) > sniffLength {
		data = data[:sniffLength]
	}
	return http.DetectContentType(data)
}
