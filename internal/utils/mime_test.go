package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/temirov/txdir/internal/utils"
)

func TestDetectMimeType(t *testing.T) {
	testCases := []struct {
		name     string
		data     []byte
		expected string
	}{
		{name: "plain text", data: []byte("plain text"), expected: "text/plain; charset=utf-8"},
		{name: "png header", data: []byte("\x89PNG\r\n\x1a\n0000"), expected: "image/png"},
		{name: "empty", data: nil, expected: utils.UnknownMimeType},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.expected, utils.DetectMimeType(testCase.data))
		})
	}
}
