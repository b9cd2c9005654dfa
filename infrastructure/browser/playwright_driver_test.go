package browser

import (
	"errors"
	"fmt"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
)

func TestNotAnInput(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "plain element", err: errors.New("Error: Node is not an <input>, <textarea> or <select> element"), want: true},
		{name: "missing element", err: fmt.Errorf("locator.inputValue: %w", playwright.ErrTimeout), want: false},
		{name: "other failure", err: errors.New("target closed"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notAnInput(tt.err))
		})
	}
}
