package errcodes

import (
	"strings"
	"testing"
)

func TestCode_Message(t *testing.T) {
	tests := []struct {
		name string
		code Code
		args []any
		want string
	}{
		{name: "plain", code: PostNotExists, want: "Post does not exist"},
		{name: "templated", code: MaxLength, args: []any{300}, want: "The comment cannot have more than 300 characters"},
		{name: "unknown code", code: Code("SOMETHING_ELSE"), want: "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.code.Message(tt.args...); got != tt.want {
				t.Errorf("want message %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCode_MessagesAreDistinct(t *testing.T) {
	seen := make(map[string]Code)
	for code, msg := range messages {
		if other, ok := seen[msg]; ok {
			t.Errorf("codes %s and %s share message %q", code, other, msg)
		}
		seen[msg] = code
	}
}

func TestCode_TemplatedHaveVerb(t *testing.T) {
	for _, code := range []Code{MaxLength, PostTitleInvalidLength, PostBodyInvalidLength, PasswordInvalidLength} {
		if !strings.Contains(messages[code], "%d") {
			t.Errorf("want %s message to take the limit, got %q", code, messages[code])
		}
	}
}
