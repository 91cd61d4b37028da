package wizard

import (
	"errors"
	"testing"
)

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
		err  error
	}{
		{in: "2065550100", want: "+12065550100"},
		{in: "(206) 555-0100", want: "+12065550100"},
		{in: "206.555.0100", want: "+12065550100"},
		{in: "01712345678", want: "+8801712345678"},
		{in: "017 1234 5678", want: "+8801712345678"},
		{in: "", err: ErrPhoneRequired},
		{in: " - ", err: ErrPhoneRequired},
		{in: "12345", err: ErrPhoneInvalid},
		{in: "+12065550100", err: ErrPhoneInvalid},
		{in: "206555010a", err: ErrPhoneInvalid},
		{in: "123456789012", err: ErrPhoneInvalid},
	}
	for _, tc := range cases {
		got, err := NormalizePhone(tc.in)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("%q: expected %v, got %v", tc.in, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q: expected %q, got %q (%v)", tc.in, tc.want, got, err)
		}
	}
}
