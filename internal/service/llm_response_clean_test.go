package service

import "testing"

func TestCleanLLMTextResponse(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "   ", want: ""},
		{name: "plain", in: "  Sunny in Rome.  ", want: "Sunny in Rome."},
		{name: "fenced", in: "```text\nSunny in Rome.\n```", want: "Sunny in Rome."},
		{name: "double quoted", in: `"Sunny in Rome."`, want: "Sunny in Rome."},
		{name: "curly quoted", in: "“Sunny in Rome.”", want: "Sunny in Rome."},
		{name: "inner quotes kept", in: `"Rome says "sunny" today"`, want: `"Rome says "sunny" today"`},
		{name: "bom", in: "\uFEFFSunny", want: "Sunny"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := cleanLLMTextResponse(tc.in); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
