package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/settingsbus/settings"
)

func executeCommand(args ...string) (string, error) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		raw     []string
		want    []assignment
		wantErr bool
	}{
		{
			name: "single",
			raw:  []string{"audio.volume=40"},
			want: []assignment{{setting: settings.SettingAudioVolume, value: "40"}},
		},
		{
			name: "value keeps equals",
			raw:  []string{"intl.locale=a=b"},
			want: []assignment{{setting: settings.SettingLocale, value: "a=b"}},
		},
		{
			name: "empty value",
			raw:  []string{"audio.volume="},
			want: []assignment{{setting: settings.SettingAudioVolume, value: ""}},
		},
		{name: "missing equals", raw: []string{"audio.volume"}, wantErr: true},
		{name: "missing name", raw: []string{"=4"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAssignments() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseAssignments() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("parseAssignments()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestScenarioCommand(t *testing.T) {
	out, err := executeCommand("scenario")
	if err != nil {
		t.Fatalf("scenario error = %v", err)
	}

	want := strings.Join([]string{
		`2 received message("Foo")`,
		`1 observed status(received)`,
		`1 observed message("Bar")`,
		`2 closed`,
		`1 observed status(undeliverable)`,
	}, "\n") + "\n"

	if out != want {
		t.Errorf("scenario output =\n%s\nwant\n%s", out, want)
	}
}

func TestRunCommand(t *testing.T) {
	out, err := executeCommand("run",
		"--deny", "intl.locale",
		"--set", "audio.volume=40",
		"--set", "display.brightness=300",
		"--set", "intl.locale=fr-FR",
		"--get", "audio.volume",
		"--get", "intl.locale",
		"--dump",
	)
	if err != nil {
		t.Fatalf("run error = %v", err)
	}

	for _, line := range []string{
		"set audio.volume=40: ok",
		"300 is outside [0, 100]",
		"intl.locale: denied by policy",
		"audio.volume = 40",
		"intl.locale = en-US",
		"settings:",
		"hub.envelope.replied:",
		"handler:audio.volume",
	} {
		if !strings.Contains(out, line) {
			t.Errorf("run output missing %q\n%s", line, out)
		}
	}
}
