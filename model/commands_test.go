package model

import (
	"strings"
	"testing"
)

func TestCheckCmdNames(t *testing.T) {
	lines := []string{
		"#title: test model",
		"#domain: 0.1 0.1 0.1",
		"#dx_dy_dz: 0.001 0.001 0.001",
		"#time_window: 3e-9",
		"#waveform: ricker 1 1e9 pulse",
		"#hertzian_dipole: z 0.05 0.05 0.05 pulse",
		"#box: 0.01 0.01 0.01 0.04 0.04 0.04 free_space",
	}

	single, multi, geometry, err := CheckCmdNames(lines)
	if err != nil {
		t.Fatalf("CheckCmdNames error: %s", err)
	}

	if _, ok := single["title"]; !ok {
		t.Error("missing single command title")
	}
	if len(multi) != 2 {
		t.Errorf("got %d multi commands, want 2", len(multi))
	}
	if len(geometry) != 1 || geometry[0].Name != "box" {
		t.Errorf("unexpected geometry commands: %v", geometry)
	}
}

func TestCheckCmdNamesDuplicateSingle(t *testing.T) {
	lines := []string{
		"#domain: 0.1 0.1 0.1",
		"#dx_dy_dz: 0.001 0.001 0.001",
		"#time_window: 3e-9",
		"#title: one",
		"#title: two",
	}

	_, _, _, err := CheckCmdNames(lines)
	if err == nil || !strings.Contains(err.Error(), "once") {
		t.Errorf("expected duplicate error, got %v", err)
	}
}

func TestCheckCmdNamesUnknown(t *testing.T) {
	lines := []string{
		"#domain: 0.1 0.1 0.1",
		"#dx_dy_dz: 0.001 0.001 0.001",
		"#time_window: 3e-9",
		"#teleport: 1 2 3",
	}

	_, _, _, err := CheckCmdNames(lines)
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("expected unknown command error, got %v", err)
	}
}

func TestCheckCmdNamesEssentialMissing(t *testing.T) {
	lines := []string{
		"#domain: 0.1 0.1 0.1",
		"#dx_dy_dz: 0.001 0.001 0.001",
	}

	_, _, _, err := CheckCmdNames(lines)
	if err == nil || !strings.Contains(err.Error(), "time_window") {
		t.Errorf("expected missing essential error, got %v", err)
	}
}

func TestParseLine(t *testing.T) {
	cmd, err := parseLine("#waveform: ricker 1 1e9 pulse")
	if err != nil {
		t.Fatalf("parseLine error: %s", err)
	}
	if cmd.Name != "waveform" {
		t.Errorf("name = %q, want waveform", cmd.Name)
	}
	if got := cmd.Fields(); len(got) != 4 || got[0] != "ricker" {
		t.Errorf("fields = %v", got)
	}

	if _, err := parseLine("#no_colon_here"); err == nil {
		t.Error("expected error for command without colon")
	}
	if _, err := parseLine("plain text"); err == nil {
		t.Error("expected error for non-command line")
	}
}
