package featureflags

import "testing"

func TestDefaults(t *testing.T) {
	if !Enabled("booking_sweeper") {
		t.Error("booking_sweeper should default on")
	}
	if Enabled("does_not_exist") {
		t.Error("unknown flags should default off")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("FLAG_BOOKING_SWEEPER", "false")
	if Enabled("booking_sweeper") {
		t.Error("env should override the default")
	}

	t.Setenv("FLAG_EXPERIMENTAL_THING", "yes")
	if !Enabled("experimental_thing") {
		t.Error("env should enable unknown flags")
	}

	t.Setenv("FLAG_EXPERIMENTAL_THING", "nonsense")
	if Enabled("experimental_thing") {
		t.Error("unrecognized values should read as off")
	}
}
