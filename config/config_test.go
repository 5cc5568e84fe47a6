package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSchedulerWindowDefaults(t *testing.T) {
	var c AppConfig
	c.SchedulerWeekday = -1
	c.SchedulerHour = -1
	applyDefaults(&c)

	if c.SchedulerWeekday != 5 {
		t.Errorf("SchedulerWeekday = %d, want 5", c.SchedulerWeekday)
	}
	if c.SchedulerHour != 14 {
		t.Errorf("SchedulerHour = %d, want 14", c.SchedulerHour)
	}
}

func TestSchedulerWindowZeroFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := []byte(`{"attendance":{"SchedulerWeekday":0,"SchedulerHour":0}}`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	var c AppConfig
	c.SchedulerWeekday = -1
	c.SchedulerHour = -1
	if err := loadJSONConfig(path, &c); err != nil {
		t.Fatal(err)
	}
	applyDefaults(&c)

	// Sunday at midnight is a valid window, not a request for the default
	if c.SchedulerWeekday != 0 {
		t.Errorf("SchedulerWeekday = %d, want 0", c.SchedulerWeekday)
	}
	if c.SchedulerHour != 0 {
		t.Errorf("SchedulerHour = %d, want 0", c.SchedulerHour)
	}
}

func TestSchedulerWindowZeroFromEnv(t *testing.T) {
	t.Setenv("SCHEDULER_WEEKDAY", "0")
	t.Setenv("SCHEDULER_HOUR", "0")

	var c AppConfig
	c.SchedulerWeekday = -1
	c.SchedulerHour = -1
	applyDefaults(&c)
	applyEnvOverrides(&c)

	if c.SchedulerWeekday != 0 || c.SchedulerHour != 0 {
		t.Errorf("window = %d/%d, want 0/0", c.SchedulerWeekday, c.SchedulerHour)
	}
}
