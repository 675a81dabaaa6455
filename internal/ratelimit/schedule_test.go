package ratelimit

import "testing"

func TestParseSchedule(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Schedule
	}{
		{"start only", "1000", Schedule{Start: 1000, Interval: DefaultInterval}},
		{"all fields", "1000:100:5000:2", Schedule{Start: 1000, Step: 100, Max: 5000, Interval: 2}},
		{"three fields", "10:5:50", Schedule{Start: 10, Step: 5, Max: 50, Interval: DefaultInterval}},
		{"lenient separators", "10/5 50x3", Schedule{Start: 10, Step: 5, Max: 50, Interval: 3}},
		{"empty fields", "::100", Schedule{Max: 100, Interval: DefaultInterval}},
		{"empty interval keeps default", "1:2:3:", Schedule{Start: 1, Step: 2, Max: 3, Interval: DefaultInterval}},
		{"zero start", "0:10:100:1", Schedule{Step: 10, Max: 100, Interval: 1}},
		{"empty string", "", Schedule{Interval: DefaultInterval}},
		{"trailing delimiter after four fields", "1:2:3:4:", Schedule{Start: 1, Step: 2, Max: 3, Interval: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSchedule(tt.in)
			if err != nil {
				t.Fatalf("ParseSchedule(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseSchedule(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSchedule_TooManyFields(t *testing.T) {
	if _, err := ParseSchedule("1:2:3:4:5"); err == nil {
		t.Error("five fields should be rejected")
	}
}

func TestParseSchedule_Overflow(t *testing.T) {
	if _, err := ParseSchedule("99999999999999999999999"); err == nil {
		t.Error("overflowing field should be rejected")
	}
}

func TestSchedule_String(t *testing.T) {
	s := Schedule{Start: 1, Step: 2, Max: 3, Interval: 4}
	if got := s.String(); got != "1:2:3:4" {
		t.Errorf("String() = %q, want %q", got, "1:2:3:4")
	}

	back, err := ParseSchedule(s.String())
	if err != nil {
		t.Fatal(err)
	}
	if back != s {
		t.Errorf("ParseSchedule(String()) = %+v, want %+v", back, s)
	}
}
