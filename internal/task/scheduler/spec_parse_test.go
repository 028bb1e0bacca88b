package scheduler

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseCadenceVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want Cadence
	}{
		{name: "hours", raw: "8h", want: Every(UnitHours, 8)},
		{name: "hours upper", raw: "8H", want: Every(UnitHours, 8)},
		{name: "minutes", raw: "30m", want: Every(UnitMinutes, 30)},
		{name: "minutes upper", raw: "30M", want: Every(UnitMinutes, 30)},
		{name: "padded", raw: "  12 h ", want: Every(UnitHours, 12)},
		{name: "single time", raw: "09:00", want: DailyAt(TimeOfDay{9, 0})},
		{
			name: "time list",
			raw:  "09:00,15:00,21:00",
			want: DailyAt(TimeOfDay{9, 0}, TimeOfDay{15, 0}, TimeOfDay{21, 0}),
		},
		{
			name: "list keeps order",
			raw:  "21:00, 09:30",
			want: DailyAt(TimeOfDay{21, 0}, TimeOfDay{9, 30}),
		},
		{
			name: "duplicates dropped",
			raw:  "09:00,15:00,09:00",
			want: DailyAt(TimeOfDay{9, 0}, TimeOfDay{15, 0}),
		},
		{name: "midnight", raw: "00:00", want: DailyAt(TimeOfDay{0, 0})},
		{name: "last minute", raw: "23:59", want: DailyAt(TimeOfDay{23, 59})},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCadence(tt.raw)
			if err != nil {
				t.Fatalf("ParseCadence(%q) error: %v", tt.raw, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ParseCadence(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseCadenceInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{
		"",
		"   ",
		"garbage",
		"notanumber h",
		"h",
		"1.5h",
		"0h",
		"-2m",
		"8d",
		"24:00",
		"09:60",
		"9:5",
		"9:05",
		"2562048h",
		"153722868m",
		"9999999999h",
		"09:00,",
		"09:00,nope",
		"09:00:30",
	} {
		raw := raw
		t.Run(raw, func(t *testing.T) {
			_, err := ParseCadence(raw)
			if err == nil {
				t.Fatalf("ParseCadence(%q): expected error", raw)
			}
			if !errors.Is(err, ErrInvalidCadence) {
				t.Fatalf("ParseCadence(%q) error %v does not match ErrInvalidCadence", raw, err)
			}
			var ce *CadenceError
			if !errors.As(err, &ce) {
				t.Fatalf("ParseCadence(%q) error is %T, want *CadenceError", raw, err)
			}
			if ce.Spec != raw {
				t.Fatalf("CadenceError.Spec = %q, want %q", ce.Spec, raw)
			}
		})
	}
}

func TestCadenceErrorListsSupportedFormats(t *testing.T) {
	t.Parallel()
	_, err := ParseCadence("garbage")
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	for _, f := range SupportedFormats {
		if !strings.Contains(msg, "'"+f+"'") {
			t.Fatalf("error %q does not mention %q", msg, f)
		}
	}
}

func TestCadenceStringRoundTrip(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"8h", "30m", "09:00", "09:00,15:00,21:00"} {
		c, err := ParseCadence(raw)
		if err != nil {
			t.Fatalf("ParseCadence(%q) error: %v", raw, err)
		}
		if c.String() != raw {
			t.Fatalf("String() = %q, want %q", c.String(), raw)
		}
	}
}

func TestCadenceDuration(t *testing.T) {
	t.Parallel()
	if d := Every(UnitHours, 8).Duration(); d != 8*time.Hour {
		t.Fatalf("Duration = %v, want 8h", d)
	}
	if d := Every(UnitMinutes, 30).Duration(); d != 30*time.Minute {
		t.Fatalf("Duration = %v, want 30m", d)
	}
	if d := DailyAt(TimeOfDay{9, 0}).Duration(); d != 0 {
		t.Fatalf("Duration = %v, want 0 for daily", d)
	}
	if DefaultCadence.String() != DefaultSpec {
		t.Fatalf("DefaultCadence = %q, want %q", DefaultCadence.String(), DefaultSpec)
	}
}
