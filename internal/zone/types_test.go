package zone

import "testing"

func TestActivityValid(t *testing.T) {
	cases := []struct {
		a    Activity
		want bool
	}{
		{ActivityUnknown, false},
		{ActivityReclining, true},
		{ActivitySeated, true},
		{ActivitySedentary, true},
		{ActivityStanding, true},
		{ActivityWalking, true},
		{ActivityCustom, true},
		{Activity(999), false},
		{Activity(-1), false},
	}

	for _, tc := range cases {
		if got := tc.a.Valid(); got != tc.want {
			t.Fatalf("Activity(%d).Valid()=%v want %v", tc.a, got, tc.want)
		}
	}
}

func TestActivityString_Table(t *testing.T) {
	cases := []struct {
		name string
		in   Activity
		want string
	}{
		{"unknown (zero)", ActivityUnknown, "unknown"},
		{"reclining", ActivityReclining, "reclining"},
		{"seated", ActivitySeated, "seated"},
		{"sedentary", ActivitySedentary, "sedentary"},
		{"standing", ActivityStanding, "standing"},
		{"walking", ActivityWalking, "walking"},
		{"custom", ActivityCustom, "custom"},
		{"unknown (out of range)", Activity(999), "unknown"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.in.String(); got != tc.want {
				t.Fatalf("Activity(%d).String()=%q want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestActivityMetabolicRate(t *testing.T) {
	cases := []struct {
		in   Activity
		want float64
	}{
		{ActivityReclining, 0.8},
		{ActivitySeated, 1.0},
		{ActivitySedentary, 1.2},
		{ActivityStanding, 1.6},
		{ActivityWalking, 1.9},
		{ActivityCustom, 0},
		{ActivityUnknown, 0},
	}

	for _, tc := range cases {
		if got := tc.in.MetabolicRate(); got != tc.want {
			t.Fatalf("%v.MetabolicRate()=%v want %v", tc.in, got, tc.want)
		}
	}
}

func TestParseActivity_Table(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		want    Activity
		wantErr bool
	}{
		{"seated", "seated", ActivitySeated, false},
		{"walking", "walking", ActivityWalking, false},
		{"custom", "custom", ActivityCustom, false},
		{"invalid", "running", ActivityUnknown, true},
		{"empty", "", ActivityUnknown, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseActivity(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("ParseActivity(%q) expected error, got nil (activity=%v)", tc.in, got)
				}
			} else if err != nil {
				t.Fatalf("ParseActivity(%q) unexpected error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("ParseActivity(%q)=%v want %v", tc.in, got, tc.want)
			}
		})
	}
}
