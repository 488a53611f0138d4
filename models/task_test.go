package models

import "testing"

func TestParseTaskStatus(t *testing.T) {
	cases := []struct {
		in   string
		want TaskStatus
		ok   bool
	}{
		{"New", StatusNew, true},
		{"taken", StatusTaken, true},
		{"SUBMITTED", StatusSubmitted, true},
		{"Approved", StatusApproved, true},
		{"rejected", StatusRejected, true},
		{"", "", false},
		{"Done", "", false},
	}
	for _, tc := range cases {
		got, err := ParseTaskStatus(tc.in)
		if tc.ok {
			if err != nil {
				t.Errorf("ParseTaskStatus(%q) error: %v", tc.in, err)
			} else if got != tc.want {
				t.Errorf("ParseTaskStatus(%q) = %q, want %q", tc.in, got, tc.want)
			}
			continue
		}
		if err == nil {
			t.Errorf("ParseTaskStatus(%q) accepted, got %q", tc.in, got)
		}
	}
}

func TestParseRole(t *testing.T) {
	if r, err := ParseRole("admin"); err != nil || r != RoleAdmin {
		t.Errorf("ParseRole(admin) = %q, %v", r, err)
	}
	if r, err := ParseRole("User"); err != nil || r != RoleUser {
		t.Errorf("ParseRole(User) = %q, %v", r, err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Error("ParseRole(superuser) accepted")
	}
}

func TestUserIsAdmin(t *testing.T) {
	u := User{Role: RoleUser}
	if u.IsAdmin() {
		t.Error("regular user reported as admin")
	}
	a := User{Role: RoleAdmin}
	if !a.IsAdmin() {
		t.Error("admin not recognized")
	}
}
