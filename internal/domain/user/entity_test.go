package user

import "testing"

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"student", RoleStudent, true},
		{" EMPLOYEE ", RoleEmployee, true},
		{"Educator", RoleEducator, true},
		{"ADMIN", RoleAdmin, true},
		{"mentor", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseRole(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestRole_CanRequestVerification(t *testing.T) {
	allowed := map[Role]bool{
		RoleStudent:  true,
		RoleEmployee: true,
		RoleEducator: false,
		RoleAdmin:    false,
	}
	for r, want := range allowed {
		if got := r.CanRequestVerification(); got != want {
			t.Fatalf("%s.CanRequestVerification() = %v, want %v", r, got, want)
		}
	}
}

func TestRole_SelfAssignable(t *testing.T) {
	if RoleAdmin.SelfAssignable() {
		t.Fatalf("admin must not be self-assignable")
	}
	if !RoleEducator.SelfAssignable() {
		t.Fatalf("educator must be self-assignable")
	}
}
