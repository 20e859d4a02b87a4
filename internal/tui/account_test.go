package tui

import (
	"strings"
	"testing"
)

func TestChangePassword_ValidatesBeforeSubmit(t *testing.T) {
	m := accountModel{state: acChangePassword, fieldCount: 3}
	m.current = "oldpass"
	m.newPass = "abc"
	m.confirm = "abc"

	m, cmd := m.Update(keyMsg("enter"))
	if m.state != acChangePassword {
		t.Error("short password should keep the form open")
	}
	msg, ok := cmd().(showToastMsg)
	if !ok || msg.kind != toastError {
		t.Fatalf("expected error toast, got %#v", msg)
	}

	m.newPass = "longenough"
	m.confirm = "different"
	m, cmd = m.Update(keyMsg("enter"))
	if m.state != acChangePassword {
		t.Error("mismatched confirmation should keep the form open")
	}
	msg, ok = cmd().(showToastMsg)
	if !ok || msg.kind != toastError {
		t.Fatalf("expected error toast, got %#v", msg)
	}
}

func TestChangePassword_FocusCycles(t *testing.T) {
	m := accountModel{state: acChangePassword, fieldCount: 3}

	m, _ = m.Update(keyMsg("tab"))
	if m.focus != 1 {
		t.Errorf("focus = %d, want 1", m.focus)
	}
	m, _ = m.Update(keyMsg("tab"))
	m, _ = m.Update(keyMsg("tab"))
	if m.focus != 0 {
		t.Errorf("focus = %d, want wrap to 0", m.focus)
	}
}

func TestChangePassword_InputIsMasked(t *testing.T) {
	m := accountModel{state: acChangePassword, fieldCount: 3}
	m, _ = m.Update(keyMsg("s"))
	m, _ = m.Update(keyMsg("3"))

	view := m.View(20)
	if strings.Contains(view, "s3") {
		t.Error("password characters must not appear in the view")
	}
	if !strings.Contains(view, "••") {
		t.Errorf("masked input missing from view: %q", view)
	}
}

func TestThemeToggledMsg_ShowsToast(t *testing.T) {
	m := accountModel{}
	_, cmd := m.Update(themeToggledMsg{theme: "dark"})
	msg, ok := cmd().(showToastMsg)
	if !ok || msg.kind != toastInfo {
		t.Fatalf("expected info toast, got %#v", msg)
	}
	if msg.message != "theme: dark" {
		t.Errorf("message = %q", msg.message)
	}
}
