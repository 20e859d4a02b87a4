package tui

import (
	"strings"
	"testing"
	"time"
)

func TestToastPush_MonotonicIDs(t *testing.T) {
	m := newToastModel()
	m.push("first", toastSuccess)
	m.push("second", toastError)
	m.dismiss(m.items[0].id)
	m.push("third", toastInfo)

	if m.items[0].id != 2 || m.items[1].id != 3 {
		t.Errorf("ids = %d, %d, want 2, 3 (never reused)", m.items[0].id, m.items[1].id)
	}
}

func TestToastView_InsertionOrder(t *testing.T) {
	m := newToastModel()
	m.push("saved", toastSuccess)
	m.push("server error", toastError)

	view := m.View()
	saved := strings.Index(view, "saved")
	boom := strings.Index(view, "server error")
	if saved == -1 || boom == -1 {
		t.Fatalf("view missing toasts: %q", view)
	}
	if saved > boom {
		t.Error("toasts should render in insertion order")
	}
}

func TestToastDismiss_Idempotent(t *testing.T) {
	m := newToastModel()
	m.push("once", toastSuccess)
	id := m.items[0].id

	m.dismiss(id)
	if len(m.items) != 0 {
		t.Fatalf("got %d toasts after dismiss, want 0", len(m.items))
	}
	m.dismiss(id) // second dismissal must be a no-op
	if len(m.items) != 0 {
		t.Errorf("got %d toasts after double dismiss, want 0", len(m.items))
	}
}

func TestToastDismiss_OnlyMatchingID(t *testing.T) {
	m := newToastModel()
	m.push("keep me", toastSuccess)
	m.push("drop me", toastSuccess)
	dropID := m.items[1].id

	m.dismiss(dropID)
	if len(m.items) != 1 {
		t.Fatalf("got %d toasts, want 1", len(m.items))
	}
	if m.items[0].message != "keep me" {
		t.Errorf("remaining toast = %q, want %q", m.items[0].message, "keep me")
	}
}

func TestTTLFor(t *testing.T) {
	if got := ttlFor(toastError); got != 5*time.Second {
		t.Errorf("ttlFor(error) = %v, want 5s", got)
	}
	if got := ttlFor(toastSuccess); got != 3*time.Second {
		t.Errorf("ttlFor(success) = %v, want 3s", got)
	}
	if got := ttlFor(toastInfo); got != 3*time.Second {
		t.Errorf("ttlFor(info) = %v, want 3s", got)
	}
}

func TestToastView_EmptyIsEmpty(t *testing.T) {
	m := newToastModel()
	if m.View() != "" {
		t.Error("empty toast stack should render nothing")
	}
}
