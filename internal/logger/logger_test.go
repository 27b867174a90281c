package logger

import "testing"

func TestInit(t *testing.T) {
	l := New()
	if l.Log == nil {
		t.Fatal("New returned nil logger")
	}

	if err := l.Init("debug"); err != nil {
		t.Errorf("Init(debug): %v", err)
	}
	if err := l.Init("nonsense"); err == nil {
		t.Error("Init(nonsense) did not return error")
	}
}
