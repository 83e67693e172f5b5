package symtab

import (
	"testing"

	"github.com/hwlang/idl/internal/types"
	"github.com/hwlang/idl/internal/value"
)

func TestAddRejectsShadowing(t *testing.T) {
	tab := New("global")
	if err := tab.Add("x", &Var{Name: "x", Type: types.BitsType(8)}); err != nil {
		t.Fatal(err)
	}
	tab.Push("inner")
	if err := tab.Add("x", &Var{Name: "x", Type: types.BitsType(4)}); err == nil {
		t.Fatal("shadowing x in a nested scope should fail")
	}
	if err := tab.Add("y", &Var{Name: "y", Type: types.BitsType(4)}); err != nil {
		t.Fatal(err)
	}
	tab.Pop()
	if _, ok := tab.Get("y"); ok {
		t.Error("y should be gone after Pop")
	}
	if _, ok := tab.Get("x"); !ok {
		t.Error("x should survive Pop")
	}
}

func TestPopGlobalPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("popping the global level should panic")
		}
	}()
	New("global").Pop()
}

func TestGlobalCloneIsolation(t *testing.T) {
	tab := New("global")
	v := &Var{Name: "x", Type: types.BitsType(8)}
	v.SetValue(value.NewUint(1, 8))
	tab.AddGlobal("x", v)

	clone := tab.GlobalClone()
	cv, ok := clone.Get("x")
	if !ok {
		t.Fatal("clone should see x")
	}
	cv.SetValue(value.NewUint(2, 8))
	if got := tab.levels[0].vars["x"].Value.Uint64(); got != 1 {
		t.Errorf("original x = %d after clone write, want 1", got)
	}
	if clone.ID() == tab.ID() {
		t.Error("clone must have its own identity")
	}

	// Warnings cross the clone boundary.
	clone.Warn("here", "truncated")
	if len(tab.Warnings()) != 1 {
		t.Errorf("warnings = %d, want 1", len(tab.Warnings()))
	}
	clone.Release()
}

func TestReleaseRequiresGlobalLevel(t *testing.T) {
	tab := New("global")
	clone := tab.GlobalClone()
	clone.Push("fn")
	defer func() {
		if recover() == nil {
			t.Error("releasing below the global level should panic")
		}
	}()
	clone.Release()
}

func TestUseAfterReleasePanics(t *testing.T) {
	clone := New("global").GlobalClone()
	clone.Release()
	defer func() {
		if recover() == nil {
			t.Error("lookup on a released table should panic")
		}
	}()
	clone.Get("x")
}

func TestScopeKeyOverride(t *testing.T) {
	tab := New("global")
	if tab.ScopeKey() != tab.ID() {
		t.Error("default scope key should be the table identity")
	}
	clone := tab.GlobalClone()
	clone.SetScopeKey("f<4'd4>")
	if clone.ScopeKey() != "f<4'd4>" {
		t.Errorf("scope key = %q", clone.ScopeKey())
	}
	if tab.ScopeKey() == clone.ScopeKey() {
		t.Error("override must not leak to the original")
	}
	clone.Release()
}

func TestFuncCheckedSharedAcrossClones(t *testing.T) {
	tab := New("global")
	fn := &Func{Scope: tab}
	tab.AddGlobal("f", &Var{Name: "f", Type: types.FunctionType("f", nil, nil, nil), Func: fn})

	clone := tab.GlobalClone()
	cv, _ := clone.Get("f")
	cv.Func.MarkChecked("f<>")
	clone.Release()

	if !fn.IsChecked("f<>") {
		t.Error("body-check cache should be shared through clones")
	}
}

func TestGlobalNamesOrder(t *testing.T) {
	tab := New("global")
	for _, n := range []string{"c", "a", "b"} {
		tab.AddGlobal(n, &Var{Name: n, Type: types.BoolType()})
	}
	got := tab.GlobalNames()
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GlobalNames = %v, want %v", got, want)
		}
	}
}
