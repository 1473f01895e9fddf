package tile

import "testing"

func TestTypePredicates(t *testing.T) {
	tests := []struct {
		name     string
		typ      Type
		obstacle bool
		bounce   bool
		finish   bool
		spawn    bool
	}{
		{"empty", Empty, false, false, false, false},
		{"first obstacle", 1, true, false, false, false},
		{"last obstacle", 124, true, false, false, false},
		{"first object", 125, false, false, false, false},
		{"last object", 153, false, false, false, false},
		{"spawn", Spawn, false, false, false, true},
		{"finish", Finish, false, false, true, false},
		{"bounce", Bounce, false, true, false, false},
		{"wall", InvisibleWall, true, false, false, false},
		{"unused code", 500, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.typ.IsObstacle(); got != tt.obstacle {
				t.Errorf("IsObstacle() = %v, expected %v", got, tt.obstacle)
			}
			if got := tt.typ.IsBounce(); got != tt.bounce {
				t.Errorf("IsBounce() = %v, expected %v", got, tt.bounce)
			}
			if got := tt.typ.IsFinish(); got != tt.finish {
				t.Errorf("IsFinish() = %v, expected %v", got, tt.finish)
			}
			if got := tt.typ.IsSpawn(); got != tt.spawn {
				t.Errorf("IsSpawn() = %v, expected %v", got, tt.spawn)
			}
		})
	}
}

func TestSpecialTypesExclusive(t *testing.T) {
	for code := Type(0); code <= 1000; code++ {
		n := 0
		for _, p := range []bool{code.IsBounce(), code.IsFinish(), code.IsSpawn()} {
			if p {
				n++
			}
		}
		if n > 1 {
			t.Fatalf("type %d matches %d special predicates", code, n)
		}
	}
}

func TestSetType(t *testing.T) {
	tl := New(3, 4, Empty)

	if err := tl.SetType(int(Bounce)); err != nil {
		t.Fatalf("SetType(777) failed: %v", err)
	}
	if !tl.IsBounce() {
		t.Errorf("Type = %v, expected bounce", tl.Type)
	}

	if err := tl.SetType(-1); err == nil {
		t.Error("SetType(-1) should fail")
	}
	if tl.Type != Bounce {
		t.Errorf("failed SetType changed type to %v", tl.Type)
	}
}

func TestGroundFor(t *testing.T) {
	tests := []struct {
		theme Theme
		want  Type
	}{
		{ThemeSpring, 1},
		{ThemeDesert, 21},
		{ThemeFactory, 39},
		{ThemeGraveyard, 69},
		{ThemeScifi, 85},
		{ThemeWinter, 108},
		{ThemeInvisible, InvisibleWall},
	}
	for _, tt := range tests {
		got, ok := GroundFor(tt.theme)
		if !ok || got != tt.want {
			t.Errorf("GroundFor(%s) = %v, %v, expected %v", tt.theme, got, ok, tt.want)
		}
	}

	if _, ok := GroundFor("lava"); ok {
		t.Error("GroundFor(lava) should not be found")
	}
}
