package domain

import (
	"errors"
	"testing"
)

func TestParseDifficulty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{in: "easy", want: DifficultyEasy},
		{in: " Medium ", want: DifficultyMedium},
		{in: "HARD", want: DifficultyHard},
		{in: "expert", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseDifficulty(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDifficulty) {
				t.Errorf("ParseDifficulty(%q): expected ErrInvalidDifficulty, got %v", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDifficulty(%q): unexpected error %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDifficulty(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDifficultyNext(t *testing.T) {
	t.Parallel()

	cases := map[Difficulty]Difficulty{
		DifficultyEasy:   DifficultyMedium,
		DifficultyMedium: DifficultyHard,
		DifficultyHard:   DifficultyHard,
		"":               DifficultyEasy,
	}
	for in, want := range cases {
		if got := in.Next(); got != want {
			t.Errorf("%q.Next() = %q, want %q", in, got, want)
		}
	}
}
