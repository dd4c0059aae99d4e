package matching

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "strips remastered and punctuation",
			input: "Blinding Lights (Remastered 2020)",
			want:  "blinding lights",
		},
		{
			name:  "strips live suffix",
			input: "Song Title - Live at Wembley",
			want:  "song title",
		},
		{
			name:  "keeps non-noise dash suffix",
			input: "Part One - The Return",
			want:  "part one the return",
		},
		{
			name:  "keeps digits",
			input: "Symphony No. 5",
			want:  "symphony no 5",
		},
		{
			name:  "removes feat tokens",
			input: "Artist feat. Someone",
			want:  "artist someone",
		},
		{
			name:  "keeps accents",
			input: "  Canción  del Mariachi ",
			want:  "canción del mariachi",
		},
		{
			name:  "blank",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Fatalf("Normalize: got %q, want %q", got, tt.want)
			}
		})
	}
}
