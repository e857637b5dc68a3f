package exam2pdf

import "testing"

func TestFindClosingDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		text      string
		start     int
		open      rune
		close     rune
		wantIdx   int
		wantFound bool
	}{
		{
			name:      "simple brackets",
			text:      "[alt]",
			start:     0,
			open:      '[',
			close:     ']',
			wantIdx:   4,
			wantFound: true,
		},
		{
			name:      "escaped close skipped",
			text:      `[a\]b]c`,
			start:     0,
			open:      '[',
			close:     ']',
			wantIdx:   5,
			wantFound: true,
		},
		{
			name:      "nested brackets",
			text:      "[a[b]c]",
			start:     0,
			open:      '[',
			close:     ']',
			wantIdx:   6,
			wantFound: true,
		},
		{
			name:      "parens with nesting",
			text:      "(x(y)z)",
			start:     0,
			open:      '(',
			close:     ')',
			wantIdx:   6,
			wantFound: true,
		},
		{
			name:      "unterminated",
			text:      "[abc",
			start:     0,
			open:      '[',
			close:     ']',
			wantIdx:   0,
			wantFound: false,
		},
		{
			name:      "lone trailing backslash",
			text:      `[ab\`,
			start:     0,
			open:      '[',
			close:     ']',
			wantIdx:   0,
			wantFound: false,
		},
		{
			name:      "escaped open does not nest",
			text:      `[a\[b]`,
			start:     0,
			open:      '[',
			close:     ']',
			wantIdx:   5,
			wantFound: true,
		},
		{
			name:      "start past opener",
			text:      "xx[alt]yy",
			start:     2,
			open:      '[',
			close:     ']',
			wantIdx:   6,
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			idx, found := findClosingDelimiter([]rune(tt.text), tt.start, tt.open, tt.close)
			if idx != tt.wantIdx || found != tt.wantFound {
				t.Errorf("findClosingDelimiter(%q, %d) = (%d, %v), want (%d, %v)",
					tt.text, tt.start, idx, found, tt.wantIdx, tt.wantFound)
			}
		})
	}
}

func TestFindClosingDelimiter_MultibyteRunes(t *testing.T) {
	t.Parallel()

	// Indices are rune positions, not byte offsets.
	text := []rune("[図1の説明]")
	idx, found := findClosingDelimiter(text, 0, '[', ']')
	if !found || idx != 6 {
		t.Errorf("findClosingDelimiter() = (%d, %v), want (6, true)", idx, found)
	}
}
