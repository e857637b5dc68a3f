package exam2pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/exam-tools/go-exam2pdf/internal/metadata"
)

// fakeSidecarExtractor returns a canned sidecar and remembers the request.
type fakeSidecarExtractor struct {
	sidecar *metadata.Sidecar
	err     error
	req     SidecarRequest
}

func (f *fakeSidecarExtractor) ExtractSidecar(_ context.Context, req SidecarRequest) (*metadata.Sidecar, error) {
	f.req = req
	return f.sidecar, f.err
}

func TestWriteSidecar(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	srcDir := filepath.Join(root, "markdown")
	if err := os.MkdirAll(srcDir, 0o750); err != nil {
		t.Fatal(err)
	}
	srcPath := filepath.Join(srcDir, "2023年度 生理学_解答解説.md")
	if err := os.WriteFile(srcPath, []byte("> 問1 本文\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	ext := &fakeSidecarExtractor{sidecar: &metadata.Sidecar{
		University: "東京医科大学",
		Year:       "2023",
		Subject:    "生理学",
	}}

	path, err := WriteSidecar(context.Background(), ext, srcPath, "")
	if err != nil {
		t.Fatalf("WriteSidecar() error = %v", err)
	}

	want := filepath.Join(root, "metadata-yaml", "2023年度 生理学_解答解説_metadata.yaml")
	if path != want {
		t.Errorf("sidecar path = %q, want %q", path, want)
	}
	if !strings.Contains(ext.req.Text, "問1") {
		t.Errorf("extractor did not receive the source text: %q", ext.req.Text)
	}

	// The written sidecar must be discoverable from the source file.
	if found := metadata.Find(srcPath); found != want {
		t.Errorf("Find(%q) = %q, want %q", srcPath, found, want)
	}
	s, err := metadata.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.University != "東京医科大学" || s.Year != "2023" || s.Subject != "生理学" {
		t.Errorf("round-tripped sidecar = %+v", s)
	}
}

func TestWriteSidecar_ExplicitDirAndFallbacks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	srcPath := filepath.Join(dir, "東京医科大学 2023年度 生理学_解答解説.md")
	if err := os.WriteFile(srcPath, []byte("本文"), 0o600); err != nil {
		t.Fatal(err)
	}

	// The model came back empty-handed; every field fills from the name.
	ext := &fakeSidecarExtractor{sidecar: &metadata.Sidecar{University: "不明"}}
	yamlDir := filepath.Join(dir, "out")

	path, err := WriteSidecar(context.Background(), ext, srcPath, yamlDir)
	if err != nil {
		t.Fatalf("WriteSidecar() error = %v", err)
	}
	if filepath.Dir(path) != yamlDir {
		t.Errorf("sidecar dir = %q, want %q", filepath.Dir(path), yamlDir)
	}

	s, err := metadata.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if s.University != "東京医科大学" {
		t.Errorf("University = %q", s.University)
	}
	if s.Year != "2023" {
		t.Errorf("Year = %q", s.Year)
	}
	if s.Subject != "東京医科大学 2023年度 生理学" {
		t.Errorf("Subject = %q", s.Subject)
	}
}

func TestWriteSidecar_ExtractorError(t *testing.T) {
	t.Parallel()

	srcPath := filepath.Join(t.TempDir(), "exam.md")
	if err := os.WriteFile(srcPath, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("model unavailable")
	_, err := WriteSidecar(context.Background(), &fakeSidecarExtractor{err: wantErr}, srcPath, "")
	if !errors.Is(err, wantErr) {
		t.Errorf("WriteSidecar() error = %v, want %v", err, wantErr)
	}
}

func TestParseSidecarResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    metadata.Sidecar
		wantErr bool
	}{
		{
			name:  "front matter delimited",
			input: "---\n大学名: 東京医科大学\n年度: \"2023\"\n試験科目: 生理学\n---",
			want:  metadata.Sidecar{University: "東京医科大学", Year: "2023", Subject: "生理学"},
		},
		{
			name:  "bare yaml",
			input: "大学名: 東京医科大学\n試験科目: 生理学\n",
			want:  metadata.Sidecar{University: "東京医科大学", Subject: "生理学"},
		},
		{
			name:  "code fenced despite instructions",
			input: "```yaml\n---\n大学名: 東京医科大学\n---\n```",
			want:  metadata.Sidecar{University: "東京医科大学"},
		},
		{
			name:    "empty response",
			input:   "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseSidecarResponse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("parseSidecarResponse() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSidecarResponse() error = %v", err)
			}
			if *got != tt.want {
				t.Errorf("parseSidecarResponse() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestFillSidecarFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sidecar metadata.Sidecar
		srcPath string
		want    metadata.Sidecar
	}{
		{
			name:    "year from file name",
			srcPath: "dir/2021 解剖学.md",
			want:    metadata.Sidecar{Year: "2021", Subject: "2021 解剖学"},
		},
		{
			name:    "explanation suffix stripped from subject",
			srcPath: "生化学_解答解説.md",
			want:    metadata.Sidecar{Subject: "生化学"},
		},
		{
			name:    "university from kanji run",
			srcPath: "大阪医科大学 2020.md",
			want:    metadata.Sidecar{University: "大阪医科大学", Year: "2020", Subject: "大阪医科大学 2020"},
		},
		{
			name:    "unknown marker treated as missing",
			sidecar: metadata.Sidecar{University: "不明", Subject: "生理学"},
			srcPath: "京都大学.md",
			want:    metadata.Sidecar{University: "京都大学", Subject: "生理学"},
		},
		{
			name:    "filled fields untouched",
			sidecar: metadata.Sidecar{University: "東京医科大学", Year: "2023", Subject: "生理学"},
			srcPath: "他大学 1999.md",
			want:    metadata.Sidecar{University: "東京医科大学", Year: "2023", Subject: "生理学"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			s := tt.sidecar
			fillSidecarFallbacks(&s, tt.srcPath)
			if s != tt.want {
				t.Errorf("fillSidecarFallbacks() = %+v, want %+v", s, tt.want)
			}
		})
	}
}

func TestSidecarIncomplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sidecar metadata.Sidecar
		want    bool
	}{
		{name: "complete", sidecar: metadata.Sidecar{University: "東京医科大学", Subject: "生理学"}, want: false},
		{name: "university missing", sidecar: metadata.Sidecar{Subject: "生理学"}, want: true},
		{name: "subject unknown marker", sidecar: metadata.Sidecar{University: "東京医科大学", Subject: "不明"}, want: true},
		{name: "whitespace only", sidecar: metadata.Sidecar{University: "  ", Subject: "生理学"}, want: true},
		{name: "year missing is tolerated", sidecar: metadata.Sidecar{University: "東京医科大学", Subject: "生理学", Year: ""}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := sidecarIncomplete(&tt.sidecar); got != tt.want {
				t.Errorf("sidecarIncomplete(%+v) = %v, want %v", tt.sidecar, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	t.Parallel()

	if got := truncateRunes("短い本文", 10); got != "短い本文" {
		t.Errorf("truncateRunes() = %q, want input unchanged", got)
	}
	got := truncateRunes(strings.Repeat("あ", 20), 5)
	if !strings.HasPrefix(got, "あああああ\n") || !strings.Contains(got, "truncated") {
		t.Errorf("truncateRunes() = %q", got)
	}
}

func TestBuildSidecarPrompt(t *testing.T) {
	t.Parallel()

	prompt := buildSidecarPrompt("exams/生理学.md", "本文サンプル")
	for _, want := range []string{"exams/生理学.md", "本文サンプル", "大学名", "年度", "試験科目"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
