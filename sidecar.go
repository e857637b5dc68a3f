package exam2pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/exam-tools/go-exam2pdf/internal/metadata"
	"github.com/exam-tools/go-exam2pdf/internal/yamlutil"
)

// SidecarExtractor derives exam metadata (university, year, subject) from an
// explanation document. Implementations return their best guess; callers
// fill remaining gaps from the file name.
type SidecarExtractor interface {
	ExtractSidecar(ctx context.Context, req SidecarRequest) (*metadata.Sidecar, error)
}

// SidecarRequest carries one extraction call. The file path is given to the
// model alongside the text: names like "東京医科大学_2023_生理学.md" often
// carry the answer when the body does not.
type SidecarRequest struct {
	FilePath string
	Text     string
}

// sidecarSnippetLimit caps the body text sent to the model, in runes.
const sidecarSnippetLimit = 80_000

var (
	sidecarBlockRe      = regexp.MustCompile(`(?s)^---\s*(.*?)\s*---\s*$`)
	yearRe              = regexp.MustCompile(`(20[0-9]{2}|19[0-9]{2})`)
	universityRe        = regexp.MustCompile(`[\p{Han}\p{Hiragana}\p{Katakana}]+大学`)
	explanationSuffixRe = regexp.MustCompile(`_?解答解説$`)
)

// ExtractSidecar asks the model for the sidecar fields as YAML front matter,
// retrying with backoff while the response fails to parse or leaves
// university or subject unknown. A parsed-but-incomplete response is kept
// and returned once the attempts run out; file-name fallbacks fill the rest.
func (g *GeminiGenerator) ExtractSidecar(ctx context.Context, req SidecarRequest) (*metadata.Sidecar, error) {
	prompt := buildSidecarPrompt(req.FilePath, truncateRunes(req.Text, sidecarSnippetLimit))
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	var incomplete *metadata.Sidecar
	var lastErr error

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
		if err != nil {
			lastErr = err
		} else if s, perr := parseSidecarResponse(extractText(resp)); perr != nil {
			lastErr = perr
		} else if !sidecarIncomplete(s) {
			return s, nil
		} else if incomplete == nil {
			incomplete = s
		}

		if attempt < g.maxAttempts-1 {
			delay := backoffDelay(attempt)
			g.logger.Warn("sidecar extraction incomplete, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
				zap.Error(lastErr),
			)
			if err := g.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
	}

	if incomplete != nil {
		return incomplete, nil
	}
	if lastErr != nil {
		return nil, fmt.Errorf("extracting sidecar: %w", lastErr)
	}
	return nil, ErrEmptyResponse
}

// WriteSidecar extracts metadata for the explanation file at srcPath and
// stores the sidecar where attribution resolution will later find it. An
// empty yamlDir selects the conventional metadata-yaml/ directory under the
// file's grandparent. Returns the sidecar path.
func WriteSidecar(ctx context.Context, extractor SidecarExtractor, srcPath, yamlDir string) (string, error) {
	data, err := os.ReadFile(srcPath) // #nosec G304 -- caller-provided source path
	if err != nil {
		return "", fmt.Errorf("reading source: %w", err)
	}

	s, err := extractor.ExtractSidecar(ctx, SidecarRequest{
		FilePath: srcPath,
		Text:     string(data),
	})
	if err != nil {
		return "", err
	}
	fillSidecarFallbacks(s, srcPath)

	if yamlDir == "" {
		yamlDir = metadata.DefaultDir(srcPath)
	}
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	path := filepath.Join(yamlDir, stem+metadata.SidecarSuffix)
	if err := metadata.Save(path, s); err != nil {
		return "", err
	}
	return path, nil
}

// buildSidecarPrompt composes the extraction instructions. The model is told
// to answer with YAML front matter and nothing else.
func buildSidecarPrompt(filePath, text string) string {
	return "あなたは厳格なメタデータ抽出器です。以下の入力（ファイルパス・本文）から、指定のYAMLフロントマターのみを返してください。" +
		"説明文やコードブロック（```）は一切不要です。返答は先頭行に'---'、末尾行に'---'を付けたYAMLのみ。\n\n" +
		"[ファイルパス]\n" + filePath + "\n\n" +
		"[本文]\n" + text + "\n\n" +
		"# 出力要件（YAMLフロントマターのみ）\n" +
		"---\n" +
		"大学名: <本文またはファイル名から推定。表記揺れは避け、正式名称の日本の大学>\n" +
		"年度: <西暦4桁。本文やファイル名から推定。例: 2023>\n" +
		"試験科目: <本文またはファイル名から推定。医科大学にあるような科目名>\n" +
		"---\n\n" +
		"不明項目は空欄にせず、合理的に推定してください。YAML以外の文字や注釈は一切出力しないでください。"
}

// parseSidecarResponse turns a model response into a Sidecar. Code fences
// and front-matter delimiters are tolerated even though the prompt forbids
// the former.
func parseSidecarResponse(text string) (*metadata.Sidecar, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```yaml")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	if m := sidecarBlockRe.FindStringSubmatch(text); m != nil {
		text = m[1]
	}

	var s metadata.Sidecar
	if err := yamlutil.Unmarshal([]byte(text), &s); err != nil {
		return nil, fmt.Errorf("parsing sidecar response: %w", err)
	}
	return &s, nil
}

// sidecarIncomplete reports whether university or subject is still unknown.
// The other fields have usable file-name fallbacks, these two drive the
// attribution line.
func sidecarIncomplete(s *metadata.Sidecar) bool {
	return fieldUnknown(s.University) || fieldUnknown(s.Subject)
}

func fieldUnknown(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || v == UnknownField
}

// fillSidecarFallbacks fills unknown fields from the source file name: a
// four-digit year, the stem minus the 解答解説 suffix as subject, and a
// kanji-or-kana run ending in 大学 as university.
func fillSidecarFallbacks(s *metadata.Sidecar, srcPath string) {
	stem := strings.TrimSuffix(filepath.Base(srcPath), filepath.Ext(srcPath))
	if fieldUnknown(s.Year) {
		s.Year = yearRe.FindString(filepath.Base(srcPath))
	}
	if fieldUnknown(s.Subject) {
		s.Subject = explanationSuffixRe.ReplaceAllString(stem, "")
	}
	if fieldUnknown(s.University) {
		s.University = universityRe.FindString(stem)
	}
}

// truncateRunes limits text to n runes, marking the cut.
func truncateRunes(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "\n…(truncated)…"
}
