package exam2pdf

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// MarkdownGenerator produces answer-explanation Markdown from an exam
// document. Implementations must tolerate arbitrary PDF or scanned-image
// input and return the full Markdown text or an error; they never write
// files.
type MarkdownGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// GenerateRequest carries one generation call.
type GenerateRequest struct {
	ExamData []byte // exam document bytes (required)
	MIMEType string // media type of ExamData; empty means application/pdf
	ExamName string // explanation title; falls back to FileName
	FileName string // original file name, used when ExamName is empty
}

// Generation defaults.
const (
	defaultGeminiModel = "gemini-3-pro-preview"
	defaultMaxAttempts = 2
	maxBackoff         = 30 * time.Second
)

// continuationMarkers are phrases the model emits when it truncates the
// explanation and promises to continue ("the remaining questions follow the
// same procedure", and friends). A response containing any of them is
// rejected and retried.
var continuationMarkers = []string{
	"同様の手順",
	"同様の処理",
	"同様の方法",
	"以下同様",
	"残りの問題",
	"以降の解答",
	"以降の解説",
	"以降、文字数制限",
	"指示に従い順次作成",
	"順次作成",
	"同様に作成",
	"（続く）",
	"(以降、各",
	"同様の詳細な解説",
	"続きの解答解説",
	"(以降、全て",
	"(以降、すべて",
	"(以降、同様の",
	"（以降の問題も同様",
}

// GeminiGenerator implements MarkdownGenerator on the Gemini API.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	maxAttempts int
	logger      *zap.Logger
	sleep       func(ctx context.Context, d time.Duration) error
}

// GeneratorOption configures a GeminiGenerator.
type GeneratorOption func(*GeminiGenerator)

// WithModel overrides the Gemini model name.
func WithModel(model string) GeneratorOption {
	return func(g *GeminiGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithMaxAttempts sets how many times a generation is attempted before the
// last response (or error) is surfaced.
func WithMaxAttempts(n int) GeneratorOption {
	return func(g *GeminiGenerator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithGeneratorLogger attaches a logger for retry diagnostics.
func WithGeneratorLogger(logger *zap.Logger) GeneratorOption {
	return func(g *GeminiGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGeminiGenerator creates a Gemini-backed generator. API key precedence:
// the apiKey argument, then GEMINI_API_KEY, then GOOGLE_API_KEY.
func NewGeminiGenerator(ctx context.Context, apiKey string, opts ...GeneratorOption) (*GeminiGenerator, error) {
	key := resolveAPIKey(apiKey)
	if key == "" {
		return nil, ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: key})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	g := &GeminiGenerator{
		client:      client,
		model:       defaultGeminiModel,
		maxAttempts: defaultMaxAttempts,
		logger:      zap.NewNop(),
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate sends the exam PDF and prompt to the model, retrying with
// exponential backoff plus jitter when the call fails, returns no text, or
// returns a truncated explanation. After the attempts are exhausted a
// non-empty response is returned even if it still looks truncated; an empty
// one surfaces the last error.
func (g *GeminiGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	mimeType := req.MIMEType
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(req.ExamData, mimeType),
			genai.NewPartFromText(buildPrompt(req.ExamName, req.FileName)),
		}, genai.RoleUser),
	}

	var text string
	var lastErr error

	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
		if err != nil {
			lastErr = err
			text = ""
		} else {
			text = extractText(resp)
		}

		if text != "" && !containsContinuationMarker(text) {
			return text, nil
		}

		if attempt < g.maxAttempts-1 {
			delay := backoffDelay(attempt)
			g.logger.Warn("generation attempt failed, retrying",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", delay),
				zap.Error(lastErr),
			)
			if err := g.sleep(ctx, delay); err != nil {
				return "", err
			}
		}
	}

	if text == "" {
		if lastErr != nil {
			return "", fmt.Errorf("gemini request failed after retries: %w", lastErr)
		}
		return "", ErrEmptyResponse
	}
	return text, nil
}

// resolveAPIKey applies the key precedence: explicit > GEMINI_API_KEY >
// GOOGLE_API_KEY.
func resolveAPIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GOOGLE_API_KEY")
}

// buildPrompt composes the generation instructions. The quoted-question
// requirement matters downstream: the blockquotes it asks for are what the
// attribution pipeline later stamps with citations.
func buildPrompt(examName, fileName string) string {
	title := strings.TrimSpace(examName)
	if title == "" {
		title = fileName
	}
	return "添付ファイルは医科大学の過去問問題ファイルです。以下の条件を満たすように、すべての問題に対する解答と解説をMarkdown形式で作成してください。" +
		fmt.Sprintf("「%sの解答解説」から出力し始めてください。", title) +
		"問題ごとに問題番号と問題文を省略せずそのまま引用し、引用であることをはっきりさせるためにquoteをつけてください。" +
		"ただし問題文に図が含まれる場合、図の部分は引用しなくて構いません。" +
		"解説は医学生向けに、冗長を許容して丁寧に網羅的に作成してください。" +
		"問題文が英語の場合は、解説に問題文の日本語訳についても出力してください。"
}

// extractText pulls text out of a response, falling back to walking the
// candidates when the convenience accessor is empty.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	if t := resp.Text(); t != "" {
		return t
	}

	var texts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part != nil && part.Text != "" {
				texts = append(texts, part.Text)
			}
		}
	}
	return strings.TrimSpace(strings.Join(texts, "\n"))
}

// containsContinuationMarker reports whether the text contains any phrase
// from the truncation blocklist.
func containsContinuationMarker(text string) bool {
	for _, marker := range continuationMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

// backoffDelay computes 2^attempt seconds plus up to one second of jitter,
// capped at maxBackoff.
func backoffDelay(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt))*time.Second +
		time.Duration(rand.Int63n(int64(time.Second))) // #nosec G404 -- jitter, not crypto
	if delay > maxBackoff {
		delay = maxBackoff
	}
	return delay
}

// sleepContext waits for d or until the context is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
