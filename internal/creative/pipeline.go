package creative

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Bhasvanth-Dev9380/ad-generator/internal/domain"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/infra"
	"github.com/Bhasvanth-Dev9380/ad-generator/internal/providers/genai"
)

// ModelClient is the slice of the Gemini client the pipeline depends on.
type ModelClient interface {
	GenerateContent(ctx context.Context, parts []genai.Part, opts *genai.GenerateOptions) (*genai.Response, error)
}

// Uploader is the image host surface the pipeline depends on.
type Uploader interface {
	Upload(ctx context.Context, payload, fileName string) (string, error)
}

// Request is the validated intake for one creative generation run. Exactly
// one of FileData or ImageURL is expected to be set.
type Request struct {
	FileData        []byte
	FileContentType string
	ImageURL        string
	AvatarURL       string
	Description     string
	Size            string
	UserEmail       string
}

// Options wires the pipeline's collaborators.
type Options struct {
	Users   domain.UserRepository
	Jobs    domain.JobRepository
	Model   ModelClient
	Host    Uploader
	Fetcher *Fetcher
	Logger  *infra.Logger
	Now     func() time.Time
}

// Pipeline runs the creative generation flow: user lookup, job record,
// asset normalization, prompt composition, creative generation, and result
// publishing, with job-record cleanup on any failure past intake.
type Pipeline struct {
	users   domain.UserRepository
	jobs    domain.JobRepository
	model   ModelClient
	host    Uploader
	fetcher *Fetcher
	logger  *infra.Logger
	now     func() time.Time
}

// NewPipeline constructs a pipeline from injected collaborators.
func NewPipeline(opts Options) *Pipeline {
	fetcher := opts.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Pipeline{
		users:   opts.Users,
		jobs:    opts.Jobs,
		model:   opts.Model,
		host:    opts.Host,
		fetcher: fetcher,
		logger:  logger,
		now:     now,
	}
}

// Run executes one generation request and returns the final hosted image
// URL. Errors after job creation trigger deletion of the job record; the
// typed cause is logged here and collapsed by the handler into the uniform
// external payload.
func (p *Pipeline) Run(ctx context.Context, req Request) (string, error) {
	if _, err := p.users.GetByEmail(ctx, req.UserEmail); err != nil {
		return "", fmt.Errorf("lookup user %s: %w", req.UserEmail, err)
	}

	createdAt := p.now()
	docID := domain.NewDocID(createdAt)
	job := &domain.CreativeJob{
		DocID:       docID,
		UserEmail:   req.UserEmail,
		Status:      domain.JobStatusPending,
		Description: req.Description,
		Size:        req.Size,
		CreatedAt:   createdAt,
	}
	if err := p.jobs.Create(ctx, job); err != nil {
		return "", fmt.Errorf("create job %s: %w", docID, err)
	}

	finalURL, err := p.execute(ctx, docID, req)
	if err != nil {
		p.logger.Error().
			Err(err).
			Str("doc_id", docID).
			Str("user_email", req.UserEmail).
			Msg("creative: pipeline failed, deleting job record")
		if delErr := p.jobs.Delete(ctx, docID); delErr != nil {
			p.logger.Error().Err(delErr).Str("doc_id", docID).Msg("creative: job cleanup failed")
		}
		return "", err
	}

	p.logger.Info().
		Str("doc_id", docID).
		Str("user_email", req.UserEmail).
		Str("final_url", finalURL).
		Msg("creative: job completed")

	return finalURL, nil
}

func (p *Pipeline) execute(ctx context.Context, docID string, req Request) (string, error) {
	product, err := p.normalize(ctx, req)
	if err != nil {
		return "", err
	}

	pair, err := p.composePrompts(ctx, req.AvatarURL, product)
	if err != nil {
		return "", err
	}

	imageMIME, imageData, err := p.generateCreative(ctx, pair.TextToImage, product, req.AvatarURL)
	if err != nil {
		return "", err
	}

	return p.publish(ctx, docID, product, pair, imageMIME, imageData)
}

// normalize produces the byte-accurate product image. Freshly uploaded bytes
// are also pushed to the image host once for a durable URL; an existing URL
// is fetched but never re-uploaded.
func (p *Pipeline) normalize(ctx context.Context, req Request) (*NormalizedImage, error) {
	if len(req.FileData) > 0 {
		img := NormalizeUpload(req.FileData, req.FileContentType)
		hosted, err := p.host.Upload(ctx, base64.StdEncoding.EncodeToString(img.Data), p.uploadName("product", img.MIME))
		if err != nil {
			return nil, fmt.Errorf("upload product image: %w", err)
		}
		img.URL = hosted
		return img, nil
	}
	return p.fetcher.Fetch(ctx, req.ImageURL)
}

// composePrompts runs the first model call: one fixed instruction template
// plus the product image, constrained to the two-field JSON pair.
func (p *Pipeline) composePrompts(ctx context.Context, avatarURL string, product *NormalizedImage) (*PromptPair, error) {
	parts := []genai.Part{
		genai.TextPart(selectInstruction(avatarURL)),
		genai.ImagePart(product.MIME, product.Data),
	}
	resp, err := p.model.GenerateContent(ctx, parts, &genai.GenerateOptions{
		ResponseMIMEType: "application/json",
		ResponseSchema:   promptPairSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("compose prompts: %w", err)
	}
	return ParsePromptPair(resp.FirstText())
}

// generateCreative runs the second model call with the composed textToImage
// instruction, attaching the product bytes and, when usable, the avatar.
func (p *Pipeline) generateCreative(ctx context.Context, instruction string, product *NormalizedImage, avatarURL string) (string, []byte, error) {
	parts := []genai.Part{
		genai.TextPart(instruction),
		genai.ImagePart(product.MIME, product.Data),
	}
	if avatarUsable(avatarURL) {
		avatar, err := p.fetcher.Fetch(ctx, strings.TrimSpace(avatarURL))
		if err != nil {
			return "", nil, fmt.Errorf("fetch avatar: %w", err)
		}
		parts = append(parts, genai.ImagePart(avatar.MIME, avatar.Data))
	}

	resp, err := p.model.GenerateContent(ctx, parts, nil)
	if err != nil {
		return "", nil, fmt.Errorf("generate creative: %w", err)
	}
	mime, data, ok := resp.FirstInlineImage()
	if !ok {
		return "", nil, domain.ErrNoImageReturned
	}
	if mime == "" {
		mime = defaultImageMIME
	}
	return mime, data, nil
}

// publish uploads the rendered creative, marks the job completed, and
// returns the hosted URL.
func (p *Pipeline) publish(ctx context.Context, docID string, product *NormalizedImage, pair *PromptPair, imageMIME string, imageData []byte) (string, error) {
	finalURL, err := p.host.Upload(ctx, base64.StdEncoding.EncodeToString(imageData), p.uploadName("creative", imageMIME))
	if err != nil {
		return "", fmt.Errorf("upload creative: %w", err)
	}

	result := domain.CreativeResult{
		FinalProductImageURL: finalURL,
		ProductImageURL:      product.URL,
		ImageToVideoPrompt:   pair.ImageToVideo,
	}
	if err := p.jobs.Complete(ctx, docID, result); err != nil {
		return "", fmt.Errorf("complete job %s: %w", docID, err)
	}
	return finalURL, nil
}

func (p *Pipeline) uploadName(kind, mime string) string {
	return fmt.Sprintf("%s-%d%s", kind, p.now().UnixMilli(), extensionForMIME(mime))
}
