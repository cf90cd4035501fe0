package service

import (
	"artify/internal/config"
	"artify/internal/entity"
	"artify/internal/gen"
	"artify/internal/model"
	"artify/internal/storage"
	"artify/internal/utils"
	"context"

	"github.com/sirupsen/logrus"
)

// RequestError 携带稳定错误码的请求级失败
type RequestError struct {
	Code    string
	Message string
}

func (e *RequestError) Error() string {
	return e.Code + ": " + e.Message
}

func NewRequestError(code, message string) *RequestError {
	return &RequestError{Code: code, Message: message}
}

// Orchestrator 串起生成请求的准入、上游调用、计费与后处理。
// 并发闸门与响应写出由 HTTP 层持有，不在此处。
type Orchestrator struct {
	cfg    config.Config
	repo   model.Repository
	store  storage.Storage
	client *gen.Client
}

func NewOrchestrator(cfg config.Config, repo model.Repository, store storage.Storage, client *gen.Client) *Orchestrator {
	return &Orchestrator{
		cfg:    cfg,
		repo:   repo,
		store:  store,
		client: client,
	}
}

// Usable 判断是否存在任何可用的上游路径
func (o *Orchestrator) Usable() bool {
	return o != nil && o.client.Usable()
}

// EnsureCanGenerate 准入检查。首次出现的主体先授予免费额度，
// 无额度时按身份类型区分错误码，前端据此展示不同文案。
func (o *Orchestrator) EnsureCanGenerate(ctx context.Context, identity entity.Identity) (*entity.DbCreditBalance, *RequestError) {
	subject := identity.Subject()
	logger := logrus.WithContext(ctx).WithField("subject", subject)

	balance, err := o.repo.GetCreditBalance(ctx, subject)
	if err != nil {
		logger.WithError(err).Error("admission_balance_read_failed")
		return nil, NewRequestError(entity.CodeInternalError, "failed to read credit balance")
	}
	if balance == nil {
		balance, err = o.repo.InitCreditBalance(ctx, subject, o.cfg.FreeCredits)
		if err != nil {
			logger.WithError(err).Error("admission_balance_init_failed")
			return nil, NewRequestError(entity.CodeInternalError, "failed to initialize credit balance")
		}
		logger.WithField("free_credits", o.cfg.FreeCredits).Info("admission_first_use_grant")
	}

	if !balance.CanGenerate() {
		if identity.IsAuthenticated() {
			return nil, NewRequestError(entity.CodeInsufficientCredits, "not enough credits, please purchase more")
		}
		return nil, NewRequestError(entity.CodeFreeTrialExhausted, "free trial exhausted, sign up to continue")
	}

	return balance, nil
}

// Run 执行上游生成与后处理，返回最终响应体。
// 上游链路全部耗尽时返回 GENERATION_UPSTREAM_FAILED，其余
// 后处理失败只降级响应字段，从不使请求失败。
func (o *Orchestrator) Run(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationResult, *RequestError) {
	subject := req.Identity.Subject()
	projectID := entity.NewProjectID()
	logger := logrus.WithContext(ctx).WithFields(logrus.Fields{
		"subject":  subject,
		"project":  projectID,
		"style":    req.StyleID,
		"category": req.Category,
	})

	style, ok := entity.StyleByID(req.StyleID)
	if !ok {
		return nil, NewRequestError(entity.CodeInvalidStyle, "unknown style")
	}

	outcome, genErr := o.client.Generate(ctx, gen.Request{
		Prompt:        gen.BuildPrompt(*style, req.Category, req.Options),
		RelaxedPrompt: gen.BuildRelaxedPrompt(*style, req.Category),
		StyleID:       req.StyleID,
		Image:         req.Image,
		MimeType:      req.MimeType,
	})

	// 计费恰好一次：上游得出结果即计费；链路彻底失败时按策略决定是否仍计费。
	var creditsRemaining int64
	if genErr == nil || o.cfg.BillOnCommit {
		balance, err := o.repo.ConsumeCredit(ctx, subject, projectID)
		if err != nil {
			logger.WithError(err).Error("credit_consume_failed")
			creditsRemaining = 0
		} else {
			creditsRemaining = balance.CreditsRemaining()
		}
	}

	if genErr != nil {
		logger.WithError(genErr).Error("generation_failed")
		return nil, NewRequestError(entity.CodeGenerationUpstreamFailed, "image generation failed, please try again later")
	}

	finalData := outcome.Image.Data
	finalMime := outcome.Image.MimeType
	watermarked := outcome.Degraded
	if !outcome.Degraded {
		if wmData, wmMime, err := ApplyWatermark(finalData); err == nil {
			finalData = wmData
			finalMime = wmMime
			watermarked = true
		} else {
			logger.WithError(err).Warn("watermark_failed")
		}
	}

	thumbData, thumbMime := finalData, finalMime
	if data, mime, err := MakeThumbnail(finalData, thumbnailMaxDim); err == nil {
		thumbData = data
		thumbMime = mime
	} else {
		logger.WithError(err).Warn("thumbnail_failed")
	}

	o.archiveOriginal(ctx, logger, subject, projectID, req)

	result := &entity.GenerationResult{
		Success:          true,
		ProjectID:        projectID,
		GeneratedImage:   utils.BuildDataURL(finalMime, finalData),
		ThumbnailImage:   utils.BuildDataURL(thumbMime, thumbData),
		Watermarked:      watermarked,
		CreditsUsed:      1,
		CreditsRemaining: creditsRemaining,
	}

	if req.Identity.IsAuthenticated() {
		saved := o.saveToGallery(ctx, logger, req, projectID, finalData, finalMime, thumbData, thumbMime, watermarked)
		result.GallerySaved = &saved
	}

	return result, nil
}

// archiveOriginal 尽力归档用户上传的原图，失败仅记日志。
func (o *Orchestrator) archiveOriginal(ctx context.Context, logger *logrus.Entry, subject, projectID string, req *entity.GenerationRequest) {
	if o.store == nil || len(req.Image) == 0 {
		return
	}
	_, err := o.store.Save(ctx, req.Image, storage.SaveOptions{
		Category:     storage.CategoryOriginals,
		Owner:        subject,
		BaseName:     projectID,
		Extension:    utils.ExtensionFromMime(req.MimeType),
		SkipIfExists: true,
	})
	if err != nil {
		logger.WithError(err).Warn("original_archive_failed")
	}
}

// saveToGallery 持久化作品与缩略图并写画廊记录，返回是否成功。
func (o *Orchestrator) saveToGallery(ctx context.Context, logger *logrus.Entry, req *entity.GenerationRequest, projectID string, artData []byte, artMime string, thumbData []byte, thumbMime string, watermarked bool) bool {
	var artworkPath, thumbnailPath string

	if o.store != nil {
		path, err := o.store.Save(ctx, artData, storage.SaveOptions{
			Category:  storage.CategoryArtworks,
			Owner:     req.Identity.Subject(),
			BaseName:  projectID,
			Extension: utils.ExtensionFromMime(artMime),
		})
		if err != nil {
			logger.WithError(err).Warn("gallery_artwork_save_failed")
			return false
		}
		artworkPath = path

		path, err = o.store.Save(ctx, thumbData, storage.SaveOptions{
			Category:  storage.CategoryThumbnails,
			Owner:     req.Identity.Subject(),
			BaseName:  projectID,
			Extension: utils.ExtensionFromMime(thumbMime),
		})
		if err != nil {
			logger.WithError(err).Warn("gallery_thumbnail_save_failed")
		} else {
			thumbnailPath = path
		}
	}

	item := &entity.DbGalleryItem{
		UserID:        req.Identity.UserID,
		ProjectID:     projectID,
		StyleID:       req.StyleID,
		Category:      string(req.Category),
		ArtworkPath:   artworkPath,
		ThumbnailPath: thumbnailPath,
		Watermarked:   watermarked,
		Options:       req.RawOptions,
	}
	if err := o.repo.CreateGalleryItem(ctx, item); err != nil {
		logger.WithError(err).Warn("gallery_persist_failed")
		return false
	}

	logger.Info("gallery_saved")
	return true
}

// CreditBalanceFor 查询主体余额，缺失时返回零值响应而不创建记录。
func (o *Orchestrator) CreditBalanceFor(ctx context.Context, identity entity.Identity) (*entity.CreditBalanceResponse, error) {
	subject := identity.Subject()
	balance, err := o.repo.GetCreditBalance(ctx, subject)
	if err != nil {
		return nil, err
	}
	resp := &entity.CreditBalanceResponse{Subject: subject}
	if balance == nil {
		resp.FreeRemaining = o.cfg.FreeCredits
		resp.CreditsRemaining = o.cfg.FreeCredits
		return resp, nil
	}
	resp.FreeRemaining = balance.FreeRemaining
	resp.PaidRemaining = balance.PaidRemaining
	resp.TotalUsed = balance.TotalUsed
	resp.CreditsRemaining = balance.CreditsRemaining()
	return resp, nil
}
