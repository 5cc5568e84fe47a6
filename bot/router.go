package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyunw00/attendbot/config"
	"github.com/hyunw00/attendbot/imaging"
	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/platform"
	"github.com/hyunw00/attendbot/storage"
	"github.com/hyunw00/attendbot/utils"
)

// Platform is the subset of the messaging client the router needs. The
// concrete implementation talks to the Naver Works API.
type Platform interface {
	GetUserInfo(ctx context.Context, userID string) models.UserInfo
	SendMessage(ctx context.Context, userID, channelID string, message any) error
	SendText(ctx context.Context, userID, channelID, text string) error
	DownloadContent(ctx context.Context, fileID string) ([]byte, error)
	CreatePersistentMenu(ctx context.Context) error
	DeletePersistentMenu(ctx context.Context) error
}

// Uploader stores a processed image blob and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// ImagePipeline validates and recompresses an uploaded image.
type ImagePipeline interface {
	Process(data []byte) (webp []byte, meta imaging.Meta, err error)
}

// Router dispatches validated webhook events to the handler for their
// content type.
type Router struct {
	cfg      config.AppConfig
	platform Platform
	store    storage.Store
	cooldown *Cooldown
	lateness *LatenessPolicy
	uploader Uploader
	images   ImagePipeline
	loc      *time.Location
	now      func() time.Time
}

func NewRouter(cfg config.AppConfig, p Platform, store storage.Store, cooldown *Cooldown,
	lateness *LatenessPolicy, uploader Uploader, images ImagePipeline, loc *time.Location) *Router {
	return &Router{
		cfg:      cfg,
		platform: p,
		store:    store,
		cooldown: cooldown,
		lateness: lateness,
		uploader: uploader,
		images:   images,
		loc:      loc,
		now:      time.Now,
	}
}

// HandleEvent routes one validated event. Only message events are handled;
// everything else is acknowledged silently.
func (r *Router) HandleEvent(ctx context.Context, event *WebhookEvent, reqInfo *models.RequestInfo) error {
	if event.Type != "message" {
		utils.Sugar.Debugf("ignoring event type %q", event.Type)
		return nil
	}

	// a postback token wins over the declared content type
	if event.Content.Postback != "" {
		return r.handlePostback(ctx, event, reqInfo)
	}

	switch event.Content.Type {
	case ContentText:
		return r.handleText(ctx, event, reqInfo)
	case ContentImage:
		return r.handleImage(ctx, event, reqInfo)
	case ContentLocation:
		return r.handleLocation(ctx, event, reqInfo)
	default:
		utils.Sugar.Debugf("ignoring content type %q from %s", event.Content.Type, event.Source.UserID)
		return nil
	}
}

func (r *Router) handleText(ctx context.Context, event *WebhookEvent, reqInfo *models.RequestInfo) error {
	userID := event.Source.UserID
	channelID := event.Source.ChannelID
	text := strings.TrimSpace(event.Content.Text)

	switch text {
	case "/test":
		return r.platform.SendText(ctx, userID, channelID, "✅ 봇이 정상 동작 중입니다.")
	case "/help":
		return r.platform.SendText(ctx, userID, channelID, helpText)
	case "/menu":
		if err := r.platform.CreatePersistentMenu(ctx); err != nil {
			utils.Sugar.Errorf("menu create: %v", err)
			return r.platform.SendText(ctx, userID, channelID, "❌ 메뉴 등록에 실패했습니다.")
		}
		return r.platform.SendText(ctx, userID, channelID, "✅ 출근 메뉴가 등록되었습니다.")
	case "/delete-menu":
		if err := r.platform.DeletePersistentMenu(ctx); err != nil {
			utils.Sugar.Errorf("menu delete: %v", err)
			return r.platform.SendText(ctx, userID, channelID, "❌ 메뉴 삭제에 실패했습니다.")
		}
		return r.platform.SendText(ctx, userID, channelID, "✅ 출근 메뉴가 삭제되었습니다.")
	case "CHECKIN_LOCATION":
		return r.sendCheckinPrompt(ctx, userID, channelID)
	case "CHECKIN_SIMPLE":
		return r.recordAttendance(ctx, event, reqInfo, models.ActionCheckin, models.MethodText, recordOptions{})
	}

	// unrecognized text is not a command, leave the user alone
	utils.Sugar.Debugf("ignoring text %q from %s", text, userID)
	return nil
}

func (r *Router) handlePostback(ctx context.Context, event *WebhookEvent, reqInfo *models.RequestInfo) error {
	switch event.Content.Postback {
	case "CHECKIN_ACTION", "CHECKIN_SIMPLE":
		return r.recordAttendance(ctx, event, reqInfo, models.ActionCheckin, models.MethodManual, recordOptions{})
	case "CHECKOUT_ACTION":
		return r.recordAttendance(ctx, event, reqInfo, models.ActionCheckout, models.MethodManual, recordOptions{skipLateness: true})
	}

	utils.Sugar.Debugf("ignoring postback %q from %s", event.Content.Postback, event.Source.UserID)
	return nil
}

func (r *Router) sendCheckinPrompt(ctx context.Context, userID, channelID string) error {
	msg := platform.TextWithQuickReplies("출근 방법을 선택해주세요.", []platform.QuickReplyItem{
		{Type: "location", Label: "📍 위치로 출근"},
		{Type: "message", Label: "✔️ 간편 출근", Text: "CHECKIN_SIMPLE"},
	})
	return r.platform.SendMessage(ctx, userID, channelID, msg)
}

func (r *Router) handleImage(ctx context.Context, event *WebhookEvent, reqInfo *models.RequestInfo) error {
	userID := event.Source.UserID
	channelID := event.Source.ChannelID

	if event.Content.FileID == "" {
		return r.platform.SendText(ctx, userID, channelID, "❌ 이미지 파일을 찾을 수 없습니다.")
	}

	data, err := r.platform.DownloadContent(ctx, event.Content.FileID)
	if err != nil {
		utils.Sugar.Errorf("image download for %s: %v", userID, err)
		return r.platform.SendText(ctx, userID, channelID, "❌ 이미지 다운로드에 실패했습니다. 다시 시도해주세요.")
	}

	webp, meta, err := r.images.Process(data)
	if err != nil {
		utils.Sugar.Warnf("image rejected for %s: %v", userID, err)
		return r.platform.SendText(ctx, userID, channelID, "❌ 지원하지 않는 이미지입니다. (JPEG/PNG/GIF/WEBP/BMP, 1KB~10MB)")
	}
	utils.Sugar.Infof("image accepted for %s: %s %dx%d, %d -> %d bytes",
		userID, meta.Format, meta.Width, meta.Height, len(data), len(webp))

	name := fmt.Sprintf("attendance_%s_%d.webp", userID, r.now().UnixMilli())
	imageURL, err := r.uploader.Upload(ctx, name, webp, "image/webp")
	if err != nil {
		utils.Sugar.Errorf("image upload for %s: %v", userID, err)
		return r.platform.SendText(ctx, userID, channelID, "❌ 이미지 저장에 실패했습니다. 다시 시도해주세요.")
	}

	return r.recordAttendance(ctx, event, reqInfo, models.ActionImageUpload, models.MethodPhoto, recordOptions{
		imageURL:     imageURL,
		skipLateness: true,
	})
}

func (r *Router) handleLocation(ctx context.Context, event *WebhookEvent, reqInfo *models.RequestInfo) error {
	loc := AnalyzeLocation(event.Content.Address, event.Content.Latitude, event.Content.Longitude)
	return r.recordAttendance(ctx, event, reqInfo, models.ActionLocationCheckin, models.MethodLocation, recordOptions{
		location: loc,
	})
}

const helpText = `📋 출근봇 사용법
/test - 봇 동작 확인
/menu - 출근 메뉴 등록
/delete-menu - 출근 메뉴 삭제
/help - 도움말
위치를 전송하면 위치 출근, 사진을 전송하면 이미지 출근으로 기록됩니다.`
