package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hyunw00/attendbot/models"
	"github.com/hyunw00/attendbot/platform"
	"github.com/hyunw00/attendbot/utils"
)

type recordOptions struct {
	location     *models.LocationInfo
	imageURL     string
	skipLateness bool
}

// isCheckin reports whether an action counts as a check-in for the duplicate
// submission gate. Checkouts and image uploads are never suppressed.
func isCheckin(action string) bool {
	return action == models.ActionCheckin || action == models.ActionLocationCheckin
}

// recordAttendance is the single write path for every accepted action:
// cooldown gate, profile lookup, lateness verdict, persistence, then the
// confirmation message. The record keeps the event's issuedTime; the cooldown
// runs on receive time.
func (r *Router) recordAttendance(ctx context.Context, event *WebhookEvent, reqInfo *models.RequestInfo,
	action, method string, opts recordOptions) error {

	userID := event.Source.UserID
	channelID := event.Source.ChannelID
	now := r.now()
	issued, err := event.IssuedAt()
	if err != nil {
		issued = now
	}

	if isCheckin(action) {
		if suppressed, remaining := r.cooldown.Check(userID, now); suppressed {
			return r.platform.SendText(ctx, userID, channelID,
				fmt.Sprintf("⏳ 잠시 후 다시 시도해주세요. (%d초 남음)", remaining))
		}
	}

	userInfo := r.platform.GetUserInfo(ctx, userID)

	ev := &models.AttendanceEvent{
		AccountID:   userID,
		DomainID:    event.Source.DomainID,
		Action:      action,
		Method:      method,
		Timestamp:   issued,
		ImageURL:    opts.imageURL,
		Location:    opts.location,
		UserInfo:    userInfo,
		RequestInfo: reqInfo,
	}
	if !opts.skipLateness {
		ev.IsLate, ev.LateMinutes = r.lateness.Evaluate(action, issued)
	}
	if opts.location != nil {
		ev.Notes = opts.location.Notes
	}

	if err := r.store.Save(ctx, ev); err != nil {
		utils.Sugar.Errorf("save attendance for %s: %v", userID, err)
		sendErr := r.platform.SendText(ctx, userID, channelID, "❌ 기록 저장에 실패했습니다. 잠시 후 다시 시도해주세요.")
		if sendErr != nil {
			utils.Sugar.Errorf("error notice for %s: %v", userID, sendErr)
		}
		return err
	}

	if isCheckin(action) {
		r.cooldown.Touch(userID, now)
	}

	if ev.ImageURL != "" {
		// best effort, the record is already saved
		if err := r.platform.SendMessage(ctx, userID, channelID,
			platform.ImageMessage(ev.ImageURL, "출근 이미지")); err != nil {
			utils.Sugar.Warnf("image preview for %s: %v", userID, err)
		}
	}

	return r.platform.SendText(ctx, userID, channelID, confirmationText(ev, r.loc))
}

func confirmationText(ev *models.AttendanceEvent, loc *time.Location) string {
	var b strings.Builder
	fmt.Fprintf(&b, "✅ %s 처리되었습니다.\n", ev.Action)
	fmt.Fprintf(&b, "👤 %s", ev.UserInfo.Name)
	if ev.UserInfo.Department != "" && ev.UserInfo.Department != "정보없음" {
		fmt.Fprintf(&b, " (%s)", ev.UserInfo.Department)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "🕐 %s\n", ev.Timestamp.In(loc).Format("2006-01-02 15:04:05"))

	if ev.IsLate {
		fmt.Fprintf(&b, "⚠️ 지각 (%d분)\n", ev.LateMinutes)
	}
	if ev.Location != nil {
		if ev.Location.Address != "" {
			fmt.Fprintf(&b, "📍 %s\n", ev.Location.Address)
		}
		google, naver := MapLinks(ev.Location.Latitude, ev.Location.Longitude)
		fmt.Fprintf(&b, "🗺 지도: %s\n네이버: %s\n", google, naver)
		if !ev.Location.Verified {
			fmt.Fprintf(&b, "⚠️ %s\n", ev.Location.Notes)
		}
	}
	for _, note := range RiskNotes(ev.RequestInfo) {
		b.WriteString(note)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
