package notify

import (
	"strings"
	"testing"

	"ecg-notify/internal/models"

	"github.com/stretchr/testify/assert"
)

// 2023-11-14 22:13:20 UTC = 2023-11-15 05:13:20 曼谷时间
const fixedTS = int64(1700000000000)

func TestFormatThaiTime(t *testing.T) {
	assert.Equal(t, "15/11/2566 05:13:20", FormatThaiTime(fixedTS))
	assert.Equal(t, "15/11/2566", FormatThaiDate(fixedTS))
	assert.Equal(t, "05:13:20", FormatThaiClock(fixedTS))
}

func TestRenderTestEmail(t *testing.T) {
	msg := RenderTestEmail("สมหญิง", fixedTS)

	assert.Equal(t, "🧪 ECG Monitoring - การทดสอบระบบแจ้งเตือน", msg.Subject)
	assert.False(t, msg.HighPriority)
	assert.Contains(t, msg.HTMLBody, "สมหญิง")
	assert.Contains(t, msg.HTMLBody, "15/11/2566")
	assert.Contains(t, msg.HTMLBody, "05:13:20")
}

func TestRenderTestEmail_DefaultPatientName(t *testing.T) {
	msg := RenderTestEmail("", fixedTS)
	assert.Contains(t, msg.HTMLBody, models.DefaultPatientName)
}

func TestRenderEmergencyEmail(t *testing.T) {
	hr := 185
	bp := "180/120"
	detail := "ตรวจพบหัวใจเต้นเร็วผิดปกติ"
	msg := RenderEmergencyEmail(models.AlertEvent{
		Type:          models.AlertTypeHeartRateHigh,
		PatientName:   "สมชาย",
		HeartRate:     &hr,
		BloodPressure: &bp,
		Message:       &detail,
		Timestamp:     fixedTS,
	})

	assert.True(t, msg.HighPriority)
	assert.Contains(t, msg.Subject, "🚨 ECG EMERGENCY")
	assert.Contains(t, msg.Subject, models.AlertTypeHeartRateHigh.Label())
	assert.Contains(t, msg.Subject, "สมชาย")

	assert.Contains(t, msg.HTMLBody, "185 bpm")
	assert.Contains(t, msg.HTMLBody, "180/120")
	assert.Contains(t, msg.HTMLBody, detail)
	assert.Contains(t, msg.HTMLBody, "15/11/2566 05:13:20")
}

func TestRenderEmergencyEmail_MissingOptionalFields(t *testing.T) {
	msg := RenderEmergencyEmail(models.AlertEvent{
		Type:      models.AlertTypeEmergency,
		Timestamp: fixedTS,
	})

	// 可选字段缺失时渲染占位符和缺省文案，版式不塌
	assert.Equal(t, 2, strings.Count(msg.HTMLBody, models.PlaceholderNotSpecified))
	assert.Contains(t, msg.HTMLBody, models.DefaultAlertMessage)
	assert.Contains(t, msg.HTMLBody, models.DefaultPatientName)
}

func TestRenderEmergencyEmail_UnknownType(t *testing.T) {
	msg := RenderEmergencyEmail(models.AlertEvent{
		Type:        models.AlertType("something_new"),
		PatientName: "สมชาย",
		Timestamp:   fixedTS,
	})
	assert.Contains(t, msg.Subject, "ภาวะผิดปกติที่ไม่ทราบสาเหตุ")
}

func TestRenderLineAlert(t *testing.T) {
	flex := RenderLineAlert(models.AlertEvent{
		Type:        models.AlertTypeIrregularRhythm,
		PatientName: "สมหญิง",
		Timestamp:   fixedTS,
	}, "https://ecg.example.com")

	assert.Equal(t, "flex", flex.Type)
	assert.Contains(t, flex.AltText, "🚨 การแจ้งเตือนฉุกเฉิน")
	assert.Contains(t, flex.AltText, "สมหญิง")
	assert.Equal(t, "#FF4444", flex.Contents.Header.BackgroundColor)
	assert.Equal(t, "https://ecg.example.com/dashboard", flex.Contents.Footer.Contents[0].Action.URI)

	body := flex.Contents.Body.Contents
	assert.Contains(t, body[0].Text, "สมหญิง")
	assert.Contains(t, body[1].Text, models.AlertTypeIrregularRhythm.Label())
	assert.Contains(t, body[2].Text, "15/11/2566 05:13:20")
}

func TestRenderLineAlert_Test(t *testing.T) {
	flex := RenderLineAlert(models.AlertEvent{
		Type:      models.AlertTypeTest,
		Timestamp: fixedTS,
	}, "https://ecg.example.com")

	assert.Contains(t, flex.AltText, "🧪 ทดสอบระบบแจ้งเตือน")
	assert.Equal(t, "#10B981", flex.Contents.Header.BackgroundColor)
}
