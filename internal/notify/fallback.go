package notify

import (
	"fmt"
	"net/url"
	"strings"

	"ecg-notify/internal/models"
)

// escapeMailto mailto 组件编码
// QueryEscape 会把空格编码为 "+"，而 mailto 链接里必须是 %20
func escapeMailto(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// recipientLines 渲染接收人清单（每行 "• 姓名 (邮箱)"）
func recipientLines(recipients []models.CareTeamMember) string {
	var b strings.Builder
	for _, m := range recipients {
		b.WriteString(fmt.Sprintf("• %s (%s)\n", m.Name, m.Email))
	}
	return b.String()
}

// BuildMailtoLink 拼装 mailto 链接
// 收件人按逗号连接；subject 和 body 做 URL 编码
func BuildMailtoLink(recipients []models.CareTeamMember, subject, body string) string {
	addrs := make([]string, 0, len(recipients))
	for _, m := range recipients {
		addrs = append(addrs, m.Email)
	}
	return fmt.Sprintf("mailto:%s?subject=%s&body=%s",
		strings.Join(addrs, ","),
		escapeMailto(subject),
		escapeMailto(body),
	)
}

// ComposeTestFallback 组装测试通知的人工发送降级文案
func ComposeTestFallback(patientName string, at int64, recipients []models.CareTeamMember) (mailto, subject, body string) {
	name := patientNameOrDefault(patientName)
	subject = "🧪 ECG Monitoring - การทดสอบระบบแจ้งเตือน"

	body = fmt.Sprintf(`การทดสอบระบบแจ้งเตือน ECG Monitoring

ผู้ป่วย: %s
วันที่: %s
เวลา: %s
สถานะ: ระบบทำงานปกติ

รายชื่อผู้รับการแจ้งเตือน:
%s
หากท่านได้รับข้อความนี้ แสดงว่าระบบแจ้งเตือนทำงานได้ถูกต้อง`,
		name, FormatThaiDate(at), FormatThaiClock(at), recipientLines(recipients))

	return BuildMailtoLink(recipients, subject, body), subject, body
}

// ComposeEmergencyFallback 组装紧急通知的人工发送降级文案
func ComposeEmergencyFallback(alert models.AlertEvent, recipients []models.CareTeamMember) (mailto, subject, body string) {
	name := patientNameOrDefault(alert.PatientName)
	typeLabel := alert.Type.Label()
	subject = fmt.Sprintf("🚨 ECG EMERGENCY - %s - %s", typeLabel, name)

	body = fmt.Sprintf(`🚨 ภาวะฉุกเฉิน - ECG Monitoring Alert

ผู้ป่วย: %s
ประเภท: %s
อัตราการเต้นหัวใจ: %s bpm
ความดันโลหิต: %s
เวลา: %s
รายละเอียด: %s

รายชื่อผู้รับการแจ้งเตือน:
%s
กรุณาดำเนินการตรวจสอบทันที โทร 1669 หากเป็นกรณีฉุกเฉิน`,
		name, typeLabel, heartRateText(alert), bloodPressureText(alert),
		FormatThaiTime(alert.Timestamp), messageText(alert), recipientLines(recipients))

	return BuildMailtoLink(recipients, subject, body), subject, body
}
