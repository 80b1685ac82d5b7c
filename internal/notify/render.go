package notify

import (
	"fmt"
	"time"

	"ecg-notify/internal/models"
)

// bangkok 通知时间统一按曼谷时区展示（固定偏移，不依赖 tzdata）
var bangkok = time.FixedZone("ICT", 7*60*60)

// FormatThaiTime 将毫秒时间戳格式化为泰国本地时间（佛历年）
// 例：1700000000000 → "15/11/2566 05:13:20"
func FormatThaiTime(ms int64) string {
	return FormatThaiDate(ms) + " " + FormatThaiClock(ms)
}

// FormatThaiDate 日期部分（佛历年 = 公历年 + 543）
func FormatThaiDate(ms int64) string {
	t := time.UnixMilli(ms).In(bangkok)
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year()+543)
}

// FormatThaiClock 时间部分
func FormatThaiClock(ms int64) string {
	t := time.UnixMilli(ms).In(bangkok)
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}

// patientNameOrDefault 患者名称缺省占位
func patientNameOrDefault(name string) string {
	if name == "" {
		return models.DefaultPatientName
	}
	return name
}

// heartRateText 心率文本（缺失时渲染占位符，绝不渲染空串）
func heartRateText(alert models.AlertEvent) string {
	if alert.HeartRate == nil {
		return models.PlaceholderNotSpecified
	}
	return fmt.Sprintf("%d", *alert.HeartRate)
}

// bloodPressureText 血压文本
func bloodPressureText(alert models.AlertEvent) string {
	if alert.BloodPressure == nil || *alert.BloodPressure == "" {
		return models.PlaceholderNotSpecified
	}
	return *alert.BloodPressure
}

// messageText 附加说明文本
func messageText(alert models.AlertEvent) string {
	if alert.Message == nil || *alert.Message == "" {
		return models.DefaultAlertMessage
	}
	return *alert.Message
}

// RenderTestEmail 渲染测试通知邮件
// 纯函数：时间只来自 at（毫秒时间戳），不读墙钟
func RenderTestEmail(patientName string, at int64) models.EmailMessage {
	name := patientNameOrDefault(patientName)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>ECG Monitoring Alert</title>
</head>
<body style="font-family: Arial, sans-serif; margin: 0; padding: 20px; background-color: #f5f5f5;">
  <div style="max-width: 600px; margin: 0 auto; background: white; border-radius: 10px; padding: 30px; box-shadow: 0 2px 10px rgba(0,0,0,0.1);">

    <div style="text-align: center; border-bottom: 2px solid #e2e8f0; padding-bottom: 20px; margin-bottom: 30px;">
      <h1 style="color: #2563eb; margin: 0; font-size: 28px;">🧪 ECG Monitoring</h1>
      <p style="color: #64748b; margin: 10px 0 0 0; font-size: 16px;">การทดสอบระบบแจ้งเตือน</p>
    </div>

    <div style="background: linear-gradient(135deg, #10b981, #059669); color: white; padding: 15px 25px; border-radius: 50px; text-align: center; margin-bottom: 30px;">
      <span style="font-size: 18px; font-weight: bold;">✅ ทดสอบระบบสำเร็จ</span>
    </div>

    <div style="margin-bottom: 30px;">
      <h2 style="color: #1f2937; margin-bottom: 20px;">📊 รายละเอียดการทดสอบ</h2>

      <div style="background: #f8fafc; padding: 20px; border-radius: 8px; border-left: 4px solid #3b82f6;">
        <p style="margin: 8px 0;"><strong>👤 ผู้ป่วย:</strong> %s</p>
        <p style="margin: 8px 0;"><strong>📅 วันที่:</strong> %s</p>
        <p style="margin: 8px 0;"><strong>⏰ เวลา:</strong> %s</p>
        <p style="margin: 8px 0;"><strong>🔄 ประเภท:</strong> ทดสอบระบบแจ้งเตือน</p>
        <p style="margin: 8px 0;"><strong>✅ สถานะ:</strong> ระบบทำงานปกติ</p>
      </div>
    </div>

    <div style="background: linear-gradient(135deg, #dcfce7, #bbf7d0); border: 1px solid #86efac; padding: 20px; border-radius: 8px; margin-bottom: 30px;">
      <h3 style="color: #166534; margin: 0 0 10px 0;">🎉 การทดสอบสำเร็จ!</h3>
      <p style="color: #166534; margin: 0; line-height: 1.6;">
        หากท่านได้รับอีเมลนี้ แสดงว่าระบบแจ้งเตือน ECG Monitoring ทำงานได้ถูกต้อง
        ในกรณีที่มีภาวะฉุกเฉิน ระบบจะส่งการแจ้งเตือนโดยอัตโนมัติ
      </p>
    </div>

    <div style="background: #fef3c7; border: 1px solid #fbbf24; padding: 20px; border-radius: 8px; margin-bottom: 30px;">
      <h3 style="color: #92400e; margin: 0 0 15px 0;">⚠️ เมื่อมีภาวะฉุกเฉิน</h3>
      <ul style="color: #92400e; margin: 0; padding-left: 20px; line-height: 1.8;">
        <li>ระบบจะส่งการแจ้งเตือนทันที</li>
        <li>กรุณาตรวจสอบและดำเนินการโดยเร็ว</li>
        <li>ติดต่อหน่วยแพทย์ฉุกเฉินหากจำเป็น</li>
      </ul>
    </div>

    <div style="text-align: center; border-top: 1px solid #e2e8f0; padding-top: 20px; margin-top: 30px;">
      <p style="color: #64748b; margin: 0; font-size: 14px;">
        📧 Email นี้ส่งโดยระบบอัตโนมัติ<br>
        🏥 ECG Monitoring System | 📞 Support: 02-xxx-xxxx<br>
        ⏰ %s
      </p>
    </div>

  </div>
</body>
</html>
`, name, FormatThaiDate(at), FormatThaiClock(at), FormatThaiTime(at))

	return models.EmailMessage{
		Subject:  "🧪 ECG Monitoring - การทดสอบระบบแจ้งเตือน",
		HTMLBody: html,
	}
}

// RenderEmergencyEmail 渲染紧急通知邮件（红色系、高优先级）
// 缺失的可选字段渲染为"ไม่ระบุ"占位符，保证版式稳定
func RenderEmergencyEmail(alert models.AlertEvent) models.EmailMessage {
	name := patientNameOrDefault(alert.PatientName)
	typeLabel := alert.Type.Label()

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>🚨 ECG Emergency Alert</title>
</head>
<body style="font-family: Arial, sans-serif; background: #fee2e2; padding: 20px; margin: 0;">
  <div style="max-width: 600px; margin: 0 auto; background: white; border: 3px solid #dc2626; border-radius: 10px; padding: 30px;">

    <div style="text-align: center; margin-bottom: 30px;">
      <h1 style="color: #dc2626; font-size: 32px; margin: 0;">🚨 ภาวะฉุกเฉิน</h1>
      <p style="color: #991b1b; font-size: 18px; margin: 10px 0; font-weight: bold;">ECG Monitoring Alert</p>
    </div>

    <div style="background: #fef2f2; border: 2px solid #fca5a5; padding: 20px; border-radius: 8px; margin-bottom: 20px;">
      <h2 style="color: #991b1b; margin: 0 0 15px 0;">⚠️ รายละเอียดการแจ้งเตือน</h2>
      <p style="margin: 8px 0; font-size: 16px;"><strong>👤 ผู้ป่วย:</strong> %s</p>
      <p style="margin: 8px 0; font-size: 16px;"><strong>🚨 ประเภท:</strong> %s</p>
      <p style="margin: 8px 0; font-size: 16px;"><strong>💓 อัตราการเต้นหัวใจ:</strong> %s bpm</p>
      <p style="margin: 8px 0; font-size: 16px;"><strong>🩺 ความดันโลหิต:</strong> %s</p>
      <p style="margin: 8px 0; font-size: 16px;"><strong>⏰ เวลา:</strong> %s</p>
      <p style="margin: 8px 0; font-size: 16px;"><strong>📝 รายละเอียด:</strong> %s</p>
    </div>

    <div style="background: #dc2626; color: white; padding: 20px; border-radius: 8px; text-align: center; margin-bottom: 20px;">
      <h3 style="margin: 0; font-size: 20px;">⚡ กรุณาดำเนินการตรวจสอบทันที ⚡</h3>
      <p style="margin: 10px 0 0 0; font-size: 16px;">โทร 1669 หากเป็นกรณีฉุกเฉิน</p>
    </div>

    <div style="text-align: center; border-top: 2px solid #dc2626; padding-top: 20px;">
      <p style="color: #991b1b; margin: 0; font-size: 14px; font-weight: bold;">
        🏥 ECG Monitoring System - Emergency Alert<br>
        📞 ฉุกเฉิน: 1669 | โรงพยาบาล: 02-xxx-xxxx<br>
        ⏰ %s
      </p>
    </div>

  </div>
</body>
</html>
`, name, typeLabel, heartRateText(alert), bloodPressureText(alert),
		FormatThaiTime(alert.Timestamp), messageText(alert), FormatThaiTime(alert.Timestamp))

	return models.EmailMessage{
		Subject:      fmt.Sprintf("🚨 ECG EMERGENCY - %s - %s", typeLabel, name),
		HTMLBody:     html,
		HighPriority: true,
	}
}

// RenderLineAlert 渲染 LINE Flex 卡片
// 与邮件同等内容的精简版：标题、患者、类型、时间、动作链接
func RenderLineAlert(alert models.AlertEvent, websiteURL string) models.LineFlexMessage {
	name := patientNameOrDefault(alert.PatientName)

	title := "🚨 การแจ้งเตือนฉุกเฉิน"
	headerColor := "#FF4444"
	if alert.Type == models.AlertTypeTest {
		title = "🧪 ทดสอบระบบแจ้งเตือน"
		headerColor = "#10B981"
	}

	return models.LineFlexMessage{
		Type:    "flex",
		AltText: fmt.Sprintf("%s - %s", title, name),
		Contents: models.LineFlexBubble{
			Type: "bubble",
			Size: "mega",
			Header: &models.LineFlexBox{
				Type:   "box",
				Layout: "vertical",
				Contents: []models.LineFlexComponent{
					{
						Type:   "text",
						Text:   title,
						Weight: "bold",
						Color:  "#ffffff",
						Size:   "lg",
						Align:  "center",
					},
				},
				BackgroundColor: headerColor,
				PaddingAll:      "lg",
			},
			Body: &models.LineFlexBox{
				Type:   "box",
				Layout: "vertical",
				Contents: []models.LineFlexComponent{
					{
						Type:   "text",
						Text:   fmt.Sprintf("ผู้ป่วย: %s", name),
						Weight: "bold",
						Size:   "lg",
						Color:  "#333333",
					},
					{
						Type:   "text",
						Text:   fmt.Sprintf("ประเภท: %s", alert.Type.Label()),
						Size:   "md",
						Color:  "#666666",
						Margin: "sm",
					},
					{
						Type:   "text",
						Text:   fmt.Sprintf("เวลา: %s", FormatThaiTime(alert.Timestamp)),
						Size:   "sm",
						Color:  "#999999",
						Margin: "sm",
					},
				},
				Spacing:    "sm",
				PaddingAll: "lg",
			},
			Footer: &models.LineFlexBox{
				Type:   "box",
				Layout: "vertical",
				Contents: []models.LineFlexComponent{
					{
						Type:  "button",
						Style: "primary",
						Color: "#007bff",
						Action: &models.LineFlexAction{
							Type:  "uri",
							Label: "ดูข้อมูลเพิ่มเติม",
							URI:   websiteURL + "/dashboard",
						},
					},
				},
				PaddingAll: "lg",
			},
		},
	}
}
