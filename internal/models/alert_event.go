package models

// AlertType 警报类型（自由文本，已知类型有固定泰文标签）
type AlertType string

const (
	AlertTypeHeartRateHigh   AlertType = "heart_rate_high"
	AlertTypeHeartRateLow    AlertType = "heart_rate_low"
	AlertTypeIrregularRhythm AlertType = "irregular_rhythm"
	AlertTypeEmergency       AlertType = "emergency"
	AlertTypeAbnormal        AlertType = "abnormal"
	AlertTypeTest            AlertType = "test"
)

// alertTypeLabels 警报类型的泰文标签表
var alertTypeLabels = map[AlertType]string{
	AlertTypeHeartRateHigh:   "อัตราการเต้นของหัวใจสูงเกินปกติ",
	AlertTypeHeartRateLow:    "อัตราการเต้นของหัวใจต่ำกว่าปกติ",
	AlertTypeIrregularRhythm: "จังหวะการเต้นของหัวใจผิดปกติ",
	AlertTypeEmergency:       "ภาวะฉุกเฉิน",
	AlertTypeAbnormal:        "ภาวะผิดปกติ",
	AlertTypeTest:            "ทดสอบระบบแจ้งเตือน",
}

// Label 返回警报类型的泰文标签（未知类型返回通用标签）
func (t AlertType) Label() string {
	if label, ok := alertTypeLabels[t]; ok {
		return label
	}
	return "ภาวะผิดปกติที่ไม่ทราบสาเหตุ"
}

// 渲染时的缺省占位文本
const (
	PlaceholderNotSpecified = "ไม่ระบุ"
	DefaultPatientName      = "ผู้ป่วย"
	DefaultAlertMessage     = "พบความผิดปกติในสัญญาณชีพ"
)

// AlertEvent 一次派发的警报输入（本服务不单独持久化警报本身）
// Timestamp 为毫秒级 Unix 时间戳，0 表示由边界层填充当前时间
type AlertEvent struct {
	Type          AlertType `json:"type"`
	PatientName   string    `json:"patientName"`
	HeartRate     *int      `json:"heartRate,omitempty"`
	BloodPressure *string   `json:"bloodPressure,omitempty"`
	Message       *string   `json:"message,omitempty"`
	Timestamp     int64     `json:"timestamp"`
}
