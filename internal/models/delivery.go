package models

// EmailMessage 渲染完成的邮件内容
type EmailMessage struct {
	Subject      string `json:"subject"`
	HTMLBody     string `json:"htmlBody"`
	HighPriority bool   `json:"highPriority"` // 紧急邮件附加高优先级头
}

// DeliveryResult 单次传输调用的结果
type DeliveryResult struct {
	Success           bool   `json:"success"`
	ProviderMessageID string `json:"providerMessageId,omitempty"`
	ErrorDetail       string `json:"errorDetail,omitempty"`
}
