package models

// LineMessage LINE Messaging API 消息载荷（text 或 flex）
type LineMessage interface{}

// LineTextMessage 纯文本消息
type LineTextMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewLineTextMessage 创建文本消息
func NewLineTextMessage(text string) LineTextMessage {
	return LineTextMessage{Type: "text", Text: text}
}

// LineFlexMessage Flex 消息（卡片式通知）
type LineFlexMessage struct {
	Type     string         `json:"type"`
	AltText  string         `json:"altText"`
	Contents LineFlexBubble `json:"contents"`
}

// LineFlexBubble Flex bubble 容器
type LineFlexBubble struct {
	Type   string       `json:"type"`
	Size   string       `json:"size,omitempty"`
	Header *LineFlexBox `json:"header,omitempty"`
	Body   *LineFlexBox `json:"body,omitempty"`
	Footer *LineFlexBox `json:"footer,omitempty"`
}

// LineFlexBox Flex box 布局
type LineFlexBox struct {
	Type            string              `json:"type"`
	Layout          string              `json:"layout"`
	Contents        []LineFlexComponent `json:"contents"`
	BackgroundColor string              `json:"backgroundColor,omitempty"`
	PaddingAll      string              `json:"paddingAll,omitempty"`
	Spacing         string              `json:"spacing,omitempty"`
}

// LineFlexComponent Flex 组件（text 或 button）
type LineFlexComponent struct {
	Type   string          `json:"type"`
	Text   string          `json:"text,omitempty"`
	Weight string          `json:"weight,omitempty"`
	Color  string          `json:"color,omitempty"`
	Size   string          `json:"size,omitempty"`
	Align  string          `json:"align,omitempty"`
	Margin string          `json:"margin,omitempty"`
	Style  string          `json:"style,omitempty"`
	Action *LineFlexAction `json:"action,omitempty"`
}

// LineFlexAction 按钮动作
type LineFlexAction struct {
	Type  string `json:"type"`
	Label string `json:"label"`
	URI   string `json:"uri"`
}
