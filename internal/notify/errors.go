package notify

import "errors"

var (
	// ErrNoEligibleRecipients 患者没有任何可达的接收渠道
	ErrNoEligibleRecipients = errors.New("no eligible recipients")

	// ErrResolutionFailed 接收人解析阶段失败（存储不可用等），未进行任何发送
	ErrResolutionFailed = errors.New("recipient resolution failed")
)
