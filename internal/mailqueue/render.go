package mailqueue

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/sysu-ecnc-dev/relief-allocator/backend/internal/domain"
	"github.com/wneessen/go-mail"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

var subjects = map[string]string{
	domain.MailTypeCreateUser:  "救援物资调度系统 - 账户信息",
	domain.MailTypeRunFinished: "救援物资调度系统 - 分配结果",
}

// Decode 把队列中的消息还原为带具体数据类型的 MailMessage
func Decode(body []byte) (*domain.MailMessage, error) {
	var envelope struct {
		Type string          `json:"type"`
		To   string          `json:"to"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}

	msg := &domain.MailMessage{
		Type: envelope.Type,
		To:   envelope.To,
	}

	switch envelope.Type {
	case domain.MailTypeCreateUser:
		data := domain.CreateUserMailData{}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, err
		}
		msg.Data = data
	case domain.MailTypeRunFinished:
		data := domain.RunFinishedMailData{}
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return nil, err
		}
		msg.Data = data
	default:
		return nil, fmt.Errorf("不支持的邮件类型: %s", envelope.Type)
	}

	return msg, nil
}

// Render 返回邮件主题和 HTML 正文
func Render(msg *domain.MailMessage) (string, string, error) {
	subject, ok := subjects[msg.Type]
	if !ok {
		return "", "", fmt.Errorf("不支持的邮件类型: %s", msg.Type)
	}

	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, msg.Type+".html", msg.Data); err != nil {
		return "", "", err
	}

	return subject, body.String(), nil
}

func Compose(msg *domain.MailMessage, from string) (*mail.Msg, error) {
	subject, body, err := Render(msg)
	if err != nil {
		return nil, err
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(msg.To); err != nil {
		return nil, err
	}
	m.Subject(subject)
	m.SetBodyString(mail.TypeTextHTML, body)

	return m, nil
}
